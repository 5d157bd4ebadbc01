package vault

import (
	"fmt"
	"slices"
	"strings"

	"github.com/starford/recvault/internal/apperr"
	"github.com/starford/recvault/internal/models"
)

// SortField selects the sort key.
type SortField string

// SortOrder selects the sort direction.
type SortOrder string

const (
	SortByName SortField = "name"
	SortByID   SortField = "id"

	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSort validates user-supplied sort parameters. Empty values default
// to id and asc; anything else unknown is rejected.
func ParseSort(field, order string) (SortField, SortOrder, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(field)))
	o := SortOrder(strings.ToLower(strings.TrimSpace(order)))
	if f == "" {
		f = SortByID
	}
	if o == "" {
		o = Asc
	}
	if f != SortByName && f != SortByID {
		return "", "", fmt.Errorf("%w: invalid sort field %q, use \"name\" or \"id\"", apperr.ErrInvalidInput, field)
	}
	if o != Asc && o != Desc {
		return "", "", fmt.Errorf("%w: invalid sort order %q, use \"asc\" or \"desc\"", apperr.ErrInvalidInput, order)
	}
	return f, o, nil
}

// SortRecords returns a sorted copy of records. Names compare
// case-insensitively and ids numerically; equal keys fall back to the id,
// so desc is always the exact reverse of asc.
func SortRecords(records []models.Record, field SortField, order SortOrder) []models.Record {
	out := slices.Clone(records)
	if out == nil {
		out = []models.Record{}
	}

	var compare func(a, b models.Record) int
	switch field {
	case SortByName:
		compare = func(a, b models.Record) int {
			if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
				return c
			}
			return models.CompareIDs(a.ID, b.ID)
		}
	case SortByID:
		compare = func(a, b models.Record) int {
			return models.CompareIDs(a.ID, b.ID)
		}
	default:
		return out
	}

	if order == Desc {
		slices.SortStableFunc(out, func(a, b models.Record) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(out, compare)
	}
	return out
}
