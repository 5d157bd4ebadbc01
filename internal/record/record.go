// Package record validates candidate records and issues identifiers.
package record

import (
	"fmt"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/recvault/internal/apperr"
	"github.com/starford/recvault/internal/models"
)

// Validate checks a candidate record before it is stored. The returned
// error wraps apperr.ErrInvalidInput.
func Validate(in models.Input) error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error("name is required")),
		validation.Field(&in.Value, validation.Required.Error("value is required")),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	return nil
}

// Matches reports whether term is a case-insensitive substring of the
// record's id or name. An empty term matches every record.
func Matches(r models.Record, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(r.ID.String()), term) ||
		strings.Contains(strings.ToLower(r.Name), term)
}

// IDGenerator issues integer ids derived from the wall clock in
// milliseconds. Ids are strictly increasing per generator and never
// collide with a supplied floor, so two calls inside one clock tick
// still get distinct values.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator returns a generator reading the given clock. A nil clock
// means time.Now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns an id greater than floor and every id issued before.
func (g *IDGenerator) Next(floor int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	if id <= floor {
		id = floor + 1
	}
	g.last = id
	return id
}
