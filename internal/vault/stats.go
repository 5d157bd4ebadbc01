package vault

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/starford/recvault/internal/models"
)

// EmptyVaultMessage is reported by Stats for a vault without records.
const EmptyVaultMessage = "No records in vault"

// Statistics summarises the vault.
type Statistics struct {
	TotalRecords   int    `json:"totalRecords"`
	Message        string `json:"message,omitempty"`
	LastModified   string `json:"lastModified,omitempty"`
	LongestName    string `json:"longestName,omitempty"`
	EarliestRecord string `json:"earliestRecord,omitempty"`
	LatestRecord   string `json:"latestRecord,omitempty"`
}

// IsEmpty reports whether the statistics describe an empty vault.
func (s *Statistics) IsEmpty() bool {
	return s.TotalRecords == 0
}

// Stats computes the vault statistics.
func (s *Service) Stats(ctx context.Context) (*Statistics, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Statistics{TotalRecords: 0, Message: EmptyVaultMessage}, nil
	}
	modified, err := s.repo.LastModified(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeStatistics(records, modified), nil
}

// ComputeStatistics derives statistics from a non-empty record set.
// The longest name is the first one encountered on ties; lengths count runes.
func ComputeStatistics(records []models.Record, lastModified time.Time) *Statistics {
	longest := records[0]
	var earliest, latest time.Time
	for i, r := range records {
		if i > 0 && utf8.RuneCountInString(r.Name) > utf8.RuneCountInString(longest.Name) {
			longest = r
		}
		created := r.Created()
		if created.IsZero() {
			continue
		}
		if earliest.IsZero() || created.Before(earliest) {
			earliest = created
		}
		if latest.IsZero() || created.After(latest) {
			latest = created
		}
	}

	st := &Statistics{
		TotalRecords:   len(records),
		LongestName:    fmt.Sprintf("%s (%d characters)", longest.Name, utf8.RuneCountInString(longest.Name)),
		EarliestRecord: formatDate(earliest),
		LatestRecord:   formatDate(latest),
	}
	if !lastModified.IsZero() {
		st.LastModified = lastModified.Local().Format(DateTimeLayout)
	}
	return st
}
