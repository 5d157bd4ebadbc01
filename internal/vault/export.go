package vault

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/recvault/internal/models"
)

// Date layouts used in reports and statistics (local time).
const (
	DateLayout     = time.DateOnly
	DateTimeLayout = time.DateTime
)

// Export writes a plain-text report of the vault to the configured export
// file, replacing any previous report, and returns its absolute path.
func (s *Service) Export(ctx context.Context) (string, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return "", err
	}
	report := RenderReport(records, filepath.Base(s.cfg.ExportFile), s.now())
	if err := s.files.Write(s.cfg.ExportFile, []byte(report)); err != nil {
		return "", fmt.Errorf("vault: export: %w", err)
	}
	return s.files.Resolve(s.cfg.ExportFile)
}

// RenderReport formats records as the export report.
func RenderReport(records []models.Record, fileName string, at time.Time) string {
	var b strings.Builder
	b.WriteString("=== Vault Export ===\n")
	fmt.Fprintf(&b, "Export Date: %s\n", at.Local().Format(DateTimeLayout))
	fmt.Fprintf(&b, "Total Records: %d\n", len(records))
	fmt.Fprintf(&b, "File: %s\n", fileName)
	b.WriteString("=======================\n\n")

	if len(records) == 0 {
		b.WriteString("No records to export.\n")
		return b.String()
	}
	for i, r := range records {
		fmt.Fprintf(&b, "Record %d:\n", i+1)
		fmt.Fprintf(&b, "  ID: %s\n", r.ID)
		fmt.Fprintf(&b, "  Name: %s\n", r.Name)
		fmt.Fprintf(&b, "  Value: %s\n", r.Value)
		fmt.Fprintf(&b, "  Created: %s\n", formatDate(r.Created()))
		b.WriteString("-------------------\n")
	}
	return b.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format(DateLayout)
}
