package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/recvault/internal/events"
	"github.com/starford/recvault/internal/models"
)

const (
	backupPrefix    = "backup_"
	maxBackupSuffix = 999
)

// Snapshot is the JSON document written for every backup.
type Snapshot struct {
	Timestamp    string          `json:"timestamp"`
	TotalRecords int             `json:"totalRecords"`
	Records      []models.Record `json:"records"`
}

// Backup writes a snapshot of the whole vault into the backup directory,
// prunes snapshots beyond the retention limit, and returns the absolute
// path of the new file.
func (s *Service) Backup(ctx context.Context) (string, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return "", err
	}

	s.backupMu.Lock()
	defer s.backupMu.Unlock()

	now := s.now().UTC()
	snap := Snapshot{
		Timestamp:    now.Format("2006-01-02T15:04:05.000Z07:00"),
		TotalRecords: len(records),
		Records:      records,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("vault: encode backup: %w", err)
	}

	name, err := s.backupName(now)
	if err != nil {
		return "", err
	}
	if err := s.files.Write(name, data); err != nil {
		return "", fmt.Errorf("vault: write backup: %w", err)
	}
	abs, err := s.files.Resolve(name)
	if err != nil {
		return "", err
	}
	s.logger.Info("backup created", slog.String("path", abs), slog.Int("records", len(records)))
	s.notifier.Emit(ctx, events.Event{Name: events.BackupCreated, Path: abs, Time: now})

	if err := s.pruneBackups(); err != nil {
		s.logger.Warn("backup pruning failed", slog.String("error", err.Error()))
	}
	return abs, nil
}

// Backups lists existing snapshot files, oldest first.
func (s *Service) Backups() ([]models.FileMetadata, error) {
	metas, err := s.files.List(s.cfg.BackupDir, ".json")
	if err != nil {
		return nil, fmt.Errorf("vault: list backups: %w", err)
	}
	out := metas[:0]
	for _, m := range metas {
		if strings.HasPrefix(filepath.Base(m.Path), backupPrefix) {
			out = append(out, m)
		}
	}
	return out, nil
}

// backupName returns a free file name derived from the sanitized timestamp.
// Collision suffixes are zero-padded so names sort chronologically.
func (s *Service) backupName(t time.Time) (string, error) {
	stamp := t.Format("2006-01-02_15-04-05") + fmt.Sprintf("-%03d", t.Nanosecond()/int(time.Millisecond))
	base := path.Join(s.cfg.BackupDir, backupPrefix+stamp)
	name := base + ".json"
	for i := 1; ; i++ {
		if _, err := s.files.Stat(name); err != nil {
			return name, nil
		}
		if i > maxBackupSuffix {
			return "", fmt.Errorf("vault: no free backup name for %s", stamp)
		}
		name = fmt.Sprintf("%s_%03d.json", base, i)
	}
}

func (s *Service) pruneBackups() error {
	if s.cfg.BackupRetain <= 0 {
		return nil
	}
	metas, err := s.Backups()
	if err != nil {
		return err
	}
	excess := len(metas) - s.cfg.BackupRetain
	for i := 0; i < excess; i++ {
		if err := s.files.Delete(metas[i].Path); err != nil {
			return err
		}
		s.logger.Debug("backup pruned", slog.String("path", metas[i].Path))
	}
	return nil
}
