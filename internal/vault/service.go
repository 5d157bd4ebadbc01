// Package vault implements the record-keeping operations on top of a
// pluggable storage strategy.
package vault

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/recvault/internal/apperr"
	"github.com/starford/recvault/internal/events"
	"github.com/starford/recvault/internal/models"
	"github.com/starford/recvault/internal/record"
	"github.com/starford/recvault/internal/storage"
)

// Repository is a vault storage strategy. Update and Delete return
// apperr.ErrNotFound for unknown ids and must not modify anything then.
type Repository interface {
	Insert(ctx context.Context, in models.Input) (*models.Record, error)
	List(ctx context.Context) ([]models.Record, error)
	Update(ctx context.Context, id models.ID, in models.Input) (*models.Record, error)
	Delete(ctx context.Context, id models.ID) (*models.Record, error)
	Search(ctx context.Context, term string) ([]models.Record, error)
	LastModified(ctx context.Context) (time.Time, error)
	Close() error
}

// Config holds the file locations used for exports and backups, relative
// to the files provider root.
type Config struct {
	ExportFile   string
	BackupDir    string
	BackupRetain int // 0 keeps every backup
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service is the vault façade: it validates input, delegates storage to
// the repository, emits lifecycle events and writes a backup after every
// mutation.
type Service struct {
	repo     Repository
	files    storage.Provider
	notifier *events.Notifier
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time

	backupMu sync.Mutex
}

// NewService creates a vault service. notifier may be nil.
func NewService(repo Repository, files storage.Provider, notifier *events.Notifier, cfg Config, opts ...Option) *Service {
	if cfg.ExportFile == "" {
		cfg.ExportFile = "export.txt"
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = "backups"
	}
	s := &Service{
		repo:     repo,
		files:    files,
		notifier: notifier,
		cfg:      cfg,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add validates in, stores it under a new id and returns the record.
func (s *Service) Add(ctx context.Context, in models.Input) (*models.Record, error) {
	if err := record.Validate(in); err != nil {
		return nil, err
	}
	rec, err := s.repo.Insert(ctx, in)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, events.RecordAdded, rec)
	return rec, nil
}

// List returns the whole vault in insertion order.
func (s *Service) List(ctx context.Context) ([]models.Record, error) {
	return s.repo.List(ctx)
}

// Update replaces the name and value of the record with id. An unknown id
// reports apperr.ErrNotFound even when the input is also invalid.
func (s *Service) Update(ctx context.Context, id models.ID, in models.Input) (*models.Record, error) {
	if err := record.Validate(in); err != nil {
		if ok, lookupErr := s.exists(ctx, id); lookupErr != nil {
			return nil, lookupErr
		} else if !ok {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	rec, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, events.RecordUpdated, rec)
	return rec, nil
}

func (s *Service) exists(ctx context.Context, id models.ID) (bool, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range records {
		if r.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes the record with id and returns it.
func (s *Service) Delete(ctx context.Context, id models.ID) (*models.Record, error) {
	rec, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, events.RecordDeleted, rec)
	return rec, nil
}

// Search returns every record whose id or name contains term, ignoring case.
func (s *Service) Search(ctx context.Context, term string) ([]models.Record, error) {
	return s.repo.Search(ctx, term)
}

// Sort returns the vault ordered by field. Unknown fields keep insertion
// order; any order other than desc sorts ascending.
func (s *Service) Sort(ctx context.Context, field SortField, order SortOrder) ([]models.Record, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return SortRecords(records, field, order), nil
}

// NotifyExternalChange tells observers the backing store was modified
// outside this service.
func (s *Service) NotifyExternalChange(ctx context.Context) {
	s.notifier.Emit(ctx, events.Event{Name: events.VaultChanged, Time: s.now()})
}

// Close releases the repository.
func (s *Service) Close() error {
	return s.repo.Close()
}

// afterMutation runs the post-write steps. The store write already
// succeeded, so a failing backup is logged rather than returned.
func (s *Service) afterMutation(ctx context.Context, name string, rec *models.Record) {
	snapshot := *rec
	s.notifier.Emit(ctx, events.Event{Name: name, Record: &snapshot, Time: s.now()})
	if _, err := s.Backup(ctx); err != nil {
		s.logger.Error("backup after mutation failed",
			slog.String("event", name),
			slog.String("error", err.Error()))
	}
}
