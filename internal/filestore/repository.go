package filestore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/starford/recvault/internal/apperr"
	"github.com/starford/recvault/internal/models"
	"github.com/starford/recvault/internal/record"
)

// Repository is the file-backed vault storage strategy. Every call loads
// the collection from disk; mutations save it back before returning.
// Load-modify-save is serialised per repository, so concurrent requests in
// one process cannot lose each other's updates. Separate processes sharing
// the file still race (last writer wins).
type Repository struct {
	coll *Collection
	ids  *record.IDGenerator
	now  func() time.Time

	mu sync.Mutex
}

// NewRepository wraps coll. ids may be nil for a wall-clock generator.
func NewRepository(coll *Collection, ids *record.IDGenerator) *Repository {
	if ids == nil {
		ids = record.NewIDGenerator(nil)
	}
	return &Repository{coll: coll, ids: ids, now: time.Now}
}

// Insert appends a new record with a fresh id.
func (r *Repository) Insert(_ context.Context, in models.Input) (*models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.coll.Read()
	if err != nil {
		return nil, err
	}
	var floor int64
	for _, rec := range data {
		if n, ok := rec.ID.Int64(); ok && n > floor {
			floor = n
		}
	}
	rec := models.Record{
		ID:        models.IntID(r.ids.Next(floor)),
		Name:      in.Name,
		Value:     in.Value,
		CreatedAt: r.now().UTC(),
	}
	data = append(data, rec)
	if err := r.coll.Write(data); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns every record in insertion order.
func (r *Repository) List(_ context.Context) ([]models.Record, error) {
	return r.coll.Read()
}

// Update replaces name and value of the record with id.
func (r *Repository) Update(_ context.Context, id models.ID, in models.Input) (*models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.coll.Read()
	if err != nil {
		return nil, err
	}
	i := indexOf(data, id)
	if i < 0 {
		return nil, apperr.ErrNotFound
	}
	data[i].Name = in.Name
	data[i].Value = in.Value
	data[i].UpdatedAt = r.now().UTC()
	if err := r.coll.Write(data); err != nil {
		return nil, err
	}
	rec := data[i]
	return &rec, nil
}

// Delete removes the record with id and returns it.
func (r *Repository) Delete(_ context.Context, id models.ID) (*models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.coll.Read()
	if err != nil {
		return nil, err
	}
	i := indexOf(data, id)
	if i < 0 {
		return nil, apperr.ErrNotFound
	}
	rec := data[i]
	data = slices.Delete(data, i, i+1)
	if err := r.coll.Write(data); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Search scans every record for term.
func (r *Repository) Search(_ context.Context, term string) ([]models.Record, error) {
	data, err := r.coll.Read()
	if err != nil {
		return nil, err
	}
	out := []models.Record{}
	for _, rec := range data {
		if record.Matches(rec, term) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// LastModified returns the backing file's modification time.
func (r *Repository) LastModified(_ context.Context) (time.Time, error) {
	return r.coll.ModTime()
}

// Close is a no-op; the file is not held open between calls.
func (r *Repository) Close() error { return nil }

func indexOf(data []models.Record, id models.ID) int {
	return slices.IndexFunc(data, func(rec models.Record) bool { return rec.ID == id })
}
