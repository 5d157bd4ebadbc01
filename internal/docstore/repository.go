package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/recvault/internal/apperr"
	"github.com/starford/recvault/internal/models"
)

const selectColumns = `id, json_extract(doc, '$.name'), json_extract(doc, '$.value'), created_at, updated_at`

// Insert stores a new document under a generated object id.
func (s *Store) Insert(ctx context.Context, in models.Input) (*models.Record, error) {
	id := uuid.NewString()
	_, err := s.conn.ExecContext(ctx,
		s.q(`INSERT INTO {{c}} (id, doc) VALUES (?, json_object('name', ?, 'value', ?))`),
		id, in.Name, in.Value)
	if err != nil {
		return nil, fmt.Errorf("docstore: insert: %w", err)
	}
	return s.get(ctx, models.ID(id))
}

// List returns every document in insertion order.
func (s *Store) List(ctx context.Context) ([]models.Record, error) {
	rows, err := s.conn.QueryContext(ctx, s.q(`SELECT `+selectColumns+` FROM {{c}} ORDER BY rowid`))
	if err != nil {
		return nil, fmt.Errorf("docstore: list: %w", err)
	}
	return scanRecords(rows)
}

// Update replaces name and value of the document with id. The database
// refreshes updated_at.
func (s *Store) Update(ctx context.Context, id models.ID, in models.Input) (*models.Record, error) {
	res, err := s.conn.ExecContext(ctx,
		s.q(`UPDATE {{c}} SET doc = json_object('name', ?, 'value', ?) WHERE id = ?`),
		in.Name, in.Value, id.String())
	if err != nil {
		return nil, fmt.Errorf("docstore: update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("docstore: update: %w", err)
	}
	if n == 0 {
		return nil, apperr.ErrNotFound
	}
	return s.get(ctx, id)
}

// Delete removes the document with id and returns it.
func (s *Store) Delete(ctx context.Context, id models.ID) (*models.Record, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("docstore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	rec, err := scanRecord(tx.QueryRowContext(ctx,
		s.q(`SELECT `+selectColumns+` FROM {{c}} WHERE id = ?`), id.String()))
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM {{c}} WHERE id = ?`), id.String()); err != nil {
		return nil, fmt.Errorf("docstore: delete: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("docstore: commit: %w", err)
	}
	return rec, nil
}

// Search matches term case-insensitively against the id and the name.
func (s *Store) Search(ctx context.Context, term string) ([]models.Record, error) {
	rows, err := s.conn.QueryContext(ctx, s.q(`
		SELECT `+selectColumns+`
		FROM {{c}}
		WHERE instr(fold_lower(id), fold_lower(?1)) > 0
		   OR instr(fold_lower(coalesce(json_extract(doc, '$.name'), '')), fold_lower(?1)) > 0
		ORDER BY rowid
	`), term)
	if err != nil {
		return nil, fmt.Errorf("docstore: search: %w", err)
	}
	return scanRecords(rows)
}

// LastModified returns the most recent created_at or updated_at, or the
// zero time for an empty collection.
func (s *Store) LastModified(ctx context.Context) (time.Time, error) {
	var ts sql.NullString
	err := s.conn.QueryRowContext(ctx, s.q(`SELECT max(updated_at) FROM {{c}}`)).Scan(&ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("docstore: last modified: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return parseTime(ts.String)
}

func (s *Store) get(ctx context.Context, id models.ID) (*models.Record, error) {
	return scanRecord(s.conn.QueryRowContext(ctx,
		s.q(`SELECT `+selectColumns+` FROM {{c}} WHERE id = ?`), id.String()))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var (
		id, created, updated string
		name, value          sql.NullString
	)
	if err := row.Scan(&id, &name, &value, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("docstore: scan: %w", err)
	}
	createdAt, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime(updated)
	if err != nil {
		return nil, err
	}
	return &models.Record{
		ID:        models.ID(id),
		Name:      name.String,
		Value:     value.String,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func scanRecords(rows *sql.Rows) ([]models.Record, error) {
	defer rows.Close()
	out := []models.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("docstore: parse timestamp %q: %w", s, err)
	}
	return t, nil
}
