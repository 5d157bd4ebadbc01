package docstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/recvault/internal/apperr"
	"github.com/starford/recvault/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "recvault-test.db"), "records")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRejectsBadCollection(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "x.db"), "records; DROP TABLE x")
	assert.Error(t, err)
}

func TestOpenDefaultCollection(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "x.db"), "")
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, DefaultCollection, s.Collection())
}

func TestInsertAssignsObjectIDAndTimestamps(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	rec, err := s.Insert(ctx, models.Input{Name: "a", Value: "1"})
	require.NoError(t, err)

	_, err = uuid.Parse(rec.ID.String())
	assert.NoError(t, err, "id should be a generated object id")
	assert.Equal(t, "a", rec.Name)
	assert.Equal(t, "1", rec.Value)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.False(t, rec.UpdatedAt.IsZero())
}

func TestListInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	for _, n := range []string{"c", "a", "b"} {
		_, err := s.Insert(ctx, models.Input{Name: n, Value: "v"})
		require.NoError(t, err)
	}
	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Name)
	assert.Equal(t, "a", all[1].Name)
	assert.Equal(t, "b", all[2].Name)
}

func TestUpdateRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	rec, err := s.Insert(ctx, models.Input{Name: "a", Value: "1"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, rec.ID, models.Input{Name: "b", Value: "2"})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, "b", updated.Name)
	assert.Equal(t, "2", updated.Value)
	assert.Equal(t, rec.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(rec.UpdatedAt))
}

func TestUpdateMissing(t *testing.T) {
	s := testStore(t)
	_, err := s.Update(context.Background(), models.ID("nope"), models.Input{Name: "a", Value: "1"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	rec, err := s.Insert(ctx, models.Input{Name: "a", Value: "1"})
	require.NoError(t, err)

	removed, err := s.Delete(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, removed.ID)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = s.Delete(ctx, rec.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	a, _ := s.Insert(ctx, models.Input{Name: "GitHub Token", Value: "1"})
	_, _ = s.Insert(ctx, models.Input{Name: "database", Value: "2"})

	hits, err := s.Search(ctx, "github")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, a.ID, hits[0].ID)

	hits, err = s.Search(ctx, a.ID.String()[:8])
	require.NoError(t, err)
	require.Len(t, hits, 1)

	all, err := s.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSearchFoldsNonASCII(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	a, _ := s.Insert(ctx, models.Input{Name: "Émile", Value: "1"})
	b, _ := s.Insert(ctx, models.Input{Name: "straße", Value: "2"})

	hits, err := s.Search(ctx, "émi")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, a.ID, hits[0].ID)

	hits, err = s.Search(ctx, "ÉMILE")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, a.ID, hits[0].ID)

	hits, err = s.Search(ctx, "STRAßE")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, b.ID, hits[0].ID)
}

func TestLastModified(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	ts, err := s.LastModified(ctx)
	require.NoError(t, err)
	assert.True(t, ts.IsZero())

	rec, err := s.Insert(ctx, models.Input{Name: "a", Value: "1"})
	require.NoError(t, err)
	ts, err = s.LastModified(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec.UpdatedAt, ts)
}
