package filestore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/recvault/internal/apperr"
	"github.com/starford/recvault/internal/models"
	"github.com/starford/recvault/internal/record"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()
	c, _ := testCollection(t)
	return NewRepository(c, nil)
}

func TestInsertAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	clock := time.UnixMilli(1700000000000)
	c, _ := testCollection(t)
	r := NewRepository(c, record.NewIDGenerator(func() time.Time { return clock }))

	a, err := r.Insert(ctx, models.Input{Name: "a", Value: "1"})
	require.NoError(t, err)
	b, err := r.Insert(ctx, models.Input{Name: "b", Value: "2"})
	require.NoError(t, err)

	assert.Equal(t, models.IntID(1700000000000), a.ID)
	assert.Equal(t, models.IntID(1700000000001), b.ID)
	assert.False(t, a.CreatedAt.IsZero())

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, "b", all[1].Name)
}

func TestInsertKeepsNonStringValues(t *testing.T) {
	ctx := context.Background()
	c, dir := testCollection(t)
	stored := `[{"id":1700000000000,"name":"port","value":8080}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vault.json"), []byte(stored), 0o644))
	r := NewRepository(c, nil)

	_, err := r.Insert(ctx, models.Input{Name: "b", Value: "2"})
	require.NoError(t, err)

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "port", all[0].Name)
	assert.Equal(t, "8080", all[0].Value)
}

func TestIDsNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	clock := time.UnixMilli(5000)
	c, _ := testCollection(t)
	r := NewRepository(c, record.NewIDGenerator(func() time.Time { return clock }))

	_, err := r.Insert(ctx, models.Input{Name: "a", Value: "1"})
	require.NoError(t, err)
	b, err := r.Insert(ctx, models.Input{Name: "b", Value: "2"})
	require.NoError(t, err)
	_, err = r.Delete(ctx, b.ID)
	require.NoError(t, err)

	c2, err := r.Insert(ctx, models.Input{Name: "c", Value: "3"})
	require.NoError(t, err)
	assert.NotEqual(t, b.ID, c2.ID)
}

func TestInsertAboveExistingIDs(t *testing.T) {
	ctx := context.Background()
	c, _ := testCollection(t)
	require.NoError(t, c.Write([]models.Record{{ID: models.IntID(9999999999999), Name: "future", Value: "x"}}))
	r := NewRepository(c, record.NewIDGenerator(func() time.Time { return time.UnixMilli(1) }))

	rec, err := r.Insert(ctx, models.Input{Name: "a", Value: "1"})
	require.NoError(t, err)
	assert.Equal(t, models.IntID(10000000000000), rec.ID)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	r := testRepository(t)
	rec, err := r.Insert(ctx, models.Input{Name: "a", Value: "1"})
	require.NoError(t, err)

	updated, err := r.Update(ctx, rec.ID, models.Input{Name: "A", Value: "2"})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, "A", updated.Name)
	assert.Equal(t, "2", updated.Value)
	assert.False(t, updated.UpdatedAt.IsZero())

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", all[0].Name)
}

func TestUpdateMissingLeavesFileUntouched(t *testing.T) {
	ctx := context.Background()
	r := testRepository(t)
	_, err := r.Insert(ctx, models.Input{Name: "a", Value: "1"})
	require.NoError(t, err)
	before, err := r.LastModified(ctx)
	require.NoError(t, err)

	_, err = r.Update(ctx, models.IntID(1), models.Input{Name: "x", Value: "y"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	after, err := r.LastModified(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r := testRepository(t)
	a, err := r.Insert(ctx, models.Input{Name: "a", Value: "1"})
	require.NoError(t, err)
	b, err := r.Insert(ctx, models.Input{Name: "b", Value: "2"})
	require.NoError(t, err)

	removed, err := r.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, removed.ID)

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)

	_, err = r.Delete(ctx, a.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	r := testRepository(t)
	_, _ = r.Insert(ctx, models.Input{Name: "Github Token", Value: "1"})
	_, _ = r.Insert(ctx, models.Input{Name: "database", Value: "2"})

	hits, err := r.Search(ctx, "GITHUB")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Github Token", hits[0].Name)

	none, err := r.Search(ctx, "nothing")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestConcurrentInsertsAreNotLost(t *testing.T) {
	ctx := context.Background()
	r := testRepository(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Insert(ctx, models.Input{Name: "n", Value: "v"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 20)

	seen := map[models.ID]bool{}
	for _, rec := range all {
		assert.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		seen[rec.ID] = true
	}
}
