package collection

import (
	"context"
	"fmt"
	"testing"

	"github.com/kilupskalvis/figfiles/internal/metrics"
	"github.com/kilupskalvis/figfiles/internal/models"
	"github.com/kilupskalvis/figfiles/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(key string) models.FileRecord {
	return models.FileRecord{Key: key, Name: "File " + key}
}

func keys(files []models.FileRecord) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Key)
	}
	return out
}

func TestCollection_EmptyList(t *testing.T) {
	c := New(Starred, store.NewMemory(), nil, nil)
	assert.Empty(t, c.List(context.Background()))
	assert.NotNil(t, c.List(context.Background()))
}

func TestCollection_AddMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	c := New(Starred, store.NewMemory(), nil, nil)

	require.NoError(t, c.Add(ctx, file("a")))
	require.NoError(t, c.Add(ctx, file("b")))
	require.NoError(t, c.Add(ctx, file("c")))

	assert.Equal(t, []string{"c", "b", "a"}, keys(c.List(ctx)))
}

func TestCollection_CapacityBound(t *testing.T) {
	ctx := context.Background()
	c := New(Starred, store.NewMemory(), nil, nil)

	for i := 0; i < 11; i++ {
		require.NoError(t, c.Add(ctx, file(fmt.Sprintf("f%d", i))))
	}

	got := keys(c.List(ctx))
	require.Len(t, got, 10)
	assert.Equal(t, "f10", got[0])
	assert.Equal(t, "f1", got[9])
	assert.NotContains(t, got, "f0")
}

func TestCollection_ReAddMovesToFront(t *testing.T) {
	ctx := context.Background()
	c := New(Starred, store.NewMemory(), nil, nil)

	require.NoError(t, c.Add(ctx, file("a")))
	require.NoError(t, c.Add(ctx, file("b")))
	require.NoError(t, c.Add(ctx, file("c")))

	updated := file("a")
	updated.Name = "Renamed"
	require.NoError(t, c.Add(ctx, updated))

	list := c.List(ctx)
	assert.Equal(t, []string{"a", "c", "b"}, keys(list))
	assert.Equal(t, "Renamed", list[0].Name)
}

func TestCollection_VisitedCapacity(t *testing.T) {
	ctx := context.Background()
	c := New(Visited, store.NewMemory(), nil, nil)

	for i := 0; i < 7; i++ {
		require.NoError(t, c.Add(ctx, file(fmt.Sprintf("v%d", i))))
	}
	assert.Equal(t, []string{"v6", "v5", "v4", "v3", "v2"}, keys(c.List(ctx)))
}

func TestCollection_RemoveAndContains(t *testing.T) {
	ctx := context.Background()
	c := New(Starred, store.NewMemory(), nil, nil)

	require.NoError(t, c.Add(ctx, file("a")))
	require.NoError(t, c.Add(ctx, file("b")))
	assert.True(t, c.Contains(ctx, file("a")))

	require.NoError(t, c.Remove(ctx, file("a")))
	assert.False(t, c.Contains(ctx, file("a")))
	assert.Equal(t, []string{"b"}, keys(c.List(ctx)))

	// Removing an absent key leaves the list untouched.
	require.NoError(t, c.Remove(ctx, file("zzz")))
	assert.Equal(t, []string{"b"}, keys(c.List(ctx)))
}

func TestCollection_IndependentInstances(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	starred := New(Starred, kv, nil, nil)
	visited := New(Visited, kv, nil, nil)

	require.NoError(t, visited.Add(ctx, file("a")))
	require.NoError(t, visited.Add(ctx, file("b")))
	require.NoError(t, starred.Add(ctx, file("a")))

	assert.Equal(t, []string{"b", "a"}, keys(visited.List(ctx)))
	assert.Equal(t, []string{"a"}, keys(starred.List(ctx)))
}

func TestCollection_PersistsUnderStorageKey(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, New(Starred, kv, nil, nil).Add(ctx, file("a")))

	raw, ok, err := kv.Get(ctx, "starred-files")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"key":"a"`)

	// A fresh instance over the same store sees the entry.
	assert.True(t, New(Starred, kv, nil, nil).Contains(ctx, file("a")))
}

func TestCollection_CorruptTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, Visited.StorageKey, "not json"))

	c := New(Visited, kv, nil, nil)
	assert.Empty(t, c.List(ctx))
	require.NoError(t, c.Add(ctx, file("a")))
	assert.Equal(t, []string{"a"}, keys(c.List(ctx)))
}

func TestCollection_Clear(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	m := metrics.New()
	c := New(Visited, kv, nil, m)

	require.NoError(t, c.Add(ctx, file("a")))
	require.NoError(t, c.Clear(ctx))
	assert.Empty(t, c.List(ctx))

	_, ok, err := kv.Get(ctx, Visited.StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	samples, err := m.Snapshot()
	require.NoError(t, err)
	assert.Contains(t, samples, metrics.Sample{Name: `figfiles_collection_writes_total{collection="visited",op="add"}`, Value: 1})
	assert.Contains(t, samples, metrics.Sample{Name: `figfiles_collection_writes_total{collection="visited",op="clear"}`, Value: 1})
}
