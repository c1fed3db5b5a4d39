package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/kilupskalvis/figfiles/internal/models"
	"github.com/kilupskalvis/figfiles/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func sampleHierarchy() models.Hierarchy {
	return models.Hierarchy{
		{ID: "t1", Name: "Design", Projects: []models.ProjectSnapshot{
			{ID: "p1", Name: "Web", Files: []models.FileRecord{{Key: "f1", Name: "Home"}}},
			{ID: "p2", Name: "Empty", Files: []models.FileRecord{}},
		}},
		{ID: "t2", Name: "Brand", Projects: []models.ProjectSnapshot{}},
	}
}

func TestSnapshot_LoadAbsent(t *testing.T) {
	s := NewSnapshot(store.NewMemory(), nil)
	h, ok := s.Load(context.Background())
	assert.False(t, ok)
	assert.Nil(t, h)
}

func TestSnapshot_StoreLoad(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := NewSnapshot(kv, nil)

	require.NoError(t, s.Store(ctx, sampleHierarchy()))

	h, ok := s.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, sampleHierarchy(), h)

	names, ok, err := kv.Get(ctx, TeamNamesKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Design,Brand", names)
}

func TestSnapshot_StoreOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewSnapshot(store.NewMemory(), nil)

	require.NoError(t, s.Store(ctx, sampleHierarchy()))
	require.NoError(t, s.Store(ctx, models.Hierarchy{{Name: "Only", Projects: []models.ProjectSnapshot{}}}))

	h, ok := s.Load(ctx)
	require.True(t, ok)
	require.Len(t, h, 1)
	assert.Equal(t, "Only", h[0].Name)
}

func TestSnapshot_EmptyHierarchyIsPresent(t *testing.T) {
	ctx := context.Background()
	s := NewSnapshot(store.NewMemory(), nil)
	require.NoError(t, s.Store(ctx, nil))

	h, ok := s.Load(ctx)
	assert.True(t, ok)
	assert.Empty(t, h)
}

func TestSnapshot_CorruptTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{"{broken", `{"name":"not an array"}`, "null", ""} {
		kv := store.NewMemory()
		require.NoError(t, kv.Set(ctx, SnapshotKey, raw))
		_, ok := NewSnapshot(kv, nil).Load(ctx)
		assert.False(t, ok, "raw=%q", raw)
	}
}

func TestSnapshot_ReadsLegacyLayout(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, SnapshotKey,
		`[{"name":"Design","files":[{"name":"Web","files":[{"key":"f1","name":"Home"}]}]}]`))

	h, ok := NewSnapshot(kv, nil).Load(ctx)
	require.True(t, ok)
	require.Len(t, h, 1)
	require.Len(t, h[0].Projects, 1)
	assert.Equal(t, "Web", h[0].Projects[0].Name)
	assert.Equal(t, "f1", h[0].Projects[0].Files[0].Key)
}

func TestSnapshot_ClearSweepsPages(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := NewSnapshot(kv, nil)
	require.NoError(t, s.Store(ctx, sampleHierarchy()))
	require.NoError(t, kv.Set(ctx, PagesPrefix+"f1", "{}"))
	require.NoError(t, kv.Set(ctx, PagesPrefix+"f2", "{}"))
	require.NoError(t, kv.Set(ctx, "starred-files", "[]"))

	require.NoError(t, s.Clear(ctx))

	_, ok := s.Load(ctx)
	assert.False(t, ok)
	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.NotContains(t, keys, PagesPrefix+"f1")
	assert.NotContains(t, keys, PagesPrefix+"f2")
	assert.NotContains(t, keys, TeamNamesKey)
	assert.Contains(t, keys, "starred-files")
}

func TestSnapshot_ClearWithoutSnapshot(t *testing.T) {
	assert.NoError(t, NewSnapshot(store.NewMemory(), nil).Clear(context.Background()))
}

func TestPages_PutGet(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	p := NewPages(store.NewMemory(), clock.Now, nil)

	_, ok := p.Get(ctx, "f1")
	assert.False(t, ok)

	pages := []models.Page{{ID: "0:1", Name: "Cover", Type: "CANVAS"}}
	require.NoError(t, p.Put(ctx, "f1", pages))

	got, ok := p.Get(ctx, "f1")
	require.True(t, ok)
	assert.Equal(t, pages, got)

	clock.Advance(TTL)
	_, ok = p.Get(ctx, "f1")
	assert.False(t, ok)
}

func TestPages_StoredUnderPrefix(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	p := NewPages(kv, func() time.Time { return time.Unix(0, 0) }, nil)
	require.NoError(t, p.Put(ctx, "abc", []models.Page{}))

	_, ok, err := kv.Get(ctx, "PAGES-abc")
	require.NoError(t, err)
	assert.True(t, ok)
}
