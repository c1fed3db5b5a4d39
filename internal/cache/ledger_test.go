package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kilupskalvis/figfiles/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLedger_MissingEntryNeedsRefresh(t *testing.T) {
	l := NewLedger(store.NewMemory())
	assert.Equal(t, []string{"a", "b"}, l.NeedingRefresh(context.Background(), []string{"a", "b"}))
}

func TestLedger_TTLBoundary(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	l := NewLedger(store.NewMemory(), WithClock(clock.Now))

	require.NoError(t, l.MarkRefreshed(ctx, []string{"p1"}))
	assert.Empty(t, l.NeedingRefresh(ctx, []string{"p1"}))

	clock.Advance(TTL - time.Millisecond)
	assert.Empty(t, l.NeedingRefresh(ctx, []string{"p1"}))

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"p1"}, l.NeedingRefresh(ctx, []string{"p1"}))

	clock.Advance(time.Hour)
	assert.Equal(t, []string{"p1"}, l.NeedingRefresh(ctx, []string{"p1"}))
}

func TestLedger_TTLBoundarySubMillisecond(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 700_000, time.UTC)}
	l := NewLedger(store.NewMemory(), WithClock(clock.Now))

	require.NoError(t, l.MarkRefreshed(ctx, []string{"p1"}))

	clock.Advance(TTL - 500*time.Microsecond)
	assert.Empty(t, l.NeedingRefresh(ctx, []string{"p1"}))

	clock.Advance(500 * time.Microsecond)
	assert.Equal(t, []string{"p1"}, l.NeedingRefresh(ctx, []string{"p1"}))
}

func TestLedger_EntryExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	l := NewLedger(store.NewMemory(), WithClock(clock.Now))

	require.NoError(t, l.MarkRefreshed(ctx, []string{"p1"}))
	e, ok := l.Entry(ctx, "p1")
	require.True(t, ok)
	assert.True(t, e.LastFetchedAt.Equal(clock.Now()))
	assert.Equal(t, TTL, e.ExpiresAt.Sub(e.LastFetchedAt))

	_, ok = l.Entry(ctx, "missing")
	assert.False(t, ok)
}

func TestLedger_MarkRefreshedKeepsOtherEntries(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	l := NewLedger(store.NewMemory(), WithClock(clock.Now))

	require.NoError(t, l.MarkRefreshed(ctx, []string{"a"}))
	clock.Advance(10 * time.Minute)
	require.NoError(t, l.MarkRefreshed(ctx, []string{"b"}))

	ea, ok := l.Entry(ctx, "a")
	require.True(t, ok)
	eb, ok := l.Entry(ctx, "b")
	require.True(t, ok)
	assert.Equal(t, 10*time.Minute, eb.LastFetchedAt.Sub(ea.LastFetchedAt))

	clock.Advance(20 * time.Minute)
	assert.Equal(t, []string{"a"}, l.NeedingRefresh(ctx, []string{"a", "b"}))
}

func TestLedger_ConcurrentMarkRefreshed(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(store.NewMemory())

	ids := []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7"}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, l.MarkRefreshed(ctx, []string{id}))
		}(id)
	}
	wg.Wait()

	assert.Empty(t, l.NeedingRefresh(ctx, ids))
}

func TestLedger_CorruptBlobTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, LedgerKey, "{not json"))

	l := NewLedger(kv)
	assert.Equal(t, []string{"p1"}, l.NeedingRefresh(ctx, []string{"p1"}))

	// A write replaces the corrupt blob.
	require.NoError(t, l.MarkRefreshed(ctx, []string{"p1"}))
	assert.Empty(t, l.NeedingRefresh(ctx, []string{"p1"}))
}

func TestLedger_ReadsMillisecondFormat(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	kv := store.NewMemory()
	fetched := clock.Now().UnixMilli()
	require.NoError(t, kv.Set(ctx, LedgerKey,
		`{"p1":{"lastFetched":`+itoa(fetched)+`,"expiresAt":`+itoa(fetched+int64(TTL/time.Millisecond))+`}}`))

	l := NewLedger(kv, WithClock(clock.Now))
	assert.Empty(t, l.NeedingRefresh(ctx, []string{"p1"}))
}

func TestLedger_Clear(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(store.NewMemory())
	require.NoError(t, l.MarkRefreshed(ctx, []string{"p1"}))
	require.NoError(t, l.Clear(ctx))
	assert.Equal(t, []string{"p1"}, l.NeedingRefresh(ctx, []string{"p1"}))
}

func TestLedger_MarkRefreshedEmptyBatchNoWrite(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	l := NewLedger(kv)
	require.NoError(t, l.MarkRefreshed(ctx, nil))
	_, ok, _ := kv.Get(ctx, LedgerKey)
	assert.False(t, ok)
}
