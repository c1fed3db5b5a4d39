// Package cache persists what the synchronization engine knows between
// invocations: per-project freshness, the last full hierarchy snapshot,
// and per-file page details.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/kilupskalvis/figfiles/internal/store"
)

const (
	// LedgerKey stores the freshness ledger blob.
	LedgerKey = "PROJECT_TTLS"
	// TTL is how long a fetched project stays fresh.
	TTL = 30 * time.Minute
)

// Entry records when a project was last fetched. ExpiresAt is always
// LastFetchedAt + TTL.
type Entry struct {
	LastFetchedAt time.Time
	ExpiresAt     time.Time
}

// entryJSON is the persisted form, in unix milliseconds. The optional
// nanosecond fields keep sub-millisecond precision; entries without them
// fall back to the millisecond values.
type entryJSON struct {
	LastFetched   int64 `json:"lastFetched"`
	ExpiresAt     int64 `json:"expiresAt"`
	LastFetchedNs int64 `json:"lastFetchedNs,omitempty"`
	ExpiresAtNs   int64 `json:"expiresAtNs,omitempty"`
}

func newEntryJSON(fetched time.Time) entryJSON {
	expires := fetched.Add(TTL)
	return entryJSON{
		LastFetched:   fetched.UnixMilli(),
		ExpiresAt:     expires.UnixMilli(),
		LastFetchedNs: fetched.UnixNano(),
		ExpiresAtNs:   expires.UnixNano(),
	}
}

func (e entryJSON) entry() Entry {
	if e.LastFetchedNs != 0 && e.ExpiresAtNs != 0 {
		return Entry{
			LastFetchedAt: time.Unix(0, e.LastFetchedNs),
			ExpiresAt:     time.Unix(0, e.ExpiresAtNs),
		}
	}
	return Entry{
		LastFetchedAt: time.UnixMilli(e.LastFetched),
		ExpiresAt:     time.UnixMilli(e.ExpiresAt),
	}
}

// Ledger tracks per-project freshness in a single persisted blob. All
// writes go through MarkRefreshed, which takes a batch of ids and performs
// one read-modify-write under a lock.
type Ledger struct {
	kv     store.KV
	now    func() time.Time
	logger *slog.Logger
	mu     sync.Mutex
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// WithLedgerLogger sets the logger.
func WithLedgerLogger(logger *slog.Logger) LedgerOption {
	return func(l *Ledger) { l.logger = logger }
}

// NewLedger creates a ledger persisted in kv.
func NewLedger(kv store.KV, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		kv:     kv,
		now:    time.Now,
		logger: discardLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// load reads the ledger. Missing or unparseable data yields an empty ledger.
func (l *Ledger) load(ctx context.Context) map[string]entryJSON {
	raw, ok, err := l.kv.Get(ctx, LedgerKey)
	if err != nil {
		l.logger.Warn("read freshness ledger", "error", err)
		return map[string]entryJSON{}
	}
	if !ok || raw == "" {
		return map[string]entryJSON{}
	}

	var entries map[string]entryJSON
	if err := json.Unmarshal([]byte(raw), &entries); err != nil || entries == nil {
		l.logger.Debug("freshness ledger unreadable, treating as empty", "error", err)
		return map[string]entryJSON{}
	}
	return entries
}

// NeedingRefresh returns the ids whose entry is missing or whose expiry is at
// or before now. Input order is preserved.
func (l *Ledger) NeedingRefresh(ctx context.Context, ids []string) []string {
	l.mu.Lock()
	entries := l.load(ctx)
	l.mu.Unlock()

	now := l.now()
	var stale []string
	for _, id := range ids {
		e, ok := entries[id]
		if !ok || !now.Before(e.entry().ExpiresAt) {
			stale = append(stale, id)
		}
	}
	return stale
}

// Entry returns the freshness entry for a project.
func (l *Ledger) Entry(ctx context.Context, id string) (Entry, bool) {
	l.mu.Lock()
	entries := l.load(ctx)
	l.mu.Unlock()

	e, ok := entries[id]
	if !ok {
		return Entry{}, false
	}
	return e.entry(), true
}

// MarkRefreshed stamps every id as fetched now and persists the whole ledger
// in one write.
func (l *Ledger) MarkRefreshed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.load(ctx)
	now := l.now()
	for _, id := range ids {
		entries[id] = newEntryJSON(now)
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal freshness ledger: %w", err)
	}
	if err := l.kv.Set(ctx, LedgerKey, string(data)); err != nil {
		return fmt.Errorf("write freshness ledger: %w", err)
	}
	return nil
}

// Clear removes every freshness entry.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.kv.Remove(ctx, LedgerKey); err != nil {
		return fmt.Errorf("clear freshness ledger: %w", err)
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
