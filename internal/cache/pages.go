package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kilupskalvis/figfiles/internal/models"
	"github.com/kilupskalvis/figfiles/internal/store"
)

type pagesJSON struct {
	FetchedAt int64         `json:"fetchedAt"`
	Pages     []models.Page `json:"pages"`
}

// Pages caches the page list of individual files under PagesPrefix+key,
// fresh for TTL.
type Pages struct {
	kv     store.KV
	now    func() time.Time
	logger *slog.Logger
}

// NewPages creates a page cache persisted in kv. A nil now uses time.Now.
func NewPages(kv store.KV, now func() time.Time, logger *slog.Logger) *Pages {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &Pages{kv: kv, now: now, logger: logger}
}

// Get returns the cached pages of fileKey if present and still fresh.
func (p *Pages) Get(ctx context.Context, fileKey string) ([]models.Page, bool) {
	raw, ok, err := p.kv.Get(ctx, PagesPrefix+fileKey)
	if err != nil || !ok {
		return nil, false
	}

	var entry pagesJSON
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		p.logger.Debug("page cache entry unreadable", "file", fileKey, "error", err)
		return nil, false
	}
	if !p.now().Before(time.UnixMilli(entry.FetchedAt).Add(TTL)) {
		return nil, false
	}
	if entry.Pages == nil {
		entry.Pages = []models.Page{}
	}
	return entry.Pages, true
}

// Put stores the pages of fileKey stamped with the current time.
func (p *Pages) Put(ctx context.Context, fileKey string, pages []models.Page) error {
	data, err := json.Marshal(pagesJSON{FetchedAt: p.now().UnixMilli(), Pages: pages})
	if err != nil {
		return fmt.Errorf("marshal pages: %w", err)
	}
	if err := p.kv.Set(ctx, PagesPrefix+fileKey, string(data)); err != nil {
		return fmt.Errorf("write pages of %s: %w", fileKey, err)
	}
	return nil
}
