// Package collection implements bounded recency lists of files: a fixed
// capacity, deduplicated by file key, most recently added first.
package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/kilupskalvis/figfiles/internal/metrics"
	"github.com/kilupskalvis/figfiles/internal/models"
	"github.com/kilupskalvis/figfiles/internal/store"
)

// Config names a collection, its storage key and its capacity.
type Config struct {
	Name       string
	StorageKey string
	MaxItems   int
}

var (
	// Starred holds files the user pinned.
	Starred = Config{Name: "starred", StorageKey: "starred-files", MaxItems: 10}
	// Visited holds files the user opened recently.
	Visited = Config{Name: "visited", StorageKey: "VISITED_FIGMA_FILES", MaxItems: 5}
)

// Collection is one persisted recency list. Each mutation reloads the list,
// applies the change and writes it back as a single value.
type Collection struct {
	cfg     Config
	kv      store.KV
	logger  *slog.Logger
	metrics *metrics.Metrics
	mu      sync.Mutex
}

// New creates a collection persisted in kv. Logger and metrics may be nil.
func New(cfg Config, kv store.KV, logger *slog.Logger, m *metrics.Metrics) *Collection {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Collection{cfg: cfg, kv: kv, logger: logger, metrics: m}
}

// Name returns the collection's display name.
func (c *Collection) Name() string { return c.cfg.Name }

// load returns the persisted list; anything unreadable is an empty list.
func (c *Collection) load(ctx context.Context) []models.FileRecord {
	raw, ok, err := c.kv.Get(ctx, c.cfg.StorageKey)
	if err != nil {
		c.logger.Warn("read collection", "collection", c.cfg.Name, "error", err)
		return []models.FileRecord{}
	}
	if !ok {
		return []models.FileRecord{}
	}

	var files []models.FileRecord
	if err := json.Unmarshal([]byte(raw), &files); err != nil || files == nil {
		c.logger.Debug("collection unreadable, treating as empty", "collection", c.cfg.Name, "error", err)
		return []models.FileRecord{}
	}
	return files
}

func (c *Collection) save(ctx context.Context, files []models.FileRecord) error {
	data, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("marshal %s files: %w", c.cfg.Name, err)
	}
	if err := c.kv.Set(ctx, c.cfg.StorageKey, string(data)); err != nil {
		return fmt.Errorf("write %s files: %w", c.cfg.Name, err)
	}
	return nil
}

// withoutKey returns files minus any entry whose key matches.
func withoutKey(files []models.FileRecord, key string) []models.FileRecord {
	out := make([]models.FileRecord, 0, len(files))
	for _, f := range files {
		if f.Key != key {
			out = append(out, f)
		}
	}
	return out
}

// Add moves file to the front, dropping any older entry with the same key
// and truncating to capacity.
func (c *Collection) Add(ctx context.Context, file models.FileRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := append([]models.FileRecord{file}, withoutKey(c.load(ctx), file.Key)...)
	if c.cfg.MaxItems > 0 && len(next) > c.cfg.MaxItems {
		next = next[:c.cfg.MaxItems]
	}
	if err := c.save(ctx, next); err != nil {
		return err
	}
	c.metrics.RecordCollectionWrite(c.cfg.Name, "add")
	return nil
}

// Remove deletes the entry with file's key, if any.
func (c *Collection) Remove(ctx context.Context, file models.FileRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.save(ctx, withoutKey(c.load(ctx), file.Key)); err != nil {
		return err
	}
	c.metrics.RecordCollectionWrite(c.cfg.Name, "remove")
	return nil
}

// Contains reports whether an entry with file's key is present.
func (c *Collection) Contains(ctx context.Context, file models.FileRecord) bool {
	for _, f := range c.List(ctx) {
		if f.Key == file.Key {
			return true
		}
	}
	return false
}

// List returns the entries, most recent first.
func (c *Collection) List(ctx context.Context) []models.FileRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Clear removes the whole collection.
func (c *Collection) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Remove(ctx, c.cfg.StorageKey); err != nil {
		return fmt.Errorf("clear %s files: %w", c.cfg.Name, err)
	}
	c.metrics.RecordCollectionWrite(c.cfg.Name, "clear")
	return nil
}
