package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kilupskalvis/figfiles/internal/models"
	"github.com/kilupskalvis/figfiles/internal/store"
)

const (
	// SnapshotKey stores the full hierarchy blob.
	SnapshotKey = "PROJECT_FILES"
	// TeamNamesKey stores the comma-joined team names of the last snapshot.
	TeamNamesKey = "teamNames"
	// PagesPrefix namespaces per-file page entries.
	PagesPrefix = "PAGES-"
)

// teamRecord reads both the current layout and the older one in which a
// team's projects were stored under "files".
type teamRecord struct {
	ID       string                   `json:"id,omitempty"`
	Name     string                   `json:"name"`
	Projects []models.ProjectSnapshot `json:"projects"`
	Files    []models.ProjectSnapshot `json:"files,omitempty"`
}

// Snapshot persists the last-known full hierarchy.
type Snapshot struct {
	kv     store.KV
	logger *slog.Logger
}

// NewSnapshot creates a snapshot cache persisted in kv.
func NewSnapshot(kv store.KV, logger *slog.Logger) *Snapshot {
	if logger == nil {
		logger = discardLogger()
	}
	return &Snapshot{kv: kv, logger: logger}
}

// Load returns the stored hierarchy. Absence, read errors and parse failures
// all report false.
func (s *Snapshot) Load(ctx context.Context) (models.Hierarchy, bool) {
	raw, ok, err := s.kv.Get(ctx, SnapshotKey)
	if err != nil {
		s.logger.Warn("read snapshot", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var records []teamRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil || records == nil {
		s.logger.Debug("snapshot unreadable, treating as absent", "error", err)
		return nil, false
	}

	h := make(models.Hierarchy, 0, len(records))
	for _, r := range records {
		projects := r.Projects
		if projects == nil {
			projects = r.Files
		}
		if projects == nil {
			projects = []models.ProjectSnapshot{}
		}
		h = append(h, models.TeamSnapshot{ID: r.ID, Name: r.Name, Projects: projects})
	}
	return h, true
}

// Store overwrites the snapshot and the team-name list.
func (s *Snapshot) Store(ctx context.Context, h models.Hierarchy) error {
	if h == nil {
		h = models.Hierarchy{}
	}
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, SnapshotKey, string(data)); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	names := make([]string, 0, len(h))
	for _, team := range h {
		names = append(names, team.Name)
	}
	if err := s.kv.Set(ctx, TeamNamesKey, strings.Join(names, ",")); err != nil {
		return fmt.Errorf("write team names: %w", err)
	}
	return nil
}

// Clear removes the snapshot, its team names and every per-file page entry.
func (s *Snapshot) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, SnapshotKey); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	if err := s.kv.Remove(ctx, TeamNamesKey); err != nil {
		return fmt.Errorf("clear team names: %w", err)
	}

	keys, err := store.KeysWithPrefix(ctx, s.kv, PagesPrefix)
	if err != nil {
		s.logger.Error("list page cache keys", "error", err)
		return nil
	}
	for _, k := range keys {
		if err := s.kv.Remove(ctx, k); err != nil {
			s.logger.Error("clear page cache entry", "key", k, "error", err)
		}
	}
	return nil
}
