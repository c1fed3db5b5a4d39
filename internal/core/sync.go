// Package core implements figfiles' synchronization engine: it resolves the
// team -> project -> file hierarchy with as few provider calls as the
// freshness ledger allows, and merges partial refreshes into the persisted
// snapshot.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kilupskalvis/figfiles/internal/cache"
	"github.com/kilupskalvis/figfiles/internal/metrics"
	"github.com/kilupskalvis/figfiles/internal/models"
	"github.com/kilupskalvis/figfiles/internal/remote"
	"github.com/kilupskalvis/figfiles/internal/store"
	"golang.org/x/sync/errgroup"
)

// ErrEnumerationFailed wraps a failure to list teams and projects.
var ErrEnumerationFailed = errors.New("could not load team projects")

// Source describes where a resolved hierarchy came from.
type Source string

const (
	// SourceInitial means no snapshot existed and every project was fetched.
	SourceInitial Source = "initial"
	// SourceRefreshed means stale projects were fetched and merged.
	SourceRefreshed Source = "refreshed"
	// SourceCached means every project was fresh and no files were fetched.
	SourceCached Source = "cached"
	// SourceDegraded means live data could not be obtained and the previous
	// snapshot (possibly empty) was returned.
	SourceDegraded Source = "degraded"
)

// SyncResult is the outcome of ResolveHierarchy.
type SyncResult struct {
	Hierarchy models.Hierarchy
	Source    Source
	// Refreshed lists projects fetched successfully in this pass.
	Refreshed []string
	// Failed lists projects whose fetch failed; they keep their previous files.
	Failed []string
	// Notice is a non-fatal message for the user, empty when all went well.
	Notice string
	// Err is the first underlying error behind Notice, if any.
	Err error
}

// Options configures an Engine.
type Options struct {
	TeamIDs []string
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Clock overrides time.Now for the ledger and page cache.
	Clock func() time.Time
	// MaxConcurrency bounds concurrent project fetches; 0 means unbounded.
	MaxConcurrency int
}

// Engine owns the ledger, snapshot and page cache over one store.
type Engine struct {
	api            remote.API
	teamIDs        []string
	ledger         *cache.Ledger
	snapshot       *cache.Snapshot
	pages          *cache.Pages
	logger         *slog.Logger
	metrics        *metrics.Metrics
	maxConcurrency int
}

// NewEngine creates an engine that talks to api and persists into kv.
func NewEngine(api remote.API, kv store.KV, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Engine{
		api:     api,
		teamIDs: opts.TeamIDs,
		ledger: cache.NewLedger(kv,
			cache.WithClock(clock),
			cache.WithLedgerLogger(logger),
		),
		snapshot:       cache.NewSnapshot(kv, logger),
		pages:          cache.NewPages(kv, clock, logger),
		logger:         logger,
		metrics:        opts.Metrics,
		maxConcurrency: opts.MaxConcurrency,
	}
}

// Ledger exposes the freshness ledger.
func (e *Engine) Ledger() *cache.Ledger { return e.ledger }

// Snapshot exposes the snapshot cache.
func (e *Engine) Snapshot() *cache.Snapshot { return e.snapshot }

// ResolveHierarchy returns the best available hierarchy. It never fails:
// problems are logged and reported through SyncResult.Notice.
func (e *Engine) ResolveHierarchy(ctx context.Context) *SyncResult {
	log := e.logger.With("sync_id", uuid.NewString())
	res := e.resolve(ctx, log)
	e.metrics.RecordSync(string(res.Source))
	log.Info("hierarchy resolved",
		"source", res.Source,
		"teams", len(res.Hierarchy),
		"files", res.Hierarchy.FileCount(),
		"refreshed", len(res.Refreshed),
		"failed", len(res.Failed),
	)
	return res
}

func (e *Engine) resolve(ctx context.Context, log *slog.Logger) *SyncResult {
	teams, err := e.api.ListTeamProjects(ctx, e.teamIDs)
	if err != nil {
		log.Error("enumerate teams", "error", err)
		prev, ok := e.snapshot.Load(ctx)
		if !ok {
			prev = models.Hierarchy{}
		}
		return &SyncResult{
			Hierarchy: prev,
			Source:    SourceDegraded,
			Notice:    ErrEnumerationFailed.Error(),
			Err:       fmt.Errorf("%w: %w", ErrEnumerationFailed, err),
		}
	}

	allIDs := uniqueProjectIDs(teams)
	prev, hasPrev := e.snapshot.Load(ctx)

	source := SourceInitial
	toFetch := allIDs
	if hasPrev {
		source = SourceRefreshed
		toFetch = e.ledger.NeedingRefresh(ctx, allIDs)
		if len(toFetch) == 0 {
			log.Debug("all projects fresh, using snapshot", "projects", len(allIDs))
			return &SyncResult{Hierarchy: prev, Source: SourceCached}
		}
	}

	log.Debug("fetching projects", "count", len(toFetch), "initial", !hasPrev)
	fetched, failures := e.fetchProjects(ctx, log, toFetch)

	refreshed := make([]string, 0, len(fetched))
	for _, id := range toFetch {
		if _, ok := fetched[id]; ok {
			refreshed = append(refreshed, id)
		}
	}

	// The ledger is only advanced once the files it vouches for are stored.
	merged := Merge(teams, prev, fetched)
	storeErr := e.snapshot.Store(ctx, merged)
	if storeErr != nil {
		log.Error("store snapshot", "error", storeErr)
	} else if err := e.ledger.MarkRefreshed(ctx, refreshed); err != nil {
		log.Error("update freshness ledger", "error", err)
	}

	res := &SyncResult{Hierarchy: merged, Source: source, Refreshed: refreshed}
	if len(failures) > 0 {
		for _, id := range toFetch {
			if err, ok := failures[id]; ok {
				res.Failed = append(res.Failed, id)
				if res.Err == nil {
					res.Err = err
				}
			}
		}
		res.Notice = fmt.Sprintf("could not load files for %d of %d projects", len(res.Failed), len(toFetch))
		if len(refreshed) == 0 {
			res.Source = SourceDegraded
		}
	}
	if storeErr != nil {
		if res.Err == nil {
			res.Err = storeErr
		}
		if res.Notice != "" {
			res.Notice += "; "
		}
		res.Notice += "could not save files, they will be fetched again"
	}
	return res
}

// fetchProjects fetches each project concurrently. Failures are collected
// per project and never cancel siblings.
func (e *Engine) fetchProjects(ctx context.Context, log *slog.Logger, ids []string) (map[string][]models.FileRecord, map[string]error) {
	var (
		mu       sync.Mutex
		fetched  = make(map[string][]models.FileRecord, len(ids))
		failures = make(map[string]error)
	)

	var g errgroup.Group
	if e.maxConcurrency > 0 {
		g.SetLimit(e.maxConcurrency)
	}
	for _, id := range ids {
		id := id
		g.Go(func() error {
			files, err := e.api.ProjectFiles(ctx, id)
			e.metrics.RecordProjectFetch(err == nil)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn("fetch project files", "project", id, "error", err)
				failures[id] = err
				return nil
			}
			fetched[id] = files
			return nil
		})
	}
	g.Wait()

	return fetched, failures
}

// uniqueProjectIDs returns every project id across teams, first occurrence
// order, without duplicates.
func uniqueProjectIDs(teams []models.TeamProjects) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, team := range teams {
		for _, p := range team.Projects {
			if p.ID == "" || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// ClearCache drops the snapshot, page entries and freshness ledger so the
// next resolution is an initial load.
func (e *Engine) ClearCache(ctx context.Context) error {
	if err := e.snapshot.Clear(ctx); err != nil {
		return err
	}
	return e.ledger.Clear(ctx)
}
