package core

import (
	"context"

	"github.com/kilupskalvis/figfiles/internal/models"
)

// PagesResult is the outcome of FilePages.
type PagesResult struct {
	Pages  []models.Page
	Cached bool
	Notice string
	Err    error
}

// FilePages returns the top-level pages of a file, served from the page cache
// while fresh. A fetch failure yields an empty list and a notice.
func (e *Engine) FilePages(ctx context.Context, fileKey string) *PagesResult {
	if pages, ok := e.pages.Get(ctx, fileKey); ok {
		return &PagesResult{Pages: pages, Cached: true}
	}

	pages, err := e.api.FilePages(ctx, fileKey)
	if err != nil {
		e.logger.Warn("fetch file pages", "file", fileKey, "error", err)
		return &PagesResult{
			Pages:  []models.Page{},
			Notice: "could not load pages",
			Err:    err,
		}
	}

	if err := e.pages.Put(ctx, fileKey, pages); err != nil {
		e.logger.Error("store file pages", "file", fileKey, "error", err)
	}
	return &PagesResult{Pages: pages}
}
