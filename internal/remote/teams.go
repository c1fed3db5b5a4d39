package remote

import (
	"context"
	"strings"

	"github.com/kilupskalvis/figfiles/internal/models"
	"golang.org/x/sync/errgroup"
)

// ParseTeamIDs splits a comma-separated list of team ids, trimming
// whitespace and dropping empty entries.
func ParseTeamIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ListTeamProjects fetches every team concurrently. The result preserves
// the order of teamIDs. Any single failure fails the whole enumeration.
func (c *Client) ListTeamProjects(ctx context.Context, teamIDs []string) ([]models.TeamProjects, error) {
	results := make([]models.TeamProjects, len(teamIDs))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range teamIDs {
		i, id := i, id
		g.Go(func() error {
			tp, err := c.TeamProjects(ctx, id)
			if err != nil {
				return err
			}
			results[i] = *tp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
