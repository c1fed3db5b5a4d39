package core

import "github.com/kilupskalvis/figfiles/internal/models"

// Merge builds the hierarchy for the enumerated teams, in enumeration order.
// Each project takes its freshly fetched files if present, otherwise its
// files from prev (matched by project id, or by team and project name for entries
// stored without an id),
// otherwise an empty list. Teams and projects absent from the enumeration
// are dropped.
func Merge(teams []models.TeamProjects, prev models.Hierarchy, fetched map[string][]models.FileRecord) models.Hierarchy {
	byID := make(map[string][]models.FileRecord)
	byName := make(map[[2]string][]models.FileRecord)
	for _, team := range prev {
		for _, p := range team.Projects {
			if p.ID != "" {
				byID[p.ID] = p.Files
				continue
			}
			byName[[2]string{team.Name, p.Name}] = p.Files
		}
	}

	out := make(models.Hierarchy, 0, len(teams))
	for _, team := range teams {
		ts := models.TeamSnapshot{
			ID:       team.ID,
			Name:     team.Name,
			Projects: make([]models.ProjectSnapshot, 0, len(team.Projects)),
		}
		for _, p := range team.Projects {
			files, ok := fetched[p.ID]
			if !ok {
				files, ok = byID[p.ID]
			}
			if !ok {
				files, ok = byName[[2]string{team.Name, p.Name}]
			}
			if files == nil {
				files = []models.FileRecord{}
			}
			ts.Projects = append(ts.Projects, models.ProjectSnapshot{ID: p.ID, Name: p.Name, Files: files})
		}
		out = append(out, ts)
	}
	return out
}
