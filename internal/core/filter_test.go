package core

import (
	"testing"

	"github.com/kilupskalvis/figfiles/internal/models"
	"github.com/stretchr/testify/assert"
)

func filterHierarchy() models.Hierarchy {
	return models.Hierarchy{
		{Name: "Design", Projects: []models.ProjectSnapshot{
			{ID: "A", Name: "Web", Files: []models.FileRecord{f("f1")}},
			{ID: "B", Name: "App", Files: []models.FileRecord{f("f2")}},
		}},
		{Name: "Brand", Projects: []models.ProjectSnapshot{{ID: "C", Name: "Logo"}}},
	}
}

func TestParseFilter(t *testing.T) {
	assert.Equal(t, Filter{Kind: FilterKindAll}, ParseFilter("All"))
	assert.Equal(t, Filter{Kind: FilterKindTeam, Team: "Design"}, ParseFilter(TeamFilterValue("Design")))
	assert.Equal(t, Filter{Kind: FilterKindProject, Team: "Design", Project: "Web"}, ParseFilter(ProjectFilterValue("Design", "Web")))
	assert.Equal(t, Filter{Kind: FilterKindAll}, ParseFilter("garbage"))
	assert.Equal(t, Filter{Kind: FilterKindAll}, ParseFilter("other=x"))
}

func TestFilter_Apply(t *testing.T) {
	h := filterHierarchy()

	assert.Equal(t, h, ParseFilter(FilterAll).Apply(h))

	team := ParseFilter(TeamFilterValue("Brand")).Apply(h)
	assert.Len(t, team, 1)
	assert.Equal(t, "Brand", team[0].Name)

	project := ParseFilter(ProjectFilterValue("Design", "App")).Apply(h)
	assert.Len(t, project, 1)
	assert.Len(t, project[0].Projects, 1)
	assert.Equal(t, "B", project[0].Projects[0].ID)

	assert.Empty(t, ParseFilter(ProjectFilterValue("Design", "Nope")).Apply(h))
	assert.Empty(t, ParseFilter(ProjectFilterValue("Nope", "Web")).Apply(h))
	assert.Empty(t, ParseFilter(TeamFilterValue("Nope")).Apply(h))
}
