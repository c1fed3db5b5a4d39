package cli

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/kilupskalvis/figfiles/internal/core"
	"github.com/kilupskalvis/figfiles/internal/models"
	"github.com/stretchr/testify/assert"
)

func testHierarchy() models.Hierarchy {
	return models.Hierarchy{
		{ID: "t1", Name: "Design", Projects: []models.ProjectSnapshot{
			{ID: "p1", Name: "Web", Files: []models.FileRecord{
				{Key: "a", Name: "Home", Branches: []models.Branch{{Key: "a1", Name: "wip"}}},
				{Key: "b", Name: "Nav"},
			}},
		}},
	}
}

func TestFilterValues(t *testing.T) {
	got := filterValues(testHierarchy())
	assert.Equal(t, []string{core.FilterAll, "team=Design", "Design&$%Web"}, got)

	for _, v := range got {
		assert.NotEmpty(t, core.ParseFilter(v).Apply(testHierarchy()))
	}
}

func TestPrintHierarchy(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	printHierarchy(&buf, testHierarchy(), map[string]bool{"b": true})

	out := buf.String()
	assert.Contains(t, out, "Design\n")
	assert.Contains(t, out, "  Web (2 files)\n")
	assert.Contains(t, out, "    a  Home [1 branches]\n")
	assert.Contains(t, out, "  * b  Nav\n")
}

func TestPrintFiles(t *testing.T) {
	var buf bytes.Buffer
	printFiles(&buf, []models.FileRecord{{Key: "a", Name: "Home", LastModified: "2024-01-01T00:00:00Z"}, {Key: "b", Name: "Nav"}})
	assert.Equal(t, "a  Home  (2024-01-01T00:00:00Z)\nb  Nav\n", buf.String())
}
