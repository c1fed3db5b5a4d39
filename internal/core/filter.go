package core

import (
	"strings"

	"github.com/kilupskalvis/figfiles/internal/models"
)

// Filter value grammar: "All", "team=<team>", "<team>&$%<project>".
const (
	FilterAll            = "All"
	teamFilterPrefix     = "team"
	keyValueSeparator    = "="
	teamProjectSeparator = "&$%"
)

// FilterKind is the scope a Filter selects.
type FilterKind string

const (
	FilterKindAll     FilterKind = "all"
	FilterKindTeam    FilterKind = "team"
	FilterKindProject FilterKind = "project"
)

// Filter narrows a hierarchy to a team or a single project.
type Filter struct {
	Kind    FilterKind
	Team    string
	Project string
}

// TeamFilterValue encodes a team filter.
func TeamFilterValue(team string) string {
	return teamFilterPrefix + keyValueSeparator + team
}

// ProjectFilterValue encodes a project filter.
func ProjectFilterValue(team, project string) string {
	return team + teamProjectSeparator + project
}

// ParseFilter decodes a filter value. Unknown formats select everything.
func ParseFilter(value string) Filter {
	if value == FilterAll {
		return Filter{Kind: FilterKindAll}
	}

	if strings.Contains(value, keyValueSeparator) {
		parts := strings.SplitN(value, keyValueSeparator, 2)
		if parts[0] == teamFilterPrefix {
			return Filter{Kind: FilterKindTeam, Team: parts[1]}
		}
	}

	if strings.Contains(value, teamProjectSeparator) {
		parts := strings.SplitN(value, teamProjectSeparator, 2)
		return Filter{Kind: FilterKindProject, Team: parts[0], Project: parts[1]}
	}

	return Filter{Kind: FilterKindAll}
}

// Apply returns the part of h the filter selects.
func (f Filter) Apply(h models.Hierarchy) models.Hierarchy {
	switch f.Kind {
	case FilterKindTeam:
		return h.FilterTeam(f.Team)
	case FilterKindProject:
		return h.FilterProject(f.Team, f.Project)
	default:
		return h
	}
}
