package models

// ProjectRef identifies a project as listed by a team.
type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TeamProjects is the enumeration result for one team.
type TeamProjects struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Projects []ProjectRef `json:"projects"`
}

// ProjectSnapshot holds the files of one project as of its last fetch.
type ProjectSnapshot struct {
	ID    string       `json:"id,omitempty"`
	Name  string       `json:"name"`
	Files []FileRecord `json:"files"`
}

// TeamSnapshot carries its name alongside its projects so that no
// reconstruction ever depends on positional alignment.
type TeamSnapshot struct {
	ID       string            `json:"id,omitempty"`
	Name     string            `json:"name"`
	Projects []ProjectSnapshot `json:"projects"`
}

// Hierarchy is the ordered team -> project -> file tree.
type Hierarchy []TeamSnapshot

// ProjectIDs returns every project id in the hierarchy, in order.
func (h Hierarchy) ProjectIDs() []string {
	var ids []string
	for _, team := range h {
		for _, p := range team.Projects {
			if p.ID != "" {
				ids = append(ids, p.ID)
			}
		}
	}
	return ids
}

// FileCount returns the total number of files across all projects.
func (h Hierarchy) FileCount() int {
	n := 0
	for _, team := range h {
		for _, p := range team.Projects {
			n += len(p.Files)
		}
	}
	return n
}

// FilterTeam returns only the teams with the given name.
func (h Hierarchy) FilterTeam(teamName string) Hierarchy {
	out := Hierarchy{}
	for _, team := range h {
		if team.Name == teamName {
			out = append(out, team)
		}
	}
	return out
}

// FilterProject narrows the hierarchy to a single project of a single team.
// An unknown team or project yields an empty hierarchy.
func (h Hierarchy) FilterProject(teamName, projectName string) Hierarchy {
	for _, team := range h {
		if team.Name != teamName {
			continue
		}
		for _, p := range team.Projects {
			if p.Name == projectName {
				return Hierarchy{{ID: team.ID, Name: team.Name, Projects: []ProjectSnapshot{p}}}
			}
		}
		return Hierarchy{}
	}
	return Hierarchy{}
}

// FindFile returns the first file with the given key.
func (h Hierarchy) FindFile(key string) (FileRecord, bool) {
	for _, team := range h {
		for _, p := range team.Projects {
			for _, f := range p.Files {
				if f.Key == key {
					return f, true
				}
			}
		}
	}
	return FileRecord{}, false
}
