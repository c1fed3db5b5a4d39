// Package remote is the client for the design-tool provider's REST API.
// It authenticates each request, classifies responses, and retries on rate
// limiting.
package remote

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kilupskalvis/figfiles/internal/models"
)

// DefaultBaseURL is the provider's versioned REST root.
const DefaultBaseURL = "https://api.figma.com/v1"

// personalTokenHeader carries a personal access token.
const personalTokenHeader = "X-Figma-Token"

// flexibleID decodes an identifier sent either as a JSON string or number.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*f = flexibleID(n.String())
	return nil
}

// TeamProjectsResponse is the body of GET /teams/{id}/projects.
type TeamProjectsResponse struct {
	Name     string            `json:"name"`
	Projects []projectResponse `json:"projects"`
}

type projectResponse struct {
	ID   flexibleID `json:"id"`
	Name string     `json:"name"`
}

// toModel converts the response into a TeamProjects for teamID.
func (r *TeamProjectsResponse) toModel(teamID string) models.TeamProjects {
	tp := models.TeamProjects{
		ID:       teamID,
		Name:     r.Name,
		Projects: make([]models.ProjectRef, 0, len(r.Projects)),
	}
	for _, p := range r.Projects {
		tp.Projects = append(tp.Projects, models.ProjectRef{ID: string(p.ID), Name: p.Name})
	}
	return tp
}

// ProjectFilesResponse is the body of GET /projects/{id}/files.
type ProjectFilesResponse struct {
	Name  string              `json:"name"`
	Files []models.FileRecord `json:"files"`
}

// FileResponse is the body of GET /files/{key}?depth=1.
type FileResponse struct {
	Name     string `json:"name"`
	Document struct {
		Children []models.Page `json:"children"`
	} `json:"document"`
}
