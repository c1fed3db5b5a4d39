package models

// FileRecord mirrors a file entry returned by the provider. Only Key and Name
// carry meaning for the cache; the rest is passed through untouched.
type FileRecord struct {
	Key          string   `json:"key"`
	Name         string   `json:"name"`
	LastModified string   `json:"last_modified,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Branches     []Branch `json:"branches,omitempty"`
}

// Branch is a branch of a file, present when branch data is requested.
type Branch struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	LastModified string `json:"last_modified,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Page is a top-level node of a file document.
type Page struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}
