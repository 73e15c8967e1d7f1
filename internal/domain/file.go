package domain

import (
	"path"
	"strings"
	"time"
)

// FileType classifies a repository file by extension.
type FileType string

// File type constants.
const (
	FileTypeHTML       FileType = "html"
	FileTypeCSS        FileType = "css"
	FileTypeJavaScript FileType = "javascript"
	FileTypeOther      FileType = "other"
)

// ClassifyFile maps a file path to its FileType by extension.
func ClassifyFile(filePath string) FileType {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".html", ".htm":
		return FileTypeHTML
	case ".css":
		return FileTypeCSS
	case ".js", ".jsx", ".ts", ".tsx":
		return FileTypeJavaScript
	default:
		return FileTypeOther
	}
}

// RemoteRepository is a repository as listed by the hosting service.
type RemoteRepository struct {
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Language      string    `json:"language"`
	DefaultBranch string    `json:"default_branch"`
	UpdatedAt     time.Time `json:"updated_at"`
	Fork          bool      `json:"fork"`
}

// RepoFile is a single file fetched from a repository. Content is populated
// for HTML files only; other types carry metadata for classification counts.
type RepoFile struct {
	Name    string   `json:"name"`
	Path    string   `json:"path"`
	Content string   `json:"-"`
	Size    int64    `json:"size"`
	Type    FileType `json:"type"`
}
