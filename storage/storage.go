// Package storage provides the object storage abstraction for project files.
// All backends implement the same contract so the active one is chosen by
// configuration alone and injected where needed.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/statshare/statshare/config"
)

// ErrNotFound is returned by Download when the object does not exist.
var ErrNotFound = errors.New("object not found")

// FileStorage stores project files under (projectID, filename).
//
// Upload overwrites any existing object (idempotent upsert) and returns an
// opaque locator usable for later retrieval or URL construction. Delete is a
// no-op when the object is absent. DeleteProject removes every object scoped
// to the project and tolerates there being none.
type FileStorage interface {
	Upload(ctx context.Context, projectID, filename string, data []byte) (string, error)
	Download(ctx context.Context, projectID, filename string) ([]byte, error)
	Delete(ctx context.Context, projectID, filename string) error
	DeleteProject(ctx context.Context, projectID string) error
	GetURL(ctx context.Context, projectID, filename string) (string, error)
}

// New selects the backend named by cfg.StorageType. Called once at startup;
// the result is passed to consumers explicitly, never kept as a mutable global.
func New(cfg config.AppConfig) (FileStorage, error) {
	switch strings.ToLower(cfg.StorageType) {
	case "", "local":
		return NewLocalStorage(cfg.UploadDir), nil
	case "s3":
		return NewS3Storage(cfg)
	case "supabase":
		return NewSupabaseStorage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
}

// contentTypeFor maps the two well-known report filenames to their MIME types.
func contentTypeFor(filename string) string {
	if strings.HasSuffix(filename, ".docx") {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	if strings.HasSuffix(filename, ".html") {
		return "text/html"
	}
	return "application/octet-stream"
}

// validComponent rejects path components that could escape the project scope.
func validComponent(s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, "/\\") {
		return fmt.Errorf("invalid path component %q", s)
	}
	return nil
}
