package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStorage keeps project files on the local filesystem under
// uploadDir/<projectID>/<filename>. Locators are stable /uploads-prefixed
// paths stored as opaque strings; serving always goes through the
// authenticated preview routes.
type LocalStorage struct {
	uploadDir string
}

// NewLocalStorage creates a filesystem backend rooted at uploadDir.
func NewLocalStorage(uploadDir string) *LocalStorage {
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return &LocalStorage{uploadDir: uploadDir}
}

func (l *LocalStorage) Upload(ctx context.Context, projectID, filename string, data []byte) (string, error) {
	if err := validComponent(projectID); err != nil {
		return "", err
	}
	if err := validComponent(filename); err != nil {
		return "", err
	}

	projectDir := filepath.Join(l.uploadDir, projectID)
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return "", fmt.Errorf("create project dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(projectDir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return fmt.Sprintf("/uploads/%s/%s", projectID, filename), nil
}

func (l *LocalStorage) Download(ctx context.Context, projectID, filename string) ([]byte, error) {
	if err := validComponent(projectID); err != nil {
		return nil, err
	}
	if err := validComponent(filename); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(l.uploadDir, projectID, filename))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func (l *LocalStorage) Delete(ctx context.Context, projectID, filename string) error {
	if err := validComponent(projectID); err != nil {
		return err
	}
	if err := validComponent(filename); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(l.uploadDir, projectID, filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (l *LocalStorage) DeleteProject(ctx context.Context, projectID string) error {
	if err := validComponent(projectID); err != nil {
		return err
	}
	// RemoveAll already treats a missing directory as success.
	if err := os.RemoveAll(filepath.Join(l.uploadDir, projectID)); err != nil {
		return fmt.Errorf("remove project dir: %w", err)
	}
	return nil
}

func (l *LocalStorage) GetURL(ctx context.Context, projectID, filename string) (string, error) {
	if err := validComponent(projectID); err != nil {
		return "", err
	}
	if err := validComponent(filename); err != nil {
		return "", err
	}
	return fmt.Sprintf("/uploads/%s/%s", projectID, filename), nil
}
