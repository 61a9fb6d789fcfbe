package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	req "github.com/imroc/req/v3"

	"github.com/statshare/statshare/config"
)

// SupabaseStorage talks to the Supabase Storage REST API. Files live in one
// bucket under <projectID>/<filename>; that relative path is the locator.
// The bucket is expected to be public, so GetURL returns the public object URL.
type SupabaseStorage struct {
	client *req.Client
	bucket string
}

// NewSupabaseStorage builds the REST client from the service role key.
func NewSupabaseStorage(cfg config.AppConfig) (*SupabaseStorage, error) {
	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		return nil, errors.New("supabase storage requires SUPABASE_URL and SUPABASE_SERVICE_KEY")
	}

	client := req.C().
		SetBaseURL(cfg.SupabaseURL).
		SetCommonBearerAuthToken(cfg.SupabaseServiceKey).
		SetTimeout(60 * time.Second)

	return &SupabaseStorage{client: client, bucket: cfg.SupabaseBucket}, nil
}

func (s *SupabaseStorage) objectPath(projectID, filename string) string {
	return fmt.Sprintf("/storage/v1/object/%s/%s/%s", s.bucket, projectID, filename)
}

func (s *SupabaseStorage) Upload(ctx context.Context, projectID, filename string, data []byte) (string, error) {
	if err := validComponent(projectID); err != nil {
		return "", err
	}
	if err := validComponent(filename); err != nil {
		return "", err
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetContentType(contentTypeFor(filename)).
		SetHeader("x-upsert", "true"). // overwrite on replacement uploads
		SetBodyBytes(data).
		Post(s.objectPath(projectID, filename))
	if err != nil {
		return "", fmt.Errorf("supabase upload: %w", err)
	}
	if !resp.IsSuccessState() {
		return "", fmt.Errorf("supabase upload failed: %s: %s", resp.Status, resp.String())
	}
	return fmt.Sprintf("%s/%s", projectID, filename), nil
}

func (s *SupabaseStorage) Download(ctx context.Context, projectID, filename string) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.objectPath(projectID, filename))
	if err != nil {
		return nil, fmt.Errorf("supabase download: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if !resp.IsSuccessState() {
		return nil, fmt.Errorf("supabase download failed: %s", resp.Status)
	}
	return resp.Bytes(), nil
}

func (s *SupabaseStorage) Delete(ctx context.Context, projectID, filename string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		Delete(s.objectPath(projectID, filename))
	if err != nil {
		return fmt.Errorf("supabase delete: %w", err)
	}
	// Missing objects are fine; delete is idempotent.
	if !resp.IsSuccessState() && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("supabase delete failed: %s", resp.Status)
	}
	return nil
}

func (s *SupabaseStorage) DeleteProject(ctx context.Context, projectID string) error {
	var entries []struct {
		Name string `json:"name"`
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"prefix": projectID, "limit": 1000}).
		SetSuccessResult(&entries).
		Post(fmt.Sprintf("/storage/v1/object/list/%s", s.bucket))
	if err != nil {
		return fmt.Errorf("supabase list: %w", err)
	}
	if !resp.IsSuccessState() {
		return fmt.Errorf("supabase list failed: %s", resp.Status)
	}
	if len(entries) == 0 {
		return nil
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, fmt.Sprintf("%s/%s", projectID, e.Name))
	}
	resp, err = s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"prefixes": paths}).
		Delete(fmt.Sprintf("/storage/v1/object/%s", s.bucket))
	if err != nil {
		return fmt.Errorf("supabase bulk delete: %w", err)
	}
	if !resp.IsSuccessState() {
		return fmt.Errorf("supabase bulk delete failed: %s", resp.Status)
	}
	return nil
}

func (s *SupabaseStorage) GetURL(ctx context.Context, projectID, filename string) (string, error) {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s/%s",
		s.client.BaseURL, s.bucket, projectID, filename), nil
}
