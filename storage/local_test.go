package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadDownloadRoundTrip(t *testing.T) {
	local := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	locator, err := local.Upload(ctx, "abc123", "report.html", []byte("<html></html>"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc123/report.html", locator)

	data, err := local.Download(ctx, "abc123", "report.html")
	require.NoError(t, err)
	assert.Equal(t, []byte("<html></html>"), data)
}

func TestLocalStorage_UploadOverwrites(t *testing.T) {
	local := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	_, err := local.Upload(ctx, "abc123", "report.html", []byte("v1"))
	require.NoError(t, err)
	_, err = local.Upload(ctx, "abc123", "report.html", []byte("v2"))
	require.NoError(t, err)

	data, err := local.Download(ctx, "abc123", "report.html")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestLocalStorage_DownloadMissing(t *testing.T) {
	local := NewLocalStorage(t.TempDir())

	_, err := local.Download(context.Background(), "abc123", "missing.docx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_DeleteIsIdempotent(t *testing.T) {
	local := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	_, err := local.Upload(ctx, "abc123", "findings.docx", []byte("docx"))
	require.NoError(t, err)

	require.NoError(t, local.Delete(ctx, "abc123", "findings.docx"))
	require.NoError(t, local.Delete(ctx, "abc123", "findings.docx"))
	require.NoError(t, local.Delete(ctx, "neverexisted", "findings.docx"))
}

func TestLocalStorage_DeleteProject(t *testing.T) {
	dir := t.TempDir()
	local := NewLocalStorage(dir)
	ctx := context.Background()

	_, err := local.Upload(ctx, "abc123", "findings.docx", []byte("docx"))
	require.NoError(t, err)
	_, err = local.Upload(ctx, "abc123", "report.html", []byte("html"))
	require.NoError(t, err)

	require.NoError(t, local.DeleteProject(ctx, "abc123"))

	_, err = os.Stat(filepath.Join(dir, "abc123"))
	assert.True(t, os.IsNotExist(err), "project directory must be gone")

	// Second call and unknown project both succeed.
	require.NoError(t, local.DeleteProject(ctx, "abc123"))
	require.NoError(t, local.DeleteProject(ctx, "unknown"))
}

func TestLocalStorage_RejectsPathEscapes(t *testing.T) {
	local := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	_, err := local.Upload(ctx, "../evil", "report.html", []byte("x"))
	assert.Error(t, err)

	_, err = local.Download(ctx, "abc123", "../../etc/passwd")
	assert.Error(t, err)

	assert.Error(t, local.DeleteProject(ctx, ".."))
}

func TestLocalStorage_GetURL(t *testing.T) {
	local := NewLocalStorage(t.TempDir())

	url, err := local.GetURL(context.Background(), "abc123", "report.html")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc123/report.html", url)
}
