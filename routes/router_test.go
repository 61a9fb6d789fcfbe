package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/statshare/statshare/storage"
	"github.com/statshare/statshare/upload"
	"github.com/statshare/statshare/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("GIN_MODE", "test")
	os.Setenv("JWT_SECRET", "router-test-secret")
	os.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

	logDir, err := os.MkdirTemp("", "router-test-logs")
	if err != nil {
		panic(err)
	}
	os.Setenv("GIN_LOG_PATH", filepath.Join(logDir, "gin.log"))

	utils.Sugar = zap.NewNop().Sugar()

	code := m.Run()
	os.RemoveAll(logDir)
	os.Exit(code)
}

func newTestRouter(t *testing.T) (*storage.LocalStorage, http.Handler) {
	t.Helper()
	local := storage.NewLocalStorage(t.TempDir())
	coord := upload.NewCoordinator(upload.NewGormProjectStore(nil), local, "http://localhost")
	return local, SetupRouter(nil, local, coord)
}

func TestUploadsAreNotServedDirectly(t *testing.T) {
	local, r := newTestRouter(t)
	_, err := local.Upload(context.Background(), "secretproj12", "report.html",
		[]byte("<html>confidential report</html>"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/uploads/secretproj12/report.html", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "confidential report")
}

func TestViewerRoutesRequireSession(t *testing.T) {
	local, r := newTestRouter(t)
	_, err := local.Upload(context.Background(), "secretproj12", "report.html",
		[]byte("<html>confidential report</html>"))
	require.NoError(t, err)

	for _, path := range []string{
		"/api/v1/preview/secretproj12",
		"/api/v1/preview/secretproj12/html",
		"/api/v1/preview/secretproj12/download",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.NotContains(t, w.Body.String(), "confidential report", path)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
