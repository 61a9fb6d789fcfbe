package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/statshare/statshare/models"
	"github.com/statshare/statshare/storage"
	"github.com/statshare/statshare/upload"
	"github.com/statshare/statshare/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.Sugar = zap.NewNop().Sugar()
	os.Exit(m.Run())
}

// stubProjectStore holds only active projects; anything absent reads as
// missing or soft-deleted.
type stubProjectStore struct {
	projects map[string]*models.Project
}

func (s *stubProjectStore) Create(ctx context.Context, project *models.Project) error {
	s.projects[project.ProjectID] = project
	return nil
}

func (s *stubProjectStore) FindActive(ctx context.Context, projectID string) (*models.Project, error) {
	project, ok := s.projects[projectID]
	if !ok {
		return nil, upload.ErrProjectNotFound
	}
	return project, nil
}

func (s *stubProjectStore) Update(ctx context.Context, projectID string, fields map[string]interface{}) error {
	return nil
}

func (s *stubProjectStore) SoftDelete(ctx context.Context, projectID string) (bool, error) {
	if _, ok := s.projects[projectID]; !ok {
		return false, nil
	}
	delete(s.projects, projectID)
	return true, nil
}

func (s *stubProjectStore) DeleteSessions(ctx context.Context, projectID string) error {
	return nil
}

type stubFiles struct {
	objects map[string][]byte
}

func (f *stubFiles) Upload(ctx context.Context, projectID, filename string, data []byte) (string, error) {
	f.objects[projectID+"/"+filename] = data
	return projectID + "/" + filename, nil
}

func (f *stubFiles) Download(ctx context.Context, projectID, filename string) ([]byte, error) {
	data, ok := f.objects[projectID+"/"+filename]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (f *stubFiles) Delete(ctx context.Context, projectID, filename string) error {
	delete(f.objects, projectID+"/"+filename)
	return nil
}

func (f *stubFiles) DeleteProject(ctx context.Context, projectID string) error {
	return nil
}

func (f *stubFiles) GetURL(ctx context.Context, projectID, filename string) (string, error) {
	return projectID + "/" + filename, nil
}

func newPreviewRouter(store upload.ProjectStore, files storage.FileStorage) *gin.Engine {
	controller := NewPreviewController(nil, store, files)
	r := gin.New()
	r.GET("/api/v1/preview/:id", controller.GetProject)
	r.GET("/api/v1/preview/:id/html", controller.GetHTML)
	r.GET("/api/v1/preview/:id/download", controller.Download)
	return r
}

func serve(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGetHTML_ActiveProjectServed(t *testing.T) {
	store := &stubProjectStore{projects: map[string]*models.Project{
		"proj12345678": {ProjectID: "proj12345678", ProjectName: "Survey"},
	}}
	files := &stubFiles{objects: map[string][]byte{
		"proj12345678/" + upload.HTMLFilename: []byte("<html>report</html>"),
	}}

	w := serve(newPreviewRouter(store, files), "/api/v1/preview/proj12345678/html")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "report")
}

func TestGetHTML_DeletedProjectStaysHidden(t *testing.T) {
	// Soft-deleted project whose best-effort storage purge failed: the object
	// survives, the row does not. The route must answer 404, never the file.
	store := &stubProjectStore{projects: map[string]*models.Project{}}
	files := &stubFiles{objects: map[string][]byte{
		"proj12345678/" + upload.HTMLFilename: []byte("<html>confidential</html>"),
	}}

	w := serve(newPreviewRouter(store, files), "/api/v1/preview/proj12345678/html")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "confidential")
}

func TestDownload_DeletedProjectStaysHidden(t *testing.T) {
	store := &stubProjectStore{projects: map[string]*models.Project{}}
	files := &stubFiles{objects: map[string][]byte{
		"proj12345678/" + upload.DocxFilename: []byte("docx bytes"),
	}}

	w := serve(newPreviewRouter(store, files), "/api/v1/preview/proj12345678/download")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "docx bytes")
}

func TestDownload_ActiveProjectAttachment(t *testing.T) {
	store := &stubProjectStore{projects: map[string]*models.Project{
		"proj12345678": {ProjectID: "proj12345678"},
	}}
	files := &stubFiles{objects: map[string][]byte{
		"proj12345678/" + upload.DocxFilename: []byte("docx bytes"),
	}}

	w := serve(newPreviewRouter(store, files), "/api/v1/preview/proj12345678/download")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), upload.DocxFilename)
	assert.Equal(t, "docx bytes", w.Body.String())
}

func TestGetProject_DeletedProjectStaysHidden(t *testing.T) {
	store := &stubProjectStore{projects: map[string]*models.Project{}}

	w := serve(newPreviewRouter(store, &stubFiles{objects: map[string][]byte{}}),
		"/api/v1/preview/proj12345678")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
