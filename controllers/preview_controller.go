package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/statshare/statshare/models"
	"github.com/statshare/statshare/storage"
	"github.com/statshare/statshare/upload"
	"github.com/statshare/statshare/utils"
)

const projectSessionTTL = 24 * time.Hour

// PreviewController serves the student-facing flow: verify the project
// password, then view or download the report under the issued session.
// Every route resolves the project through the active-only store lookup, so
// soft-deleted projects stay invisible even when a session row or stored
// object survived the best-effort stages of the delete saga.
type PreviewController struct {
	db    *gorm.DB
	store upload.ProjectStore
	files storage.FileStorage
}

// NewPreviewController creates a new PreviewController instance.
func NewPreviewController(db *gorm.DB, store upload.ProjectStore, files storage.FileStorage) *PreviewController {
	return &PreviewController{db: db, store: store, files: files}
}

// findActive loads the non-deleted project or answers the request with the
// matching error itself, returning nil in that case.
func (p *PreviewController) findActive(ctx *gin.Context) *models.Project {
	project, err := p.store.FindActive(ctx.Request.Context(), ctx.Param("id"))
	if errors.Is(err, upload.ErrProjectNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40420, "project not found")
		return nil
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load project")
		return nil
	}
	return project
}

// Verify checks the project password. On success it issues a session token,
// records the session row, and bumps the view counter.
func (p *PreviewController) Verify(ctx *gin.Context) {
	projectID := ctx.Param("id")

	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "password is required")
		return
	}

	if !utils.PasswordAttemptAllowed(projectID) {
		utils.Error(ctx, http.StatusTooManyRequests, 42920, "too many attempts, try again later")
		return
	}

	project := p.findActive(ctx)
	if project == nil {
		return
	}

	if !utils.CheckPassword(project.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "invalid password")
		return
	}

	token, err := utils.GenerateProjectToken(projectID, projectSessionTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to create session")
		return
	}
	session := models.ProjectSession{
		ProjectID: projectID,
		Token:     token,
		ExpiresAt: time.Now().Add(projectSessionTTL),
	}
	if err := p.db.WithContext(ctx.Request.Context()).Create(&session).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to create session")
		return
	}

	now := time.Now()
	err = p.db.WithContext(ctx.Request.Context()).Model(&models.Project{}).
		Where("project_id = ?", projectID).
		Updates(map[string]interface{}{
			"view_count":    gorm.Expr("view_count + 1"),
			"last_accessed": now,
		}).Error
	if err != nil {
		// The student is already in; a lost counter tick is not worth a 500.
		utils.Sugar.Warnf("view counter update for %s failed: %v", projectID, err)
	}

	utils.PasswordAttemptReset(projectID)
	utils.Success(ctx, gin.H{"token": token, "expires_at": session.ExpiresAt})
}

// GetProject returns viewer-facing metadata for an authenticated session.
func (p *PreviewController) GetProject(ctx *gin.Context) {
	project := p.findActive(ctx)
	if project == nil {
		return
	}

	utils.Success(ctx, gin.H{
		"project_id":     project.ProjectID,
		"project_name":   project.ProjectName,
		"student_name":   project.StudentName,
		"research_topic": project.ResearchTopic,
		"created_at":     project.CreatedAt,
	})
}

// GetHTML streams the report HTML from storage.
func (p *PreviewController) GetHTML(ctx *gin.Context) {
	if p.findActive(ctx) == nil {
		return
	}

	projectID := ctx.Param("id")
	data, err := p.files.Download(ctx.Request.Context(), projectID, upload.HTMLFilename)
	if errors.Is(err, storage.ErrNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40421, "report not found")
		return
	}
	if err != nil {
		utils.Sugar.Errorf("download html for %s failed: %v", projectID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load report")
		return
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// Download streams the findings DOCX as an attachment.
func (p *PreviewController) Download(ctx *gin.Context) {
	if p.findActive(ctx) == nil {
		return
	}

	projectID := ctx.Param("id")
	data, err := p.files.Download(ctx.Request.Context(), projectID, upload.DocxFilename)
	if errors.Is(err, storage.ErrNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40421, "document not found")
		return
	}
	if err != nil {
		utils.Sugar.Errorf("download docx for %s failed: %v", projectID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load document")
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+upload.DocxFilename+`"`)
	ctx.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", data)
}
