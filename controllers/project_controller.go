package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/statshare/statshare/models"
	"github.com/statshare/statshare/upload"
	"github.com/statshare/statshare/utils"
)

const projectListCacheKey = "cache:projects:list"

// ProjectController manages the admin-facing project lifecycle.
type ProjectController struct {
	db    *gorm.DB
	coord *upload.Coordinator
}

// NewProjectController creates a new ProjectController instance.
func NewProjectController(db *gorm.DB, coord *upload.Coordinator) *ProjectController {
	return &ProjectController{db: db, coord: coord}
}

// CreateProject accepts multipart metadata plus the DOCX and HTML report files
// and runs the atomic creation flow. The plaintext password in the response is
// shown exactly once.
func (p *ProjectController) CreateProject(ctx *gin.Context) {
	in := upload.CreateProjectInput{
		ProjectName:   utils.Sanitize(strings.TrimSpace(ctx.PostForm("project_name"))),
		StudentName:   utils.Sanitize(strings.TrimSpace(ctx.PostForm("student_name"))),
		StudentEmail:  strings.TrimSpace(ctx.PostForm("student_email")),
		ResearchTopic: utils.Sanitize(strings.TrimSpace(ctx.PostForm("research_topic"))),
		Password:      ctx.PostForm("password"),
	}
	if msg := validateMetadata(in); msg != "" {
		utils.Error(ctx, http.StatusBadRequest, 40010, msg)
		return
	}
	if in.Password != "" && len(in.Password) < 6 {
		utils.Error(ctx, http.StatusBadRequest, 40011, "password must be at least 6 characters")
		return
	}

	docx, err := readFormFile(ctx, "docx_file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, err.Error())
		return
	}
	html, err := readFormFile(ctx, "html_file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, err.Error())
		return
	}

	result, err := p.coord.CreateProjectAtomic(ctx.Request.Context(), in, upload.ProjectFiles{Docx: docx, HTML: html})
	if err != nil {
		var vErr *upload.ValidationError
		if errors.As(err, &vErr) {
			utils.Error(ctx, http.StatusBadRequest, 40013, vErr.Message)
			return
		}
		// The specific cause (bucket misconfiguration, credentials, DB outage)
		// is not actionable by the caller; log it and answer generically.
		utils.Sugar.Errorf("create project failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50010, "could not create project")
		return
	}

	utils.InvalidateByPrefix(projectListCacheKey)
	utils.Success(ctx, result)
}

// ListProjects returns all non-deleted projects, newest first.
func (p *ProjectController) ListProjects(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(projectListCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var projects []models.Project
	err := p.db.WithContext(ctx.Request.Context()).
		Select("project_id", "project_name", "student_name", "student_email",
			"created_at", "view_count", "last_accessed").
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to list projects")
		return
	}

	body := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"projects": projects}}
	ctx.JSON(http.StatusOK, body)
	utils.CacheSetJSON(projectListCacheKey, body, 0)
}

// GetProject returns full details for one non-deleted project.
func (p *ProjectController) GetProject(ctx *gin.Context) {
	var project models.Project
	err := p.db.WithContext(ctx.Request.Context()).
		Where("project_id = ?", ctx.Param("id")).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40410, "project not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load project")
		return
	}
	utils.Success(ctx, gin.H{"project": project})
}

// UpdateProject replaces files and/or metadata on an existing project via
// multipart form. Absent fields stay untouched; an entirely empty patch is a
// validation error.
func (p *ProjectController) UpdateProject(ctx *gin.Context) {
	in := upload.UpdateProjectInput{}

	formStr := func(field string) *string {
		if v, ok := ctx.GetPostForm(field); ok {
			v = utils.Sanitize(strings.TrimSpace(v))
			return &v
		}
		return nil
	}
	in.ProjectName = formStr("project_name")
	in.StudentName = formStr("student_name")
	in.ResearchTopic = formStr("research_topic")
	if v, ok := ctx.GetPostForm("student_email"); ok {
		v = strings.TrimSpace(v)
		if _, err := mail.ParseAddress(v); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40014, "invalid student email")
			return
		}
		in.StudentEmail = &v
	}

	var err error
	if in.Docx, err = readOptionalFormFile(ctx, "docx_file"); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, err.Error())
		return
	}
	if in.HTML, err = readOptionalFormFile(ctx, "html_file"); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, err.Error())
		return
	}

	project, warnings, err := p.coord.UpdateProjectFiles(ctx.Request.Context(), ctx.Param("id"), in)
	if err != nil {
		var vErr *upload.ValidationError
		switch {
		case errors.As(err, &vErr):
			utils.Error(ctx, http.StatusBadRequest, 40015, vErr.Message)
		case errors.Is(err, upload.ErrProjectNotFound):
			utils.Error(ctx, http.StatusNotFound, 40410, "project not found")
		default:
			utils.Sugar.Errorf("update project %s failed: %v", ctx.Param("id"), err)
			utils.Error(ctx, http.StatusInternalServerError, 50013, "could not update project")
		}
		return
	}

	utils.InvalidateByPrefix(projectListCacheKey)
	utils.Success(ctx, gin.H{"project": project, "warnings": warnings})
}

// DeleteProject soft-deletes the project and best-effort purges its stored
// files and sessions.
func (p *ProjectController) DeleteProject(ctx *gin.Context) {
	outcome, err := p.coord.DeleteProjectWithFiles(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		utils.Sugar.Errorf("delete project %s failed: %v", ctx.Param("id"), err)
		utils.Error(ctx, http.StatusInternalServerError, 50014, "could not delete project")
		return
	}
	if outcome.Record == upload.StepSkipped {
		utils.Error(ctx, http.StatusNotFound, 40411, "project not found or already deleted")
		return
	}

	utils.InvalidateByPrefix(projectListCacheKey)
	utils.Success(ctx, gin.H{"message": "project deleted", "cleanup": outcome})
}

// RegeneratePassword replaces the project password and returns the new
// plaintext exactly once.
func (p *ProjectController) RegeneratePassword(ctx *gin.Context) {
	password, err := p.coord.RegeneratePassword(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, upload.ErrProjectNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "project not found")
			return
		}
		utils.Sugar.Errorf("regenerate password for %s failed: %v", ctx.Param("id"), err)
		utils.Error(ctx, http.StatusInternalServerError, 50015, "could not regenerate password")
		return
	}
	utils.Success(ctx, gin.H{"password": password})
}

// Stats returns aggregate dashboard numbers.
func (p *ProjectController) Stats(ctx *gin.Context) {
	var totalProjects int64
	var totalViews int64

	db := p.db.WithContext(ctx.Request.Context())
	if err := db.Model(&models.Project{}).Count(&totalProjects).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50016, "failed to load stats")
		return
	}
	row := db.Model(&models.Project{}).Select("COALESCE(SUM(view_count), 0)").Row()
	if err := row.Scan(&totalViews); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50016, "failed to load stats")
		return
	}

	utils.Success(ctx, gin.H{
		"total_projects": totalProjects,
		"total_views":    totalViews,
	})
}

func validateMetadata(in upload.CreateProjectInput) string {
	if in.ProjectName == "" {
		return "project name is required"
	}
	if len(in.ProjectName) > 500 {
		return "project name too long"
	}
	if in.StudentName == "" {
		return "student name is required"
	}
	if len(in.StudentName) > 255 {
		return "student name too long"
	}
	if _, err := mail.ParseAddress(in.StudentEmail); err != nil {
		return "invalid student email"
	}
	if in.ResearchTopic == "" {
		return "research topic is required"
	}
	return ""
}

// readFormFile loads a required multipart file into memory, capped just above
// the validation limit so the coordinator still sees the oversize and answers
// with its specific message.
func readFormFile(ctx *gin.Context, field string) ([]byte, error) {
	file, _, err := ctx.Request.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%s is required", field)
	}
	defer file.Close()
	return readCapped(file, field)
}

// readOptionalFormFile returns nil bytes when the field is absent.
func readOptionalFormFile(ctx *gin.Context, field string) ([]byte, error) {
	file, _, err := ctx.Request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid %s upload", field)
	}
	defer file.Close()
	return readCapped(file, field)
}

func readCapped(file multipart.File, field string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, upload.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s", field)
	}
	return data, nil
}
