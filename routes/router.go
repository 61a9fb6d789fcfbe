package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/statshare/statshare/config"
	"github.com/statshare/statshare/controllers"
	"github.com/statshare/statshare/middleware"
	"github.com/statshare/statshare/storage"
	"github.com/statshare/statshare/upload"
	"github.com/statshare/statshare/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, files storage.FileStorage, coord *upload.Coordinator) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	adminController := controllers.NewAdminController()
	projectController := controllers.NewProjectController(db, coord)
	previewController := controllers.NewPreviewController(db, upload.NewGormProjectStore(db), files)

	api := r.Group("/api/v1")

	adminAuth := api.Group("/admin")
	adminAuth.Use(middleware.RateLimitMiddleware())
	adminAuth.POST("/login", adminController.Login)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired())
	admin.POST("/logout", adminController.Logout)
	admin.GET("/me", adminController.Me)
	admin.GET("/stats", projectController.Stats)
	admin.GET("/projects", projectController.ListProjects)
	admin.POST("/projects", projectController.CreateProject)
	admin.GET("/projects/:id", projectController.GetProject)
	admin.PUT("/projects/:id", projectController.UpdateProject)
	admin.DELETE("/projects/:id", projectController.DeleteProject)
	admin.POST("/projects/:id/password", projectController.RegeneratePassword)

	preview := api.Group("/preview")
	preview.POST("/:id/verify", middleware.RateLimitMiddleware(), previewController.Verify)

	viewer := preview.Group("")
	viewer.Use(middleware.ProjectSessionRequired(db))
	viewer.GET("/:id", previewController.GetProject)
	viewer.GET("/:id/html", previewController.GetHTML)
	viewer.GET("/:id/download", previewController.Download)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
