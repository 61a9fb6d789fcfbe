package main

import (
	"time"

	"github.com/statshare/statshare/config"
	"github.com/statshare/statshare/models"
	"github.com/statshare/statshare/routes"
	"github.com/statshare/statshare/storage"
	"github.com/statshare/statshare/upload"
	"github.com/statshare/statshare/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.Project{}, &models.ProjectSession{})

	files, err := storage.New(cfg)
	if err != nil {
		utils.Sugar.Fatalf("storage init failed: %v", err)
	}
	coord := upload.NewCoordinator(upload.NewGormProjectStore(db), files, cfg.BaseURL)

	r := routes.SetupRouter(db, files, coord)

	// Background report of storage entries without a live project record
	utils.StartOrphanScanner(time.Duration(cfg.OrphanScanMinutes) * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful, storage=%s)", cfg.AppPort, cfg.StorageType)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
