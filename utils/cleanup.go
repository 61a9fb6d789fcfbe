package utils

import (
	"os"
	"time"

	"github.com/statshare/statshare/config"
	"github.com/statshare/statshare/models"
)

// StartOrphanScanner launches a background goroutine that periodically compares
// local storage directories against the projects table and logs storage
// entries with no matching non-deleted record. Best-effort: failed rollbacks
// and crashed deletes leave orphans, and this log is what operators reconcile
// from. Remote backends are reconciled with bucket tooling instead.
func StartOrphanScanner(interval time.Duration) {
	cfg := config.Get()
	if cfg.StorageType != "local" && cfg.StorageType != "" {
		return
	}
	if interval <= 0 {
		interval = time.Hour
	}

	go func() {
		for {
			time.Sleep(interval)
			scanOnce(cfg.UploadDir)
		}
	}()
}

func scanOnce(uploadDir string) {
	db := config.DB()
	if db == nil {
		return
	}

	entries, err := os.ReadDir(uploadDir)
	if err != nil {
		if !os.IsNotExist(err) {
			Sugar.Warnf("orphan scan: read upload dir failed: %v", err)
		}
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		projectID := entry.Name()

		var count int64
		if err := db.Model(&models.Project{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil {
			Sugar.Warnf("orphan scan: query %s failed: %v", projectID, err)
			continue
		}
		// The default gorm scope excludes soft-deleted rows, so a zero count
		// means the files belong to no live project.
		if count == 0 {
			Sugar.Warnf("orphan scan: storage directory %s has no active project record", projectID)
		}
	}
}
