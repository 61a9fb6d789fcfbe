package upload

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/statshare/statshare/models"
)

// ErrProjectNotFound is returned when a project does not exist or is deleted.
var ErrProjectNotFound = errors.New("project not found")

// ProjectStore is the relational collaborator of the coordinator. The gorm
// implementation below is the production one; tests substitute an in-memory
// fake. The store must enforce uniqueness on project_id and keep soft-deleted
// rows out of every lookup.
type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	FindActive(ctx context.Context, projectID string) (*models.Project, error)
	Update(ctx context.Context, projectID string, fields map[string]interface{}) error
	// SoftDelete marks the project deleted and reports whether a live row was
	// affected; deleting an already-deleted project affects nothing.
	SoftDelete(ctx context.Context, projectID string) (bool, error)
	DeleteSessions(ctx context.Context, projectID string) error
}

// GormProjectStore backs ProjectStore with the MySQL projects table.
type GormProjectStore struct {
	db *gorm.DB
}

// NewGormProjectStore wraps a gorm handle.
func NewGormProjectStore(db *gorm.DB) *GormProjectStore {
	return &GormProjectStore{db: db}
}

func (s *GormProjectStore) Create(ctx context.Context, project *models.Project) error {
	return s.db.WithContext(ctx).Create(project).Error
}

func (s *GormProjectStore) FindActive(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).Where("project_id = ?", projectID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *GormProjectStore) Update(ctx context.Context, projectID string, fields map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.Project{}).
		Where("project_id = ?", projectID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (s *GormProjectStore) SoftDelete(ctx context.Context, projectID string) (bool, error) {
	// gorm.DeletedAt makes this set deleted_at; the default scope already
	// excludes deleted rows, so a second delete matches nothing.
	res := s.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.Project{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormProjectStore) DeleteSessions(ctx context.Context, projectID string) error {
	return s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&models.ProjectSession{}).Error
}
