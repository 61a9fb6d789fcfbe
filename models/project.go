package models

import (
	"time"

	"gorm.io/gorm"
)

// Project is one student's report package, addressable by an opaque public ID.
// Deletion is always a soft delete: the row is kept for audit and the DeletedAt
// timestamp is the access-control boundary for the viewing flow.
type Project struct {
	ID            uint           `gorm:"primaryKey" json:"-"`
	ProjectID     string         `gorm:"size:21;uniqueIndex;not null" json:"project_id"`
	ProjectName   string         `gorm:"size:500;not null" json:"project_name"`
	StudentName   string         `gorm:"size:255;not null" json:"student_name"`
	StudentEmail  string         `gorm:"size:255;not null" json:"student_email"`
	ResearchTopic string         `gorm:"type:text" json:"research_topic"`
	PasswordHash  string         `gorm:"size:255;not null" json:"-"`
	DocxURL       string         `gorm:"size:1024;not null" json:"docx_url"`
	HTMLURL       string         `gorm:"size:1024;not null" json:"html_url"`
	ViewCount     int64          `gorm:"default:0" json:"view_count"`
	LastAccessed  *time.Time     `json:"last_accessed"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (p *Project) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}
