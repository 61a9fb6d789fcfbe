package models

import "time"

// ProjectSession is an access grant issued after a successful password check.
// Sessions are purged when their project is deleted and lazily when expired.
type ProjectSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID string    `gorm:"size:21;index;not null" json:"project_id"`
	Token     string    `gorm:"size:512;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
