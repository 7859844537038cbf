package model

import "time"

// UserUsage tracks how many resumes a user has screened against their quota.
type UserUsage struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	UserID       uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	ResumesUsed  int       `gorm:"not null;default:0" json:"resumes_used"`
	ResumesLimit int       `gorm:"not null" json:"resumes_limit"`
	UpdatedAt    time.Time `json:"-"`
}
