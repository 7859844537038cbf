package model

import "time"

// ActiveSession is the per-user pointer to the single live screening session.
// The unique index on UserID is what enforces one active session per user.
type ActiveSession struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	SessionID string    `gorm:"size:36;not null;index" json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}
