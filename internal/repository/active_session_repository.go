package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"resume-screener/internal/model"
)

// ActiveSessionRepository manages the per-user active-session pointer.
type ActiveSessionRepository struct {
	db *gorm.DB
}

func NewActiveSessionRepository(db *gorm.DB) *ActiveSessionRepository {
	return &ActiveSessionRepository{db: db}
}

func (r *ActiveSessionRepository) Create(session *model.ActiveSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create active session failed: %w", err)
	}
	return nil
}

func (r *ActiveSessionRepository) GetByUserID(userID uint) (*model.ActiveSession, error) {
	var session model.ActiveSession
	if err := r.db.Where("user_id = ?", userID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query active session failed: %w", err)
	}
	return &session, nil
}

func (r *ActiveSessionRepository) DeleteByUserID(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.ActiveSession{}).Error; err != nil {
		return fmt.Errorf("delete active session failed: %w", err)
	}
	return nil
}

// ListCreatedBefore returns session pointers older than the cutoff, for the
// retention sweep.
func (r *ActiveSessionRepository) ListCreatedBefore(cutoff time.Time) ([]model.ActiveSession, error) {
	var sessions []model.ActiveSession
	if err := r.db.Where("created_at < ?", cutoff).Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list expired sessions failed: %w", err)
	}
	return sessions, nil
}
