package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"resume-screener/internal/model"
)

type UsageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

func (r *UsageRepository) Create(usage *model.UserUsage) error {
	if err := r.db.Create(usage).Error; err != nil {
		return fmt.Errorf("create usage record failed: %w", err)
	}
	return nil
}

func (r *UsageRepository) GetByUserID(userID uint) (*model.UserUsage, error) {
	var usage model.UserUsage
	if err := r.db.Where("user_id = ?", userID).First(&usage).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query usage record failed: %w", err)
	}
	return &usage, nil
}

// Increment adds delta to the user's resumes_used counter.
func (r *UsageRepository) Increment(userID uint, delta int) error {
	result := r.db.Model(&model.UserUsage{}).
		Where("user_id = ?", userID).
		UpdateColumn("resumes_used", gorm.Expr("resumes_used + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("increment usage failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("increment usage failed: no record for user %d", userID)
	}
	return nil
}
