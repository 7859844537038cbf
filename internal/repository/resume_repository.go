package repository

import (
	"fmt"

	"gorm.io/gorm"

	"resume-screener/internal/model"
)

type ResumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) *ResumeRepository {
	return &ResumeRepository{db: db}
}

func (r *ResumeRepository) Create(resume *model.Resume) error {
	if err := r.db.Create(resume).Error; err != nil {
		return fmt.Errorf("create resume failed: %w", err)
	}
	return nil
}

// ListBySessionID returns resumes in insertion order.
func (r *ResumeRepository) ListBySessionID(sessionID string) ([]model.Resume, error) {
	var resumes []model.Resume
	if err := r.db.Where("session_id = ?", sessionID).Order("position ASC").Find(&resumes).Error; err != nil {
		return nil, fmt.Errorf("list resumes failed: %w", err)
	}
	return resumes, nil
}

func (r *ResumeRepository) CountBySessionID(sessionID string) (int, error) {
	var count int64
	if err := r.db.Model(&model.Resume{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count resumes failed: %w", err)
	}
	return int(count), nil
}

func (r *ResumeRepository) DeleteBySessionID(sessionID string) error {
	if err := r.db.Where("session_id = ?", sessionID).Delete(&model.Resume{}).Error; err != nil {
		return fmt.Errorf("delete resumes failed: %w", err)
	}
	return nil
}
