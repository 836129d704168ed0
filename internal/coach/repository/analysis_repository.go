package repository

import (
	"context"

	"go-trading-coach/internal/entity"

	"gorm.io/gorm"
)

type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new gorm-backed AnalysisRepository.
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(ctx context.Context, analysis *entity.ChatAnalysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

func (r *analysisRepository) FindByID(ctx context.Context, id string) (*entity.ChatAnalysis, error) {
	var analysis entity.ChatAnalysis
	if err := r.db.WithContext(ctx).First(&analysis, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (r *analysisRepository) FindRecentByUser(ctx context.Context, userID string, limit int) ([]entity.ChatAnalysis, error) {
	var analyses []entity.ChatAnalysis
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&analyses).Error
	if err != nil {
		return nil, err
	}
	return analyses, nil
}
