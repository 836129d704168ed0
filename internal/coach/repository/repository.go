package repository

import (
	"context"

	"go-trading-coach/internal/coach/dto"
	"go-trading-coach/internal/entity"
)

// AIRepository is the boundary to the external LLM.
type AIRepository interface {
	ChatReply(ctx context.Context, req *dto.ChatReplyRequest) (*dto.ChatReplyResponse, error)
}

// AnalysisRepository persists completed analysis runs.
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *entity.ChatAnalysis) error
	FindByID(ctx context.Context, id string) (*entity.ChatAnalysis, error)
	FindRecentByUser(ctx context.Context, userID string, limit int) ([]entity.ChatAnalysis, error)
}
