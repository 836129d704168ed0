package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChatAnalysis is one persisted analysis pipeline run for a chat message.
type ChatAnalysis struct {
	ID             string         `json:"id" gorm:"primaryKey"`
	UserID         string         `json:"user_id"`
	Content        string         `json:"content"`
	ImageURL       string         `json:"image_url"`
	ResponseType   string         `json:"response_type"`
	Verdict        string         `json:"verdict"`
	Confidence     int            `json:"confidence"`
	EmotionalState string         `json:"emotional_state"`
	CoachingType   string         `json:"coaching_type"`
	PatternTags    pq.StringArray `json:"pattern_tags" gorm:"type:text[]"`
	AIModel        string         `json:"ai_model"`
	TokensUsed     int            `json:"tokens_used"`
	EstimatedCost  float64        `json:"estimated_cost"`
	ProcessingMs   int64          `json:"processing_ms"`
	Data           datatypes.JSON `json:"data" gorm:"type:jsonb"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at"`
}

func (ChatAnalysis) TableName() string {
	return "chat_analyses"
}
