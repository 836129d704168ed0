package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-trading-coach/internal/coach/analyzer"
	"go-trading-coach/internal/coach/config"
	"go-trading-coach/internal/coach/dto"
	"go-trading-coach/internal/coach/repository"
	"go-trading-coach/internal/entity"
	"go-trading-coach/pkg/logger"
)

type stubAIRepo struct {
	reply   *dto.ChatReplyResponse
	err     error
	calls   int
	lastReq *dto.ChatReplyRequest
}

func (s *stubAIRepo) ChatReply(_ context.Context, req *dto.ChatReplyRequest) (*dto.ChatReplyResponse, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.reply, nil
}

type stubAnalysisRepo struct {
	created []*entity.ChatAnalysis
	history []entity.ChatAnalysis
}

func (s *stubAnalysisRepo) Create(_ context.Context, analysis *entity.ChatAnalysis) error {
	s.created = append(s.created, analysis)
	return nil
}

func (s *stubAnalysisRepo) FindByID(_ context.Context, id string) (*entity.ChatAnalysis, error) {
	for i := range s.created {
		if s.created[i].ID == id {
			return s.created[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (s *stubAnalysisRepo) FindRecentByUser(_ context.Context, _ string, _ int) ([]entity.ChatAnalysis, error) {
	return s.history, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Coach: config.Coach{ResultCacheTTL: time.Minute},
		Gemini: config.Gemini{
			TextModel:    "text-model",
			VisionModel:  "vision-model",
			PremiumModel: "premium-model",
		},
	}
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("debug", "console")
	require.NoError(t, err)
	return log
}

func newTestService(t *testing.T, aiRepo repository.AIRepository, analysisRepo repository.AnalysisRepository) (CoachService, *UsageTracker) {
	t.Helper()
	usage := NewUsageTracker(prometheus.NewRegistry())
	return NewCoachService(testConfig(), testLogger(t), aiRepo, analysisRepo, usage), usage
}

func TestAnalyzeMessage_RejectsEmptyMessage(t *testing.T) {
	svc, _ := newTestService(t, &stubAIRepo{}, nil)

	var validationErr *analyzer.ValidationError

	_, err := svc.AnalyzeMessage(context.Background(), nil, dto.AnalyzeOptions{})
	require.Error(t, err)
	assert.True(t, errors.As(err, &validationErr))

	_, err = svc.AnalyzeMessage(context.Background(), &dto.ChatMessage{UserID: "u1"}, dto.AnalyzeOptions{})
	require.Error(t, err)
	assert.True(t, errors.As(err, &validationErr))
}

func TestAnalyzeMessage_SuccessPath(t *testing.T) {
	ai := &stubAIRepo{reply: &dto.ChatReplyResponse{Text: "Solid setup, manage your risk.", TokensUsed: 1200}}
	svc, usage := newTestService(t, ai, nil)

	result, err := svc.AnalyzeMessage(context.Background(), &dto.ChatMessage{
		ID:      "m1",
		UserID:  "u1",
		Content: "EURUSD strong support bounce with high volume",
	}, dto.AnalyzeOptions{IncludeReasoning: true})
	require.NoError(t, err)

	assert.Equal(t, dto.ResponseTypeAnalysis, result.Type)
	assert.Equal(t, "Solid setup, manage your risk.", result.Content)
	assert.Equal(t, 1200, result.TokensUsed)
	assert.InDelta(t, 0.0003, result.EstimatedCost, 1e-9)
	assert.Nil(t, result.SubErrors)

	require.NotNil(t, result.Verdict)
	assert.Equal(t, analyzer.VerdictDiamond, result.Verdict.Verdict)
	assert.Equal(t, 87, result.Verdict.Confidence)

	require.NotNil(t, result.Psychology)
	assert.Equal(t, analyzer.CoachingDiscipline, result.Psychology.CoachingType)

	snapshot := usage.Snapshot()
	assert.Equal(t, int64(1), snapshot.Requests)
	assert.Equal(t, int64(0), snapshot.Fallbacks)
	assert.Equal(t, int64(1200), snapshot.TokensUsed)
}

func TestAnalyzeMessage_FallbackOnLLMFailure(t *testing.T) {
	ai := &stubAIRepo{err: &repository.ExternalServiceError{Provider: "gemini", Err: errors.New("quota exhausted")}}
	svc, usage := newTestService(t, ai, nil)

	result, err := svc.AnalyzeMessage(context.Background(), &dto.ChatMessage{
		ID:       "m1",
		UserID:   "u1",
		Content:  "what do you think of this chart",
		ImageURL: "https://example.com/chart.png",
	}, dto.AnalyzeOptions{})
	require.NoError(t, err, "an LLM failure must still produce a reply")

	assert.Equal(t, dto.ResponseTypeFallback, result.Type)
	assert.Equal(t, fallbackWithImage, result.Content)
	assert.Nil(t, result.Verdict)
	assert.Nil(t, result.Psychology)
	assert.Zero(t, result.TokensUsed)

	snapshot := usage.Snapshot()
	assert.Equal(t, int64(1), snapshot.Requests)
	assert.Equal(t, int64(1), snapshot.Fallbacks)
}

func TestAnalyzeMessage_FallbackTextVariesWithImage(t *testing.T) {
	ai := &stubAIRepo{err: &repository.ExternalServiceError{Provider: "gemini", Err: errors.New("timeout")}}
	svc, _ := newTestService(t, ai, nil)

	result, err := svc.AnalyzeMessage(context.Background(), &dto.ChatMessage{
		ID:      "m2",
		UserID:  "u1",
		Content: "thoughts on gold today",
	}, dto.AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, fallbackTextOnly, result.Content)
}

func TestAnalyzeMessage_CachesIdenticalMessages(t *testing.T) {
	ai := &stubAIRepo{reply: &dto.ChatReplyResponse{Text: "reply", TokensUsed: 10}}
	svc, _ := newTestService(t, ai, nil)

	msg := &dto.ChatMessage{ID: "m1", UserID: "u1", Content: "looking at an uptrend retest"}

	first, err := svc.AnalyzeMessage(context.Background(), msg, dto.AnalyzeOptions{})
	require.NoError(t, err)
	second, err := svc.AnalyzeMessage(context.Background(), msg, dto.AnalyzeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, ai.calls)
	assert.Same(t, first, second)

	_, err = svc.AnalyzeMessage(context.Background(), msg, dto.AnalyzeOptions{SkipCache: true})
	require.NoError(t, err)
	assert.Equal(t, 2, ai.calls)
}

func TestAnalyzeMessage_PartialFailureDegrades(t *testing.T) {
	ai := &stubAIRepo{reply: &dto.ChatReplyResponse{Text: "chart reply", TokensUsed: 500}}
	svc, _ := newTestService(t, ai, nil)

	// An image-only message gives the local analyzers nothing to work with;
	// the LLM reply still goes out with both sub-errors attached.
	result, err := svc.AnalyzeMessage(context.Background(), &dto.ChatMessage{
		ID:       "m1",
		UserID:   "u1",
		ImageURL: "https://example.com/chart.png",
	}, dto.AnalyzeOptions{})
	require.NoError(t, err)

	assert.Equal(t, dto.ResponseTypeAnalysis, result.Type)
	assert.Equal(t, "chart reply", result.Content)
	assert.Nil(t, result.Verdict)
	assert.Nil(t, result.Psychology)
	require.NotNil(t, result.SubErrors)
	assert.Contains(t, result.SubErrors, "verdict")
	assert.Contains(t, result.SubErrors, "psychology")
}

func TestAnalyzeMessage_ModelSelection(t *testing.T) {
	ai := &stubAIRepo{reply: &dto.ChatReplyResponse{Text: "reply"}}
	svc, _ := newTestService(t, ai, nil)

	result, err := svc.AnalyzeMessage(context.Background(), &dto.ChatMessage{
		ID:      "m1",
		UserID:  "u1",
		Content: "quick question about position sizing",
	}, dto.AnalyzeOptions{CostSensitivity: "high"})
	require.NoError(t, err)

	assert.Equal(t, "text-model", result.AIModel)
	assert.Equal(t, "text-model", ai.lastReq.Model)
}

func TestAnalyzeMessage_PersistsAndLoadsHistory(t *testing.T) {
	ai := &stubAIRepo{reply: &dto.ChatReplyResponse{Text: "reply", TokensUsed: 100}}
	store := &stubAnalysisRepo{history: []entity.ChatAnalysis{
		{Content: "I'm worried about this trade"},
		{Content: "feeling calm today"},
	}}
	svc, _ := newTestService(t, ai, store)

	result, err := svc.AnalyzeMessage(context.Background(), &dto.ChatMessage{
		ID:      "m1",
		UserID:  "u1",
		Content: "should I take this trade?",
	}, dto.AnalyzeOptions{})
	require.NoError(t, err)

	require.NotNil(t, result.Psychology)
	require.NotNil(t, result.Psychology.HistoricalTrends)
	assert.Equal(t, 2, result.Psychology.HistoricalTrends.MessageCount)

	require.Len(t, store.created, 1)
	record := store.created[0]
	assert.Equal(t, result.ID, record.ID)
	assert.Equal(t, "u1", record.UserID)
	assert.Equal(t, dto.ResponseTypeAnalysis, record.ResponseType)
	assert.Equal(t, result.AIModel, record.AIModel)
	assert.NotEmpty(t, record.Data)

	loaded, err := svc.GetAnalysis(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Equal(t, record, loaded)
}

func TestGetAnalysis_WithoutStorage(t *testing.T) {
	svc, _ := newTestService(t, &stubAIRepo{}, nil)

	_, err := svc.GetAnalysis(context.Background(), "missing")
	assert.Error(t, err)
}
