package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"go-trading-coach/internal/coach/analyzer"
	"go-trading-coach/internal/coach/config"
	"go-trading-coach/internal/coach/dto"
	"go-trading-coach/internal/coach/repository"
	"go-trading-coach/internal/entity"
	"go-trading-coach/pkg/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	gocache "github.com/patrickmn/go-cache"
	"gorm.io/datatypes"
)

// historicalTrendWindow bounds how many prior messages feed the psychology
// trend aggregation.
const historicalTrendWindow = 10

// callState tracks the external LLM invocation through its small state
// machine so the "always answer something" guarantee is explicit.
type callState int

const (
	stateInvoking callState = iota
	stateSucceeded
	stateFailedWithFallback
)

// Fallback reply variants, keyed by whether a chart image was attached.
const (
	fallbackWithImage = "I couldn't fully analyze your chart right now. From what you've described, double-check the trend direction, the nearest key level and your risk/reward before entering. Try sending the chart again in a moment."
	fallbackTextOnly  = "I'm having trouble reaching the analysis engine right now. Take a breath, re-read your trade plan, and try rephrasing or resending your message in a moment."
)

// CoachService runs the full per-message analysis pipeline.
type CoachService interface {
	AnalyzeMessage(ctx context.Context, msg *dto.ChatMessage, opts dto.AnalyzeOptions) (*dto.AnalysisResult, error)
	GetAnalysis(ctx context.Context, id string) (*entity.ChatAnalysis, error)
	Usage() dto.UsageSnapshot
}

type coachService struct {
	cfg           *config.Config
	log           *logger.Logger
	aiRepo        repository.AIRepository
	analysisRepo  repository.AnalysisRepository
	modelSelector *repository.ModelSelector
	verdict       *analyzer.VerdictClassifier
	psychology    *analyzer.PsychologyAnalyzer
	usage         *UsageTracker
	cache         *gocache.Cache
}

// NewCoachService creates the orchestrator. analysisRepo may be nil, in which
// case results are not persisted and no historical trends are available.
func NewCoachService(
	cfg *config.Config,
	log *logger.Logger,
	aiRepo repository.AIRepository,
	analysisRepo repository.AnalysisRepository,
	usage *UsageTracker,
) CoachService {
	ttl := cfg.Coach.ResultCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &coachService{
		cfg:           cfg,
		log:           log,
		aiRepo:        aiRepo,
		analysisRepo:  analysisRepo,
		modelSelector: repository.NewModelSelector(cfg),
		verdict:       analyzer.NewVerdictClassifier(),
		psychology:    analyzer.NewPsychologyAnalyzer(),
		usage:         usage,
		cache:         gocache.New(ttl, 2*ttl),
	}
}

// AnalyzeMessage runs the pipeline: model selection, prompt, LLM call,
// verdict scoring, psychology analysis, merge. Sub-analysis failures degrade
// into SubErrors entries; an LLM failure short-circuits into a fallback
// response. The returned error is non-nil only for invalid input.
func (s *coachService) AnalyzeMessage(ctx context.Context, msg *dto.ChatMessage, opts dto.AnalyzeOptions) (*dto.AnalysisResult, error) {
	if msg == nil || (msg.Content == "" && msg.ImageURL == "") {
		return nil, &analyzer.ValidationError{Field: "message", Message: "message content or image is required"}
	}

	cacheKey := resultCacheKey(msg)
	if !opts.SkipCache {
		if cached, ok := s.cache.Get(cacheKey); ok {
			s.log.Debug("Returning cached analysis", logger.StringField("message_id", msg.ID))
			return cached.(*dto.AnalysisResult), nil
		}
	}

	started := time.Now()
	hasImage := msg.ImageURL != ""

	model := s.modelSelector.Select(hasImage, opts.CostSensitivity)
	mode := s.detectMode(msg)
	prompt := repository.BuildChatPrompt(mode, msg.Content)

	result := &dto.AnalysisResult{
		ID:         uuid.NewString(),
		UserID:     msg.UserID,
		AIModel:    model.ID,
		AnalyzedAt: started,
		SubErrors:  map[string]string{},
	}

	state := stateInvoking
	reply, err := s.aiRepo.ChatReply(ctx, &dto.ChatReplyRequest{
		Model:    model.ID,
		Prompt:   prompt,
		ImageURL: msg.ImageURL,
	})
	if err != nil {
		state = stateFailedWithFallback
		var extErr *repository.ExternalServiceError
		if !errors.As(err, &extErr) {
			s.log.Error("Unexpected error type from AI repository", logger.ErrorField(err))
		}
		s.log.Error("LLM call failed, answering with fallback", logger.ErrorField(err), logger.StringField("message_id", msg.ID))
	} else {
		state = stateSucceeded
		result.Content = reply.Text
		result.TokensUsed = reply.TokensUsed
		result.EstimatedCost = s.modelSelector.CostEstimate(model.ID, reply.TokensUsed)
	}

	if state == stateFailedWithFallback {
		result.Type = dto.ResponseTypeFallback
		if hasImage {
			result.Content = fallbackWithImage
		} else {
			result.Content = fallbackTextOnly
		}
		result.ProcessingTimeMs = time.Since(started).Milliseconds()
		s.usage.Record(UsageStatusFallback, 0, 0, time.Since(started))
		return result, nil
	}

	result.Type = dto.ResponseTypeAnalysis

	s.runVerdict(msg, opts, result)
	s.runPsychology(ctx, msg, opts, result)

	if len(result.SubErrors) == 0 {
		result.SubErrors = nil
	}

	result.ProcessingTimeMs = time.Since(started).Milliseconds()
	s.usage.Record(UsageStatusSuccess, result.TokensUsed, result.EstimatedCost, time.Since(started))

	s.persist(ctx, msg, result)
	s.cache.SetDefault(cacheKey, result)

	return result, nil
}

// runVerdict executes the verdict sub-analysis; a failure is recorded and the
// pipeline continues.
func (s *coachService) runVerdict(msg *dto.ChatMessage, opts dto.AnalyzeOptions, result *dto.AnalysisResult) {
	riskTags, positiveTags := analyzer.ExtractFactorTags(msg.Content)

	verdict, err := s.verdict.Classify(
		analyzer.SetupInput{Description: msg.Content},
		analyzer.ClassifyOptions{
			IncludeReasoning: opts.IncludeReasoning,
			RiskFactors:      riskTags,
			PositiveFactors:  positiveTags,
		},
	)
	if err != nil {
		s.log.Warn("Verdict classification failed", logger.ErrorField(err), logger.StringField("message_id", msg.ID))
		result.SubErrors["verdict"] = err.Error()
		return
	}
	result.Verdict = verdict
}

// runPsychology executes the psychology sub-analysis; a failure is recorded
// and the pipeline continues.
func (s *coachService) runPsychology(ctx context.Context, msg *dto.ChatMessage, opts dto.AnalyzeOptions, result *dto.AnalysisResult) {
	psyOpts := analyzer.PsychologyOptions{
		IncludeInsights: opts.IncludeInsights,
	}
	if s.analysisRepo != nil && msg.UserID != "" {
		if history, err := s.analysisRepo.FindRecentByUser(ctx, msg.UserID, historicalTrendWindow); err != nil {
			s.log.Warn("Failed to load message history for trends", logger.ErrorField(err), logger.StringField("user_id", msg.UserID))
		} else if len(history) > 0 {
			psyOpts.IncludeHistoricalTrends = true
			for _, h := range history {
				psyOpts.HistoricalMessages = append(psyOpts.HistoricalMessages, h.Content)
			}
		}
	}

	psychology, err := s.psychology.Analyze(msg.Content, psyOpts)
	if err != nil {
		s.log.Warn("Psychology analysis failed", logger.ErrorField(err), logger.StringField("message_id", msg.ID))
		result.SubErrors["psychology"] = err.Error()
		return
	}
	result.Psychology = psychology
}

func (s *coachService) detectMode(msg *dto.ChatMessage) repository.AnalysisMode {
	if msg.ImageURL != "" {
		return repository.ModeChartAnalysis
	}
	if analyzer.HasEmotionalContent(msg.Content) {
		return repository.ModeCoaching
	}
	return repository.ModeGeneral
}

// persist stores the run best-effort; a storage failure never fails the
// pipeline.
func (s *coachService) persist(ctx context.Context, msg *dto.ChatMessage, result *dto.AnalysisResult) {
	if s.analysisRepo == nil {
		return
	}

	record := &entity.ChatAnalysis{
		ID:            result.ID,
		UserID:        msg.UserID,
		Content:       msg.Content,
		ImageURL:      msg.ImageURL,
		ResponseType:  result.Type,
		AIModel:       result.AIModel,
		TokensUsed:    result.TokensUsed,
		EstimatedCost: result.EstimatedCost,
		ProcessingMs:  result.ProcessingTimeMs,
	}
	if result.Verdict != nil {
		record.Verdict = string(result.Verdict.Verdict)
		record.Confidence = result.Verdict.Confidence
	}
	if result.Psychology != nil {
		record.EmotionalState = string(result.Psychology.EmotionalState)
		record.CoachingType = string(result.Psychology.CoachingType)
		record.PatternTags = pq.StringArray(result.Psychology.PatternTags)
	}
	if data, err := json.Marshal(result); err == nil {
		record.Data = datatypes.JSON(data)
	}

	if err := s.analysisRepo.Create(ctx, record); err != nil {
		s.log.Error("Failed to persist analysis", logger.ErrorField(err), logger.StringField("analysis_id", result.ID))
	}
}

func (s *coachService) GetAnalysis(ctx context.Context, id string) (*entity.ChatAnalysis, error) {
	if s.analysisRepo == nil {
		return nil, errors.New("analysis storage is not configured")
	}
	return s.analysisRepo.FindByID(ctx, id)
}

func (s *coachService) Usage() dto.UsageSnapshot {
	return s.usage.Snapshot()
}

func resultCacheKey(msg *dto.ChatMessage) string {
	sum := sha256.Sum256([]byte(msg.UserID + "\x00" + msg.Content + "\x00" + msg.ImageURL))
	return hex.EncodeToString(sum[:])
}
