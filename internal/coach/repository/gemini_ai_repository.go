package repository

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-trading-coach/internal/coach/config"
	"go-trading-coach/internal/coach/dto"
	"go-trading-coach/pkg/logger"
	"go-trading-coach/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiAIRepository is an implementation of AIRepository backed by the
// Google Gemini API.
type geminiAIRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AIRepository, error) {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)

	return &geminiAIRepository{
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
	}, nil
}

// ChatReply sends the prompt (and optional chart image) to Gemini and returns
// the raw conversational reply. Every failure is wrapped in an
// ExternalServiceError so the caller can fall back instead of propagating it.
func (r *geminiAIRepository) ChatReply(ctx context.Context, req *dto.ChatReplyRequest) (*dto.ChatReplyResponse, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(req.Prompt, "user"),
	}
	tokenResp, err := r.genAiClient.Models.CountTokens(ctx, req.Model, contents, nil)
	if err != nil {
		return nil, &ExternalServiceError{Provider: "gemini", Err: fmt.Errorf("failed to count tokens: %w", err)}
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(tokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)

	if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
		return nil, &ExternalServiceError{Provider: "gemini", Err: fmt.Errorf("failed to wait for token limit: %w", err)}
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, &ExternalServiceError{Provider: "gemini", Err: fmt.Errorf("failed to wait for request limit: %w", err)}
	}
	if int(tokenResp.TotalTokens) > r.cfg.Gemini.MaxTokenPerMinute/2 {
		r.logger.Warn("Token has exceeded 50% of the limit", logger.IntField("remaining", r.tokenLimiter.GetRemaining()))
	}

	parts := []dto.Part{{Text: req.Prompt}}
	if req.ImageURL != "" {
		inline, err := r.fetchImageInline(ctx, req.ImageURL)
		if err != nil {
			// The text prompt still carries the question; a missing image
			// degrades the answer but should not abort the call.
			r.logger.Warn("Failed to fetch chart image, continuing text-only", logger.ErrorField(err), logger.StringField("image_url", req.ImageURL))
		} else {
			parts = append(parts, dto.Part{InlineData: inline})
		}
	}

	payload := dto.GeminiAPIRequest{
		Contents: []dto.Content{{Parts: parts}},
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error("Failed to marshal payload", logger.ErrorField(err))
		return nil, &ExternalServiceError{Provider: "gemini", Err: fmt.Errorf("failed to marshal payload: %w", err)}
	}

	apiURL := fmt.Sprintf("%s/%s:generateContent?key=%s", r.cfg.Gemini.BaseURL, req.Model, r.cfg.Gemini.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, &ExternalServiceError{Provider: "gemini", Err: fmt.Errorf("failed to create new http request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		r.logger.Error("Failed to send request to Gemini API", logger.ErrorField(err))
		return nil, &ExternalServiceError{Provider: "gemini", Err: fmt.Errorf("failed to send request to Gemini API: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.logger.Error("Received non-OK response from Gemini API", logger.IntField("status_code", resp.StatusCode))
		return nil, &ExternalServiceError{Provider: "gemini", Err: fmt.Errorf("received non-OK response from Gemini API: %d - %s", resp.StatusCode, string(body))}
	}

	var geminiResp dto.GeminiAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		r.logger.Error("Failed to decode response body", logger.ErrorField(err))
		return nil, &ExternalServiceError{Provider: "gemini", Err: fmt.Errorf("failed to decode response body: %w", err)}
	}

	return r.parseChatReply(&geminiResp)
}

func (r *geminiAIRepository) parseChatReply(resp *dto.GeminiAPIResponse) (*dto.ChatReplyResponse, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &ExternalServiceError{Provider: "gemini", Err: fmt.Errorf("invalid response from Gemini API: no content found")}
	}

	reply := &dto.ChatReplyResponse{
		Text: resp.Candidates[0].Content.Parts[0].Text,
	}
	if resp.UsageMetadata != nil {
		reply.TokensUsed = resp.UsageMetadata.TotalTokenCount
		reply.PromptTokens = resp.UsageMetadata.PromptTokenCount
	}
	return reply, nil
}

// fetchImageInline downloads the uploaded chart screenshot and wraps it as an
// inline base64 part for a vision request.
func (r *geminiAIRepository) fetchImageInline(ctx context.Context, imageURL string) (*dto.InlineData, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-OK response fetching image: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/png"
	}

	return &dto.InlineData{
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}
