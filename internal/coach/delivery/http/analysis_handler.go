package http

import (
	"errors"
	"net/http"

	"go-trading-coach/internal/coach/analyzer"
	"go-trading-coach/internal/coach/dto"
	"go-trading-coach/internal/coach/service"
	"go-trading-coach/pkg/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// AnalysisHandler handles HTTP requests for chat analyses.
type AnalysisHandler struct {
	coachService service.CoachService
	logger       *logger.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(coachService service.CoachService, logger *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{coachService: coachService, logger: logger}
}

// RegisterRoutes registers the analysis routes to the Echo group.
func (h *AnalysisHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateAnalysis)
	g.GET("/:id", h.GetAnalysisByID)
}

// AnalyzeRequest is the request body for CreateAnalysis.
type AnalyzeRequest struct {
	UserID   string             `json:"user_id"`
	Content  string             `json:"content"`
	ImageURL string             `json:"image_url,omitempty"`
	Options  dto.AnalyzeOptions `json:"options,omitempty"`
}

// CreateAnalysis godoc
// @Summary Analyze a chat message
// @Description Runs the full coaching pipeline on one trader message
// @Tags analyses
// @Accept  json
// @Produce  json
// @Param   message  body    AnalyzeRequest   true    "Message to analyze"
// @Success 200 {object} dto.AnalysisResult
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /analyses [post]
func (h *AnalysisHandler) CreateAnalysis(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	msg := &dto.ChatMessage{
		UserID:   req.UserID,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	}

	result, err := h.coachService.AnalyzeMessage(c.Request().Context(), msg, req.Options)
	if err != nil {
		var validationErr *analyzer.ValidationError
		if errors.As(err, &validationErr) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": validationErr.Error()})
		}
		h.logger.Error("Analysis failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "analysis failed"})
	}

	return c.JSON(http.StatusOK, result)
}

// GetAnalysisByID godoc
// @Summary Get an analysis by ID
// @Description Returns a previously stored analysis
// @Tags analyses
// @Produce  json
// @Param   id  path    string true    "Analysis ID"
// @Success 200 {object} entity.ChatAnalysis
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /analyses/{id} [get]
func (h *AnalysisHandler) GetAnalysisByID(c echo.Context) error {
	analysis, err := h.coachService.GetAnalysis(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "analysis not found"})
		}
		h.logger.Error("Failed to load analysis", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, analysis)
}

// GetUsage godoc
// @Summary Process-wide usage totals
// @Description Returns accumulated token, cost and request counters
// @Tags usage
// @Produce  json
// @Success 200 {object} dto.UsageSnapshot
// @Router /usage [get]
func (h *AnalysisHandler) GetUsage(c echo.Context) error {
	return c.JSON(http.StatusOK, h.coachService.Usage())
}
