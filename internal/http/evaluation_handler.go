package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tone-drift/internal/repository"
	"tone-drift/internal/service"
)

// EvaluationHandler expone evaluaciones, historial, feedback y el log de rechazos.
type EvaluationHandler struct {
	logger    *zap.Logger
	tone      *service.ToneService
	insights  *service.InsightsService
	approvals *service.ApprovalService
}

func NewEvaluationHandler(
	logger *zap.Logger,
	tone *service.ToneService,
	insights *service.InsightsService,
	approvals *service.ApprovalService,
) *EvaluationHandler {
	return &EvaluationHandler{
		logger:    logger,
		tone:      tone,
		insights:  insights,
		approvals: approvals,
	}
}

// Evaluate maneja POST /tone/evaluation/signature/evaluate.
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	var req struct {
		BrandID       string `json:"brand_id" binding:"required"`
		OriginalText  string `json:"original_text" binding:"required"`
		RewrittenText string `json:"rewritten_text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid evaluate request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ev, err := h.tone.EvaluateTone(c.Request.Context(), req.BrandID, req.OriginalText, req.RewrittenText)
	if err != nil {
		writeError(c, h.logger, err, "could not evaluate tone")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"evaluation": ev})
}

// Search maneja GET /tone/evaluation/search.
func (h *EvaluationHandler) Search(c *gin.Context) {
	var q struct {
		BrandID  string  `form:"brand_id"`
		MinScore float64 `form:"min_score"`
		MaxScore float64 `form:"max_score"`
		From     string  `form:"from"`
		To       string  `form:"to"`
		Page     int     `form:"page"`
		Limit    int     `form:"limit"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.Warn("invalid search request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	from, err := parseDateParam(q.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := parseDateParam(q.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.insights.SearchEvaluations(c.Request.Context(), repository.EvaluationFilter{
		BrandID:  q.BrandID,
		MinScore: q.MinScore,
		MaxScore: q.MaxScore,
		From:     from,
		To:       to,
		Page:     q.Page,
		Limit:    q.Limit,
	})
	if err != nil {
		writeError(c, h.logger, err, "could not search evaluations")
		return
	}
	c.JSON(http.StatusOK, res)
}

// Stats maneja GET /tone/evaluation/stats?brand_id=.
func (h *EvaluationHandler) Stats(c *gin.Context) {
	brandID, ok := requiredQuery(c, "brand_id")
	if !ok {
		return
	}
	stats, err := h.insights.ScoreStats(c.Request.Context(), brandID)
	if err != nil {
		writeError(c, h.logger, err, "could not compute stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Chart maneja GET /tone/evaluation/chart?brand_id=.
func (h *EvaluationHandler) Chart(c *gin.Context) {
	brandID, ok := requiredQuery(c, "brand_id")
	if !ok {
		return
	}
	points, err := h.insights.ChartData(c.Request.Context(), brandID)
	if err != nil {
		writeError(c, h.logger, err, "could not load chart data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"brand_id": brandID, "points": points})
}

// ChartPreview maneja GET /tone/evaluation/chart/preview?brand_id=.
func (h *EvaluationHandler) ChartPreview(c *gin.Context) {
	brandID, ok := requiredQuery(c, "brand_id")
	if !ok {
		return
	}
	preview, err := h.insights.ChartPreview(c.Request.Context(), brandID)
	if err != nil {
		writeError(c, h.logger, err, "could not load chart preview")
		return
	}
	c.JSON(http.StatusOK, preview)
}

// Matrix maneja GET /tone/evaluation/matrix (brand_id opcional).
func (h *EvaluationHandler) Matrix(c *gin.Context) {
	rows, err := h.insights.EvaluationMatrix(c.Request.Context(), c.Query("brand_id"))
	if err != nil {
		writeError(c, h.logger, err, "could not build evaluation matrix")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// ToneInsights maneja GET /tone/evaluation/tone-insights (brand_id opcional).
func (h *EvaluationHandler) ToneInsights(c *gin.Context) {
	brandID := c.Query("brand_id")
	traits, err := h.insights.ToneTraitScores(c.Request.Context(), brandID)
	if err != nil {
		writeError(c, h.logger, err, "could not compute tone insights")
		return
	}
	c.JSON(http.StatusOK, gin.H{"brand_id": brandID, "traits": traits})
}

// SubmitFeedback maneja POST /tone/evaluation/feedback.
func (h *EvaluationHandler) SubmitFeedback(c *gin.Context) {
	var req struct {
		EvaluationID string `json:"evaluation_id" binding:"required"`
		UserID       string `json:"user_id" binding:"required"`
		Helpful      *bool  `json:"helpful" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid feedback request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	fb, err := h.insights.SubmitFeedback(c.Request.Context(), req.EvaluationID, req.UserID, *req.Helpful)
	if err != nil {
		writeError(c, h.logger, err, "could not submit feedback")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"feedback": fb})
}

// FeedbackSummary maneja GET /tone/evaluation/feedback/:evaluationId.
func (h *EvaluationHandler) FeedbackSummary(c *gin.Context) {
	summary, err := h.insights.FeedbackSummary(c.Request.Context(), c.Param("evaluationId"))
	if err != nil {
		writeError(c, h.logger, err, "could not load feedback")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Rejections maneja GET /tone/evaluation/rejections (brand_id opcional).
func (h *EvaluationHandler) Rejections(c *gin.Context) {
	out, err := h.approvals.ListRejections(c.Request.Context(), c.Query("brand_id"))
	if err != nil {
		writeError(c, h.logger, err, "could not list rejections")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rejections": out})
}

// RejectionStats maneja GET /tone/evaluation/rejections/stats (brand_id opcional).
func (h *EvaluationHandler) RejectionStats(c *gin.Context) {
	out, err := h.insights.RejectionsByReviewer(c.Request.Context(), c.Query("brand_id"))
	if err != nil {
		writeError(c, h.logger, err, "could not aggregate rejections")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviewers": out})
}

func requiredQuery(c *gin.Context, name string) (string, bool) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " is required"})
		return "", false
	}
	return v, true
}

// parseDateParam acepta RFC3339 o una fecha YYYY-MM-DD (UTC).
func parseDateParam(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", raw)
}
