package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tone-drift/internal/service"
)

// ToneHandler expone analisis, firmas, reescritura y deteccion de marca.
type ToneHandler struct {
	logger *zap.Logger
	tone   *service.ToneService
}

func NewToneHandler(logger *zap.Logger, tone *service.ToneService) *ToneHandler {
	return &ToneHandler{logger: logger, tone: tone}
}

// Analyze maneja POST /tone/signature/analyze.
func (h *ToneHandler) Analyze(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid analyze request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sig, err := h.tone.AnalyzeText(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, h.logger, err, "could not analyze text")
		return
	}
	c.JSON(http.StatusOK, gin.H{"signature": sig})
}

// Save maneja POST /tone/signature/save. Sin brand_id se genera uno.
func (h *ToneHandler) Save(c *gin.Context) {
	var req struct {
		Text    string `json:"text" binding:"required"`
		BrandID string `json:"brand_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid save signature request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sig, err := h.tone.AnalyzeAndSave(c.Request.Context(), req.Text, req.BrandID)
	if err != nil {
		writeError(c, h.logger, err, "could not save signature")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"signature": sig})
}

// GetSignature maneja GET /tone/signature/:brandId.
func (h *ToneHandler) GetSignature(c *gin.Context) {
	sig, err := h.tone.GetSignature(c.Request.Context(), c.Param("brandId"))
	if err != nil {
		writeError(c, h.logger, err, "could not load signature")
		return
	}
	c.JSON(http.StatusOK, gin.H{"signature": sig})
}

// ListBrands maneja GET /tone/brand.
func (h *ToneHandler) ListBrands(c *gin.Context) {
	ids, err := h.tone.ListBrands(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "could not list brands")
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": ids})
}

type brandTextRequest struct {
	BrandID string `json:"brand_id" binding:"required"`
	Text    string `json:"text" binding:"required"`
}

// Rewrite maneja POST /tone/signature/rewrite.
func (h *ToneHandler) Rewrite(c *gin.Context) {
	var req brandTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid rewrite request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	rewritten, err := h.tone.RewriteText(c.Request.Context(), req.BrandID, req.Text)
	if err != nil {
		writeError(c, h.logger, err, "could not rewrite text")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewritten_text": rewritten})
}

// RewriteWithEvaluation maneja POST /tone/signature/rewrite-evaluate.
func (h *ToneHandler) RewriteWithEvaluation(c *gin.Context) {
	var req brandTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid rewrite-evaluate request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.tone.RewriteWithEvaluation(c.Request.Context(), req.BrandID, req.Text)
	if err != nil {
		writeError(c, h.logger, err, "could not rewrite and evaluate text")
		return
	}
	c.JSON(http.StatusOK, res)
}

// DetectBrand maneja POST /tone/brand/detect.
func (h *ToneHandler) DetectBrand(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid detect brand request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	match, err := h.tone.DetectBrand(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, h.logger, err, "could not detect brand")
		return
	}
	c.JSON(http.StatusOK, match)
}
