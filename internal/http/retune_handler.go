package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tone-drift/internal/service"
)

type retuneRunner interface {
	State() service.RetuneState
	LastReport() (service.SweepReport, bool)
	Sweep(ctx context.Context) (service.SweepReport, error)
}

// RetuneHandler expone el estado del barrido de drift y permite dispararlo a mano.
type RetuneHandler struct {
	logger *zap.Logger
	runner retuneRunner
}

func NewRetuneHandler(logger *zap.Logger, runner retuneRunner) *RetuneHandler {
	return &RetuneHandler{logger: logger, runner: runner}
}

// Status maneja GET /retune/status.
func (h *RetuneHandler) Status(c *gin.Context) {
	resp := gin.H{"state": h.runner.State()}
	if report, ok := h.runner.LastReport(); ok {
		resp["last_report"] = report
	}
	c.JSON(http.StatusOK, resp)
}

// Sweep maneja POST /retune/sweep.
func (h *RetuneHandler) Sweep(c *gin.Context) {
	report, err := h.runner.Sweep(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "retune sweep failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}
