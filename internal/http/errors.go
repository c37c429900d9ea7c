package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tone-drift/internal/domain"
	"tone-drift/internal/service"
)

// statusFor traduce errores de dominio a codigos HTTP.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSignatureNotFound):
		return http.StatusNotFound, "signature not found"
	case errors.Is(err, service.ErrEvaluationNotFound):
		return http.StatusNotFound, "evaluation not found"
	case errors.Is(err, domain.ErrNoBrands):
		return http.StatusNotFound, "no brands registered"
	case errors.Is(err, service.ErrInvalidScoreRange):
		return http.StatusBadRequest, "min_score above max_score"
	case errors.Is(err, domain.ErrMalformedOracleResponse):
		return http.StatusBadGateway, "oracle returned an invalid response"
	case errors.Is(err, domain.ErrOracleTimeout):
		return http.StatusGatewayTimeout, "oracle timed out"
	case errors.Is(err, service.ErrProposalExpired):
		return http.StatusGone, "proposal expired"
	case errors.Is(err, domain.ErrProposalInvalid):
		return http.StatusBadRequest, "proposal invalid or already used"
	case errors.Is(err, service.ErrSweepInProgress):
		return http.StatusConflict, "retune sweep already in progress"
	default:
		return http.StatusInternalServerError, ""
	}
}

// writeError responde con el codigo del error; los 500 se loguean con el mensaje de fallback.
func writeError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(fallback, zap.Error(err))
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	logger.Warn(msg, zap.Error(err))
	c.JSON(status, gin.H{"error": msg})
}
