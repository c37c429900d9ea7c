package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
// retuneH puede ser nil cuando el barrido de drift esta deshabilitado.
func NewRouter(
	logger *zap.Logger,
	toneH *ToneHandler,
	evalH *EvaluationHandler,
	slackH *SlackHandler,
	retuneH *RetuneHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	tone := r.Group("/tone")
	tone.POST("/signature/analyze", toneH.Analyze)
	tone.POST("/signature/save", toneH.Save)
	tone.POST("/signature/rewrite", toneH.Rewrite)
	tone.POST("/signature/rewrite-evaluate", toneH.RewriteWithEvaluation)
	tone.GET("/signature/:brandId", toneH.GetSignature)
	tone.GET("/brand", toneH.ListBrands)
	tone.POST("/brand/detect", toneH.DetectBrand)

	eval := tone.Group("/evaluation")
	eval.POST("/signature/evaluate", evalH.Evaluate)
	eval.GET("/search", evalH.Search)
	eval.GET("/stats", evalH.Stats)
	eval.GET("/chart", evalH.Chart)
	eval.GET("/chart/preview", evalH.ChartPreview)
	eval.GET("/matrix", evalH.Matrix)
	eval.GET("/tone-insights", evalH.ToneInsights)
	eval.POST("/feedback", evalH.SubmitFeedback)
	eval.GET("/feedback/:evaluationId", evalH.FeedbackSummary)
	eval.GET("/rejections", evalH.Rejections)
	eval.GET("/rejections/stats", evalH.RejectionStats)

	slack := r.Group("/slack", slackH.VerifyRequest())
	slack.POST("/interact", slackH.Interact)
	slack.POST("/commands", slackH.Command)

	if retuneH != nil {
		retune := r.Group("/retune")
		retune.GET("/status", retuneH.Status)
		retune.POST("/sweep", retuneH.Sweep)
	}

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
