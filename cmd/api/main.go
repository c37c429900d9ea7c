package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tone-drift/internal/config"
	"tone-drift/internal/db"
	apihttp "tone-drift/internal/http"
	"tone-drift/internal/llm"
	"tone-drift/internal/repository"
	"tone-drift/internal/service"
	"tone-drift/internal/slack"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory stores", zap.Error(err))
			redisClient = nil
		}
		cancel()
	}

	signatureRepo := repository.NewCachedSignatureRepository(
		repository.NewPgSignatureRepository(pool), redisClient, cfg.SignatureCacheTTL, logger)
	evaluationRepo := repository.NewPgEvaluationRepository(pool)
	rejectionRepo := repository.NewPgRejectionRepository(pool)
	feedbackRepo := repository.NewPgFeedbackRepository(pool)

	oracle := newOracle(cfg, logger)
	toneSvc := service.NewToneService(oracle, signatureRepo, evaluationRepo, cfg.OracleTimeout, logger)
	insightsSvc := service.NewInsightsService(evaluationRepo, feedbackRepo, signatureRepo, rejectionRepo, logger)

	proposals := service.NewMemoryProposalStore()
	pending := service.NewMemoryPendingRejectionStore()
	if redisClient != nil {
		proposals = service.NewRedisProposalStore(redisClient)
		pending = service.NewRedisPendingRejectionStore(redisClient)
	}
	if cfg.ApprovalSecret == "" {
		logger.Warn("approval signing secret not configured, correction proposals cannot be issued")
	}
	approvalSvc := service.NewApprovalService(
		service.NewProposalTokenService(cfg.ApprovalSecret, cfg.ProposalTTL),
		proposals,
		pending,
		toneSvc,
		rejectionRepo,
		cfg.RejectionCommentTTL,
		logger,
	)

	slackClient := slack.NewClient(cfg.NotifierTimeout, logger)
	var notifier service.ApprovalNotifier = slack.NewDisabledNotifier("slack webhook not configured")
	if cfg.SlackWebhookURL != "" {
		notifier = slack.NewWebhookNotifier(slackClient, cfg.SlackWebhookURL, slack.NotifierOptions{
			MentionUserIDs: cfg.SlackNotifyUserIDs,
			MentionChannel: cfg.SlackNotifyChannel,
		}, logger)
	}
	if cfg.SlackSigningSecret == "" {
		logger.Warn("slack signing secret not configured, slack callbacks are not verified")
	}

	var retuneHandler *apihttp.RetuneHandler
	if cfg.RetuneEnabled {
		scheduler := service.NewRetuneScheduler(
			signatureRepo,
			service.NewDriftDetector(evaluationRepo),
			toneSvc,
			approvalSvc,
			notifier,
			service.RetuneSchedulerOptions{
				Schedule:        cfg.RetuneSchedule,
				Workers:         cfg.RetuneWorkers,
				NotifierTimeout: cfg.NotifierTimeout,
			},
			logger,
		)
		if err := scheduler.Start(ctx); err != nil {
			logger.Fatal("retune scheduler", zap.Error(err))
		}
		defer scheduler.Stop()
		retuneHandler = apihttp.NewRetuneHandler(logger, scheduler)
	}

	router := apihttp.NewRouter(
		logger,
		apihttp.NewToneHandler(logger, toneSvc),
		apihttp.NewEvaluationHandler(logger, toneSvc, insightsSvc, approvalSvc),
		apihttp.NewSlackHandler(logger, approvalSvc, slackClient, cfg.SlackSigningSecret),
		retuneHandler,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

// newOracle elige el proveedor LLM segun LLM_PROVIDER.
func newOracle(cfg *config.Config, logger *zap.Logger) llm.LLMClient {
	if cfg.LLMProvider == config.LLMProviderAnthropic {
		apiKey := cfg.AnthropicAPIKey
		if apiKey == "" {
			apiKey = cfg.LLMAPIKey
		}
		logger.Info("using anthropic oracle", zap.String("model", cfg.AnthropicModel))
		return llm.NewAnthropicClient(apiKey, cfg.AnthropicModel, cfg.LLMTemperature)
	}
	logger.Info("using openai-compatible oracle", zap.String("model", cfg.LLMModel))
	return llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTemperature, cfg.OracleTimeout, zap.NewStdLog(logger))
}
