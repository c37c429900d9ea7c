package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tone-drift/internal/config"
	"tone-drift/internal/db"
	"tone-drift/internal/domain"
	"tone-drift/internal/llm"
	"tone-drift/internal/repository"
	"tone-drift/internal/service"
	"tone-drift/internal/slack"
)

// stdoutNotifier imprime las propuestas en vez de publicarlas en Slack (-notify=false).
type stdoutNotifier struct{}

func (stdoutNotifier) ProposeCorrection(_ context.Context, p domain.CorrectionProposal) error {
	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("proposal for %s (%d drifted):\n%s\n", p.BrandID, p.DriftedCount, out)
	return nil
}

func main() {
	notify := flag.Bool("notify", true, "publish proposals to the Slack webhook")
	workers := flag.Int("workers", 0, "override RETUNE_WORKERS")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall sweep timeout")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *workers > 0 {
		cfg.RetuneWorkers = *workers
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer pool.Close()

	proposals := service.NewMemoryProposalStore()
	if cfg.RedisAddr != "" {
		rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rc.Close()
		proposals = service.NewRedisProposalStore(rc)
	} else if *notify {
		log.Printf("warning: REDIS_ADDR not set, proposals issued by this run cannot be approved from the api process")
	}

	signatureRepo := repository.NewPgSignatureRepository(pool)
	evaluationRepo := repository.NewPgEvaluationRepository(pool)

	var oracle llm.LLMClient
	if cfg.LLMProvider == config.LLMProviderAnthropic {
		apiKey := cfg.AnthropicAPIKey
		if apiKey == "" {
			apiKey = cfg.LLMAPIKey
		}
		oracle = llm.NewAnthropicClient(apiKey, cfg.AnthropicModel, cfg.LLMTemperature)
	} else {
		oracle = llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTemperature, cfg.OracleTimeout, zap.NewStdLog(logger))
	}
	toneSvc := service.NewToneService(oracle, signatureRepo, evaluationRepo, cfg.OracleTimeout, logger)
	approvalSvc := service.NewApprovalService(
		service.NewProposalTokenService(cfg.ApprovalSecret, cfg.ProposalTTL),
		proposals,
		nil,
		toneSvc,
		repository.NewPgRejectionRepository(pool),
		cfg.RejectionCommentTTL,
		logger,
	)

	var notifier service.ApprovalNotifier = stdoutNotifier{}
	if *notify {
		if cfg.SlackWebhookURL == "" {
			log.Fatalf("SLACK_WEBHOOK_URL is required with -notify (use -notify=false to print proposals)")
		}
		notifier = slack.NewWebhookNotifier(slack.NewClient(cfg.NotifierTimeout, logger), cfg.SlackWebhookURL, slack.NotifierOptions{
			MentionUserIDs: cfg.SlackNotifyUserIDs,
			MentionChannel: cfg.SlackNotifyChannel,
		}, logger)
	}

	scheduler := service.NewRetuneScheduler(
		signatureRepo,
		service.NewDriftDetector(evaluationRepo),
		toneSvc,
		approvalSvc,
		notifier,
		service.RetuneSchedulerOptions{Workers: cfg.RetuneWorkers, NotifierTimeout: cfg.NotifierTimeout},
		logger,
	)

	report, err := scheduler.Sweep(ctx)
	if err != nil {
		log.Fatalf("sweep: %v", err)
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))
	fmt.Printf("\nResumen: %d marcas, %d con drift, %d propuestas, %d fallidas (%s)\n",
		report.Brands, len(report.Drifted), len(report.Proposed), len(report.Failed), report.Duration.Round(time.Millisecond))
	if len(report.Failed) > 0 {
		os.Exit(1)
	}
}
