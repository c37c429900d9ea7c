package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	LLMProviderOpenAI    = "openai"
	LLMProviderAnthropic = "anthropic"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	LLMProvider     string        `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMAPIKey       string        `env:"LLM_API_KEY"`
	LLMBaseURL      string        `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel        string        `env:"LLM_MODEL" envDefault:"gpt-4o"`
	LLMTemperature  float64       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string        `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-haiku-20241022"`
	OracleTimeout   time.Duration `env:"ORACLE_TIMEOUT" envDefault:"30s"`

	RedisAddr         string        `env:"REDIS_ADDR"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	SignatureCacheTTL time.Duration `env:"SIGNATURE_CACHE_TTL" envDefault:"1h"`

	SlackWebhookURL     string        `env:"SLACK_WEBHOOK_URL"`
	SlackSigningSecret  string        `env:"SLACK_SIGNING_SECRET"`
	SlackNotifyUserIDs  []string      `env:"SLACK_NOTIFY_USER_IDS" envSeparator:","`
	SlackNotifyChannel  string        `env:"SLACK_NOTIFY_CHANNEL"`
	NotifierTimeout     time.Duration `env:"NOTIFIER_TIMEOUT" envDefault:"30s"`
	ApprovalSecret      string        `env:"APPROVAL_SIGNING_SECRET"`
	ProposalTTL         time.Duration `env:"PROPOSAL_TTL" envDefault:"72h"`
	RejectionCommentTTL time.Duration `env:"REJECTION_COMMENT_TTL" envDefault:"30m"`

	RetuneEnabled  bool   `env:"RETUNE_ENABLED" envDefault:"true"`
	RetuneSchedule string `env:"RETUNE_SCHEDULE" envDefault:"@every 60m"`
	RetuneWorkers  int    `env:"RETUNE_WORKERS" envDefault:"4"`
}

// ErrMissingAPIKey indica que el proveedor LLM elegido no tiene credenciales.
var ErrMissingAPIKey = errors.New("llm api key not configured")

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate exige un proveedor conocido y la clave que ese proveedor necesita.
// Para anthropic vale ANTHROPIC_API_KEY o, en su defecto, LLM_API_KEY.
func (c *Config) validate() error {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	switch c.LLMProvider {
	case LLMProviderOpenAI:
		if strings.TrimSpace(c.LLMAPIKey) == "" {
			return fmt.Errorf("%w: LLM_API_KEY is required for provider %s", ErrMissingAPIKey, c.LLMProvider)
		}
	case LLMProviderAnthropic:
		if strings.TrimSpace(c.AnthropicAPIKey) == "" && strings.TrimSpace(c.LLMAPIKey) == "" {
			return fmt.Errorf("%w: ANTHROPIC_API_KEY or LLM_API_KEY is required for provider %s", ErrMissingAPIKey, c.LLMProvider)
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (expected %s or %s)", c.LLMProvider, LLMProviderOpenAI, LLMProviderAnthropic)
	}
	return nil
}
