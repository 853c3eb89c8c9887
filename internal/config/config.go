package config

import (
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Telegram  TelegramConfig
	AI        AIConfig
	RateLimit RateLimitConfig
	Document  DocumentConfig
	Ops       OpsConfig
}

type TelegramConfig struct {
	Token       string        `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	PollTimeout time.Duration `envconfig:"TELEGRAM_POLL_TIMEOUT" default:"30s"`
	Debug       bool          `envconfig:"TELEGRAM_DEBUG" default:"false"`
}

type AIConfig struct {
	Provider    string        `envconfig:"AI_PROVIDER" default:"gemini"`
	APIKey      string        `envconfig:"GEMINI_API_KEY" required:"true"`
	Host        string        `envconfig:"GEMINI_HOST" default:"https://generativelanguage.googleapis.com"`
	Model       string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-pro"`
	Temperature float64       `envconfig:"GEMINI_TEMPERATURE" default:"0.3"`
	MaxTokens   int64         `envconfig:"GEMINI_MAX_TOKENS" default:"2048"`
	Timeout     time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`

	// OpenAI-compatible provider settings, used when AI_PROVIDER=openai.
	OpenAIEndpoint string `envconfig:"OPENAI_ENDPOINT" default:"https://api.openai.com/v1"`
	OpenAIModel    string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
}

type RateLimitConfig struct {
	TextCapacity int           `envconfig:"MAX_QUERIES_PER_HOUR" default:"10"`
	TextWindow   time.Duration `envconfig:"TEXT_QUERY_WINDOW" default:"1h"`
	DocCapacity  int           `envconfig:"MAX_DOCUMENTS_PER_DAY" default:"3"`
	DocWindow    time.Duration `envconfig:"DOCUMENT_WINDOW" default:"24h"`
	CleanupEvery time.Duration `envconfig:"RATELIMIT_CLEANUP_INTERVAL" default:"1h"`
}

type DocumentConfig struct {
	MaxFileSize int64 `envconfig:"MAX_FILE_SIZE_BYTES" default:"10485760"`
	MaxTextLen  int   `envconfig:"MAX_DOCUMENT_TEXT_CHARS" default:"8000"`
}

type OpsConfig struct {
	Host         string        `envconfig:"OPS_HOST" default:"0.0.0.0"`
	Port         string        `envconfig:"OPS_PORT" default:"8000"`
	ReadTimeout  time.Duration `envconfig:"OPS_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"OPS_WRITE_TIMEOUT" default:"30s"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("configuration loaded successfully")
	return &cfg, nil
}
