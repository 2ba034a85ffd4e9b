package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Database
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Redis (profile cache, optional)
	RedisURL        string        `env:"REDIS_URL"`
	ProfileCacheTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"5m"`

	// Frontend
	FrontendURL string `env:"FRONTEND_URL" envDefault:"*"`

	// Completion provider
	LLM LLMConfig
}

// LLMConfig holds everything the coaching gateway needs to reach the
// completion provider. The three secrets are not required at startup; a
// missing secret fails each chat request instead.
type LLMConfig struct {
	APIKey   string `env:"YAGPT_API_KEY"`
	FolderID string `env:"YAGPT_FOLDER_ID"`
	ModelURI string `env:"YAGPT_MODEL_URI"`

	CompletionURL string        `env:"LLM_COMPLETION_URL" envDefault:"https://llm.api.cloud.yandex.net/foundationModels/v1/completion"`
	Timeout       time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	MaxRetries    int           `env:"LLM_MAX_RETRIES" envDefault:"0"`
	RetryWaitMin  time.Duration `env:"LLM_RETRY_WAIT_MIN" envDefault:"1s"`
	RetryWaitMax  time.Duration `env:"LLM_RETRY_WAIT_MAX" envDefault:"8s"`
	HistoryWindow int           `env:"LLM_HISTORY_WINDOW" envDefault:"0"`
}

// MissingSecrets lists the names of the provider secrets that are not set.
func (c *LLMConfig) MissingSecrets() []string {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "YAGPT_API_KEY")
	}
	if c.FolderID == "" {
		missing = append(missing, "YAGPT_FOLDER_ID")
	}
	if c.ModelURI == "" {
		missing = append(missing, "YAGPT_MODEL_URI")
	}
	return missing
}

// serverWriteMargin is the time a response gets on top of the provider deadline.
const serverWriteMargin = 15 * time.Second

// WriteTimeout is the http.Server write timeout. It outlasts the provider
// deadline, and is zero (unbounded) when LLM_TIMEOUT is zero.
func (c *Config) WriteTimeout() time.Duration {
	if c.LLM.Timeout <= 0 {
		return 0
	}
	return c.LLM.Timeout + serverWriteMargin
}

// Load reads a .env file if one exists and parses the process environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}

	if cfg.LLM.Timeout < 0 {
		cfg.LLM.Timeout = 0
	}
	if cfg.LLM.MaxRetries < 0 {
		cfg.LLM.MaxRetries = 0
	}
	if cfg.LLM.HistoryWindow < 0 {
		cfg.LLM.HistoryWindow = 0
	}
	if cfg.LLM.RetryWaitMax < cfg.LLM.RetryWaitMin {
		cfg.LLM.RetryWaitMax = cfg.LLM.RetryWaitMin
	}

	return cfg, nil
}
