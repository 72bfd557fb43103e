package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/database"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	ScoringRandom  = "random"
	ScoringOverlap = "overlap"

	PriceSourcesStatic = "static"
	PriceSourcesScrape = "scrape"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL       string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns        int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBConnectAttempts int    `envconfig:"DB_CONNECT_ATTEMPTS" default:"5"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	// Answer searches from the keyword extractor when the LLM call fails
	ExtractionFallback bool `envconfig:"EXTRACTION_FALLBACK" default:"false"`

	RedisURL      string        `envconfig:"REDIS_URL"`
	PriceCacheTTL time.Duration `envconfig:"PRICE_CACHE_TTL" default:"1h"`

	ScrapeTimeout time.Duration `envconfig:"SCRAPE_TIMEOUT" default:"10s"`
	Scoring       string        `envconfig:"SCORING" default:"random"`
	PriceSources  string        `envconfig:"PRICE_SOURCES" default:"static"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	RateLimitPerMin    int      `envconfig:"RATE_LIMIT_PER_MIN" default:"60"`

	// Background refresh of stored prices; 0 disables the worker
	PriceRefreshInterval time.Duration `envconfig:"PRICE_REFRESH_INTERVAL" default:"0"`
	PriceMaxAge          time.Duration `envconfig:"PRICE_MAX_AGE" default:"24h"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"dupefinder-pages"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DUPE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	cfg.Scoring = strings.ToLower(strings.TrimSpace(cfg.Scoring))
	if cfg.Scoring != ScoringRandom && cfg.Scoring != ScoringOverlap {
		return nil, fmt.Errorf("invalid DUPE_SCORING %q: expected random or overlap", cfg.Scoring)
	}
	cfg.PriceSources = strings.ToLower(strings.TrimSpace(cfg.PriceSources))
	if cfg.PriceSources != PriceSourcesStatic && cfg.PriceSources != PriceSourcesScrape {
		return nil, fmt.Errorf("invalid DUPE_PRICE_SOURCES %q: expected static or scrape", cfg.PriceSources)
	}

	return &cfg, nil
}

// Database returns the pool settings for the given application name
func (c *Config) Database(appName string) database.Config {
	return database.Config{
		URL:             c.DatabaseURL,
		MaxConns:        c.DBMaxConns,
		ApplicationName: appName,
		ConnectAttempts: c.DBConnectAttempts,
	}
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

// RequireOpenAI fails when the LLM key is missing. Only serve needs it.
func (c *Config) RequireOpenAI() error {
	if !c.HasOpenAI() {
		return fmt.Errorf("DUPE_OPENAI_API_KEY is required")
	}
	return nil
}

// TracesSampleRate samples everything in development and 10% elsewhere.
func (c *Config) TracesSampleRate() float64 {
	if c.Environment == "development" {
		return 1.0
	}
	return 0.1
}
