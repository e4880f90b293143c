package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v10"
)

var (
	globalConfig *Config
	globalMu     sync.RWMutex
)

// Config holds all environment backed configuration for the API.
type Config struct {
	// HTTP Server
	HTTPPort  int    `env:"HTTP_PORT" envDefault:"8080"`
	PprofAddr string `env:"PPROF_ADDR" envDefault:"0.0.0.0:6060"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// PostgreSQL
	DatabaseURL          string `env:"DATABASE_URL"`
	DBPostgresqlWriteDSN string `env:"DB_POSTGRESQL_WRITE_DSN"`
	DBPostgresqlRead1DSN string `env:"DB_POSTGRESQL_READ1_DSN"`
	DBMaxIdleConns       int    `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBMaxOpenConns       int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`

	// Gemini
	GeminiBaseURL    string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiModel      string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	GeminiTimeout    time.Duration `env:"GEMINI_TIMEOUT" envDefault:"120s"`
	GeminiMaxRetries int           `env:"GEMINI_MAX_RETRIES" envDefault:"0"`

	// Uploads
	UploadDir            string                `env:"UPLOAD_DIR" envDefault:"./storage/chat_files"`
	MaxUploadSizeKB      int64                 `env:"MAX_UPLOAD_SIZE_KB" envDefault:"10240"`
	GenerationConfigFile string                `env:"GENERATION_CONFIG_FILE"`
	Generation           *GenerationFileConfig `env:"-"`

	// Async generation jobs
	JobWorkers      int           `env:"JOB_WORKERS" envDefault:"4"`
	JobQueueSize    int           `env:"JOB_QUEUE_SIZE" envDefault:"256"`
	JobRetention    time.Duration `env:"JOB_RETENTION" envDefault:"168h"`
	JobStaleAfter   time.Duration `env:"JOB_STALE_AFTER" envDefault:"15m"`
	JobSweepEnabled bool          `env:"JOB_SWEEP_ENABLED" envDefault:"true"`

	// Bearer auth (optional, gateway headers are always accepted)
	JWKSURL             string        `env:"JWKS_URL"`
	Issuer              string        `env:"ISSUER" envDefault:"promptforge"`
	Audience            string        `env:"AUDIENCE"`
	RefreshJWKSInterval time.Duration `env:"JWKS_REFRESH_INTERVAL" envDefault:"5m"`
	AuthClockSkew       time.Duration `env:"AUTH_CLOCK_SKEW" envDefault:"60s"`

	// Observability / Logging
	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders      string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ServiceName      string `env:"SERVICE_NAME" envDefault:"promptforge-api"`
	ServiceNamespace string `env:"SERVICE_NAMESPACE" envDefault:"promptforge"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"console"`

	// Features
	AutoMigrate   bool `env:"AUTO_MIGRATE" envDefault:"true"`
	EnableSwagger bool `env:"ENABLE_SWAGGER" envDefault:"true"`

	// Internal
	EnvReloadedAt time.Time
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	generation, err := LoadGenerationFileConfig(cfg.GenerationConfigFile)
	if err != nil {
		return nil, fmt.Errorf("load generation config: %w", err)
	}
	cfg.Generation = generation
	cfg.EnvReloadedAt = time.Now()

	globalMu.Lock()
	globalConfig = cfg
	globalMu.Unlock()

	return cfg, nil
}

func (c *Config) normalize() error {
	c.GeminiBaseURL = strings.TrimRight(strings.TrimSpace(c.GeminiBaseURL), "/")
	if _, err := url.ParseRequestURI(c.GeminiBaseURL); err != nil {
		return fmt.Errorf("invalid GEMINI_BASE_URL: %w", err)
	}
	c.GeminiModel = strings.TrimSpace(c.GeminiModel)
	if c.GeminiModel == "" {
		return errors.New("GEMINI_MODEL must not be empty")
	}
	if c.GeminiMaxRetries < 0 {
		return errors.New("GEMINI_MAX_RETRIES must not be negative")
	}
	if c.MaxUploadSizeKB <= 0 {
		return errors.New("MAX_UPLOAD_SIZE_KB must be positive")
	}
	if c.JobWorkers <= 0 {
		c.JobWorkers = 1
	}
	if c.JobQueueSize <= 0 {
		c.JobQueueSize = 1
	}
	if c.JWKSURL != "" {
		if _, err := url.ParseRequestURI(c.JWKSURL); err != nil {
			return fmt.Errorf("invalid JWKS_URL: %w", err)
		}
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
	return nil
}

// GetDatabaseWriteDSN prefers the dedicated write DSN over DATABASE_URL.
func (c *Config) GetDatabaseWriteDSN() string {
	if c.DBPostgresqlWriteDSN != "" {
		return c.DBPostgresqlWriteDSN
	}
	return c.DatabaseURL
}

// MaxUploadBytes is the per-file upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadSizeKB * 1024
}

// GetGlobal returns the most recently loaded config.
// Deprecated: Use dependency injection with Load() instead.
func GetGlobal() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

var Version = "dev"

func IsDev() bool {
	return strings.HasPrefix(Version, "dev")
}
