package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// Config holds all configuration for the storefront.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// Remote catalog API
	APIBaseURL        string        `env:"API_BASE_URL" envDefault:"http://127.0.0.1:8001/api/"`
	APIAuthScheme     string        `env:"API_AUTH_SCHEME" envDefault:"Token"`
	APITimeout        time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	APIMaxRetries     int           `env:"API_MAX_RETRIES" envDefault:"2"`
	BreakerTimeout    time.Duration `env:"API_BREAKER_TIMEOUT" envDefault:"30s"`
	BreakerMinRequest uint32        `env:"API_BREAKER_MIN_REQUESTS" envDefault:"5"`
	BreakerFailRatio  float64       `env:"API_BREAKER_FAILURE_RATIO" envDefault:"0.5"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Sessions
	SessionSecret          string        `env:"SESSION_SECRET,required"`
	SessionTTL             time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	SessionIdleTimeout     time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	SessionResolveTimeout  time.Duration `env:"SESSION_RESOLVE_TIMEOUT" envDefault:"5s"`
	WishlistRequestTimeout time.Duration `env:"WISHLIST_REQUEST_TIMEOUT" envDefault:"10s"`
	RedirectTo             string        `env:"REDIRECT_TO" envDefault:"/login"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 bytes")
	}
	if c.SessionTTL <= 0 || c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("SESSION_TTL and SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.WishlistRequestTimeout <= 0 {
		return fmt.Errorf("WISHLIST_REQUEST_TIMEOUT must be positive, got %s", c.WishlistRequestTimeout)
	}
	if c.APIMaxRetries < 0 {
		return fmt.Errorf("API_MAX_RETRIES must not be negative, got %d", c.APIMaxRetries)
	}
	if c.BreakerFailRatio <= 0 || c.BreakerFailRatio > 1.0 {
		return fmt.Errorf("API_BREAKER_FAILURE_RATIO must be in (0.0, 1.0], got %f", c.BreakerFailRatio)
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}
