package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgconfig "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/config"
)

// Config holds all configuration for the POS service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"POS_HTTP_PORT" envDefault:"8090"`

	// Backend services
	CatalogServiceURL   string `env:"CATALOG_SERVICE_URL" envDefault:"http://localhost:8081"`
	InventoryServiceURL string `env:"INVENTORY_SERVICE_URL" envDefault:"http://localhost:8082"`
	SalesServiceURL     string `env:"SALES_SERVICE_URL" envDefault:"http://localhost:8083"`
	ReportingServiceURL string `env:"REPORTING_SERVICE_URL" envDefault:"http://localhost:8084"`

	// Downstream timeouts (seconds). Sales submissions are never retried.
	DownstreamTimeout int `env:"DOWNSTREAM_TIMEOUT_SECONDS" envDefault:"10"`
	DownstreamRetries int `env:"DOWNSTREAM_MAX_RETRIES" envDefault:"2"`
	SalesTimeout      int `env:"SALES_TIMEOUT_SECONDS" envDefault:"30"`

	// Circuit breaker settings for downstream service calls
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Point of sale
	TaxRate          decimal.Decimal `env:"POS_TAX_RATE" envDefault:"0.12"`
	CashierName      string          `env:"POS_CASHIER_NAME" envDefault:"Cajero"`
	SessionIdleTTL   int             `env:"POS_SESSION_IDLE_TTL_MINUTES" envDefault:"120"`
	RequireAuthToken bool            `env:"POS_REQUIRE_AUTH" envDefault:"false"`

	// Redis dashboard cache. An empty address disables the cache.
	RedisHost         string `env:"REDIS_HOST" envDefault:""`
	RedisPort         int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass         string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB           int    `env:"REDIS_DB" envDefault:"0"`
	DashboardCacheTTL int    `env:"DASHBOARD_CACHE_TTL_SECONDS" envDefault:"60"`

	// Kafka. No brokers disables sale events.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Rate limiting per client IP
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Slow Redis command logging
	SlowCommandThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"100"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load pos config: %w", err)
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
	if c.TaxRate.IsNegative() {
		return fmt.Errorf("POS_TAX_RATE must not be negative, got %s", c.TaxRate)
	}
	if strings.TrimSpace(c.CashierName) == "" {
		return fmt.Errorf("POS_CASHIER_NAME is required")
	}
	if c.DownstreamTimeout <= 0 || c.SalesTimeout <= 0 {
		return fmt.Errorf("downstream timeouts must be positive")
	}
	if c.DownstreamRetries < 0 {
		return fmt.Errorf("DOWNSTREAM_MAX_RETRIES must not be negative, got %d", c.DownstreamRetries)
	}
	if c.SessionIdleTTL < 0 {
		return fmt.Errorf("POS_SESSION_IDLE_TTL_MINUTES must not be negative, got %d", c.SessionIdleTTL)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	for name, rawURL := range map[string]string{
		"CATALOG_SERVICE_URL":   c.CatalogServiceURL,
		"INVENTORY_SERVICE_URL": c.InventoryServiceURL,
		"SALES_SERVICE_URL":     c.SalesServiceURL,
		"REPORTING_SERVICE_URL": c.ReportingServiceURL,
	} {
		if rawURL == "" {
			return fmt.Errorf("%s is required", name)
		}
		if _, err := url.ParseRequestURI(rawURL); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, rawURL, err)
		}
	}
	return nil
}

// RedisEnabled reports whether the dashboard cache is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// KafkaEnabled reports whether sale events are published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// SessionTTL returns the idle lifetime of a checkout session.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionIdleTTL) * time.Minute
}
