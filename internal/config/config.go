// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-payout-settlement/internal/metrics"
	"github.com/imrishuroy/go-payout-settlement/internal/polling"
)

// Config is shared by the api, the worker and settlectl. Table and queue
// names are only required by the binaries that use them; see RequireAWS.
type Config struct {
	OrdersTable       string
	IdempotencyTable  string
	PollAttemptsTable string
	SettlementsTable  string
	MonitorQueueURL   string

	StatusAPIKey     string
	StatusAPIBaseURL string        `validate:"required,url"`
	StatusAPITimeout time.Duration `validate:"gt=0"`

	RedisAddr        string
	MetricsNamespace string

	MonitorDeadline time.Duration `validate:"gt=0"`
	RecorderBuffer  int           `validate:"gte=0"`

	LogLevel  string `validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `validate:"omitempty,oneof=json console"`

	Polling polling.Options
}

var validate = validatorv10.New()

// Load reads the environment, applies defaults and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		OrdersTable:       os.Getenv("ORDERS_TABLE"),
		IdempotencyTable:  os.Getenv("IDEMPOTENCY_TABLE"),
		PollAttemptsTable: os.Getenv("POLL_ATTEMPTS_TABLE"),
		SettlementsTable:  os.Getenv("SETTLEMENTS_TABLE"),
		MonitorQueueURL:   os.Getenv("MONITOR_QUEUE_URL"),
		StatusAPIBaseURL:  os.Getenv("STATUS_API_BASE_URL"),
		StatusAPIKey:      os.Getenv("STATUS_API_KEY"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		MetricsNamespace:  getenv("METRICS_NAMESPACE", metrics.DefaultNamespace),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFormat:         getenv("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.StatusAPITimeout, err = durationEnv("STATUS_API_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.MonitorDeadline, err = durationEnv("MONITOR_DEADLINE", polling.DefaultMonitorDeadline); err != nil {
		return nil, err
	}
	if cfg.RecorderBuffer, err = intEnv("RECORDER_BUFFER", 0); err != nil {
		return nil, err
	}

	p := polling.Options{}
	if p.MaxAttempts, err = intEnv("POLL_MAX_ATTEMPTS", 0); err != nil {
		return nil, err
	}
	if p.BaseDelay, err = durationEnv("POLL_BASE_DELAY", 0); err != nil {
		return nil, err
	}
	if p.MaxDelay, err = durationEnv("POLL_MAX_DELAY", 0); err != nil {
		return nil, err
	}
	if p.Timeout, err = durationEnv("POLL_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if p.ExponentialFactor, err = floatEnv("POLL_EXPONENTIAL_FACTOR", 0); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cfg.Polling = p.WithDefaults()

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// RequireAWS reports the first empty name among the given env-backed fields.
func (c *Config) RequireAWS(names ...string) error {
	values := map[string]string{
		"ORDERS_TABLE":        c.OrdersTable,
		"IDEMPOTENCY_TABLE":   c.IdempotencyTable,
		"POLL_ATTEMPTS_TABLE": c.PollAttemptsTable,
		"SETTLEMENTS_TABLE":   c.SettlementsTable,
		"MONITOR_QUEUE_URL":   c.MonitorQueueURL,
	}
	for _, n := range names {
		v, ok := values[n]
		if !ok {
			return fmt.Errorf("unknown setting %s", n)
		}
		if v == "" {
			return fmt.Errorf("%s must be set", n)
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}
