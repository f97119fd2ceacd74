package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-payout-settlement/internal/polling"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STATUS_API_BASE_URL", "https://api.example.com/v1")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 15*time.Second, cfg.StatusAPITimeout)
	require.Equal(t, polling.DefaultMonitorDeadline, cfg.MonitorDeadline)
	require.Equal(t, "PayoutSettlement", cfg.MetricsNamespace)
	require.Equal(t, polling.DefaultOptions(), cfg.Polling)
}

func TestLoad_PollingOverrides(t *testing.T) {
	t.Setenv("STATUS_API_BASE_URL", "https://api.example.com/v1")
	t.Setenv("POLL_MAX_ATTEMPTS", "5")
	t.Setenv("POLL_BASE_DELAY", "1s")
	t.Setenv("POLL_EXPONENTIAL_FACTOR", "2")
	t.Setenv("MONITOR_DEADLINE", "2m")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Polling.MaxAttempts)
	require.Equal(t, time.Second, cfg.Polling.BaseDelay)
	require.Equal(t, 2.0, cfg.Polling.ExponentialFactor)
	require.Equal(t, polling.DefaultMaxDelay, cfg.Polling.MaxDelay)
	require.Equal(t, 2*time.Minute, cfg.MonitorDeadline)
}

func TestLoad_BaseDelayAboveMaxDelay(t *testing.T) {
	t.Setenv("STATUS_API_BASE_URL", "https://api.example.com/v1")
	t.Setenv("POLL_BASE_DELAY", "40s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 40*time.Second, cfg.Polling.BaseDelay)
	require.Equal(t, polling.DefaultMaxDelay, cfg.Polling.MaxDelay)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing base url": {},
		"bad base url":     {"STATUS_API_BASE_URL": "not a url"},
		"bad duration":     {"STATUS_API_BASE_URL": "https://x.io", "POLL_TIMEOUT": "ten"},
		"bad log level":    {"STATUS_API_BASE_URL": "https://x.io", "LOG_LEVEL": "loud"},
		"factor below one": {"STATUS_API_BASE_URL": "https://x.io", "POLL_EXPONENTIAL_FACTOR": "0.5"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("STATUS_API_BASE_URL", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestRequireAWS(t *testing.T) {
	cfg := &Config{OrdersTable: "orders"}
	require.NoError(t, cfg.RequireAWS("ORDERS_TABLE"))
	require.EqualError(t, cfg.RequireAWS("ORDERS_TABLE", "MONITOR_QUEUE_URL"), "MONITOR_QUEUE_URL must be set")
	require.Error(t, cfg.RequireAWS("NOPE"))
}
