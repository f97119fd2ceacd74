package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-payout-settlement/internal/logging"
	"github.com/imrishuroy/go-payout-settlement/internal/polling"
	"github.com/imrishuroy/go-payout-settlement/internal/statusclient"
)

var globalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "base-url",
		Usage:    "settlement provider API base url",
		EnvVars:  []string{"STATUS_API_BASE_URL"},
		Required: true,
	},
	&cli.StringFlag{
		Name:    "api-key",
		Usage:   "settlement provider API key",
		EnvVars: []string{"STATUS_API_KEY"},
	},
	&cli.DurationFlag{
		Name:    "request-timeout",
		Usage:   "timeout of a single status request",
		EnvVars: []string{"STATUS_API_TIMEOUT"},
		Value:   15 * time.Second,
	},
	&cli.StringFlag{
		Name:    "log-level",
		EnvVars: []string{"LOG_LEVEL"},
		Value:   "warn",
	},
	&cli.StringFlag{
		Name:    "log-format",
		EnvVars: []string{"LOG_FORMAT"},
		Value:   logging.FormatConsole,
	},
}

var pollingFlags = []cli.Flag{
	&cli.IntFlag{
		Name:    "max-attempts",
		EnvVars: []string{"POLL_MAX_ATTEMPTS"},
		Value:   polling.DefaultMaxAttempts,
	},
	&cli.DurationFlag{
		Name:    "base-delay",
		EnvVars: []string{"POLL_BASE_DELAY"},
		Value:   polling.DefaultBaseDelay,
	},
	&cli.DurationFlag{
		Name:    "max-delay",
		EnvVars: []string{"POLL_MAX_DELAY"},
		Value:   polling.DefaultMaxDelay,
	},
	&cli.DurationFlag{
		Name:    "poll-timeout",
		EnvVars: []string{"POLL_TIMEOUT"},
		Value:   polling.DefaultTimeout,
	},
	&cli.Float64Flag{
		Name:    "factor",
		Usage:   "exponential backoff factor",
		EnvVars: []string{"POLL_EXPONENTIAL_FACTOR"},
		Value:   polling.DefaultExponentialFactor,
	},
}

func pollingOptions(c *cli.Context) (polling.Options, error) {
	opts := polling.Options{
		MaxAttempts:       c.Int("max-attempts"),
		BaseDelay:         c.Duration("base-delay"),
		MaxDelay:          c.Duration("max-delay"),
		Timeout:           c.Duration("poll-timeout"),
		ExponentialFactor: c.Float64("factor"),
	}
	if err := opts.Validate(); err != nil {
		return opts, cli.Exit(err.Error(), 2)
	}
	return opts, nil
}

func orderIDArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit("expected exactly one ORDER_ID argument", 2)
	}
	return c.Args().First(), nil
}

// statusClientFactory is swapped in tests.
var statusClientFactory = func(c *cli.Context) polling.StatusClient {
	return statusclient.New(c.String("base-url"), c.String("api-key"), c.Duration("request-timeout"))
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	return logging.New(c.String("log-level"), c.String("log-format"))
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// exitFor maps a poll result onto the process exit code.
func exitFor(res polling.Result) error {
	switch {
	case res.Success:
		return nil
	case res.Completed:
		return cli.Exit("", 1)
	default:
		return cli.Exit("", 3)
	}
}
