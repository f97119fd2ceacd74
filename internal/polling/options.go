package polling

import (
	"fmt"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
)

// Default polling options.
const (
	DefaultMaxAttempts       = 20
	DefaultBaseDelay         = 3 * time.Second
	DefaultMaxDelay          = 30 * time.Second
	DefaultTimeout           = 10 * time.Minute
	DefaultExponentialFactor = 1.4
)

// Options controls one poll run. Zero-valued fields take their default, so
// callers only set what they want to override.
type Options struct {
	// MaxAttempts caps status calls, independently of Timeout.
	MaxAttempts int `validate:"min=1"`
	// BaseDelay is the first inter-attempt delay under normal backoff and the
	// step of the linear backoff used after errors.
	BaseDelay time.Duration `validate:"gt=0"`
	// MaxDelay caps both backoffs. It may be below BaseDelay, in which case
	// every delay is MaxDelay.
	MaxDelay time.Duration `validate:"gt=0"`
	// Timeout caps the wall-clock time of the run, independently of MaxAttempts.
	Timeout time.Duration `validate:"gt=0"`
	// ExponentialFactor is the growth rate of the normal backoff.
	ExponentialFactor float64 `validate:"gte=1"`
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:       DefaultMaxAttempts,
		BaseDelay:         DefaultBaseDelay,
		MaxDelay:          DefaultMaxDelay,
		Timeout:           DefaultTimeout,
		ExponentialFactor: DefaultExponentialFactor,
	}
}

// WithDefaults fills zero-valued fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.MaxAttempts == 0 {
		o.MaxAttempts = d.MaxAttempts
	}
	if o.BaseDelay == 0 {
		o.BaseDelay = d.BaseDelay
	}
	if o.MaxDelay == 0 {
		o.MaxDelay = d.MaxDelay
	}
	if o.Timeout == 0 {
		o.Timeout = d.Timeout
	}
	if o.ExponentialFactor == 0 {
		o.ExponentialFactor = d.ExponentialFactor
	}
	return o
}

var validate = validatorv10.New()

// Validate checks the options after defaults are applied.
func (o Options) Validate() error {
	if err := validate.Struct(o.WithDefaults()); err != nil {
		return fmt.Errorf("invalid polling options: %w", err)
	}
	return nil
}
