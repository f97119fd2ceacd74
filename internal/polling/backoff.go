package polling

import (
	"context"
	"math"
	"time"
)

// ExponentialDelay is the delay after the given number of non-terminal
// responses: min(BaseDelay * ExponentialFactor^attempts, MaxDelay).
func ExponentialDelay(o Options, attempts int) time.Duration {
	d := float64(o.BaseDelay) * math.Pow(o.ExponentialFactor, float64(attempts))
	return capDelay(d, o.MaxDelay)
}

// LinearDelay is the delay after the given number of attempts when the last
// one failed with an error: min(BaseDelay * attempts, MaxDelay).
func LinearDelay(o Options, attempts int) time.Duration {
	return capDelay(float64(o.BaseDelay)*float64(attempts), o.MaxDelay)
}

func capDelay(d float64, maxDelay time.Duration) time.Duration {
	if math.IsNaN(d) || d < 0 {
		return 0
	}
	if d >= float64(maxDelay) {
		return maxDelay
	}
	return time.Duration(math.Round(d))
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
