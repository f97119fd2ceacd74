package validation

import (
	"testing"
	"time"

	"github.com/imrishuroy/go-payout-settlement/internal/polling"
)

func TestMonitorRequest_Valid(t *testing.T) {
	v := New()

	req := MonitorRequest{
		Options: &PollingOptionsRequest{
			MaxAttempts:       10,
			BaseDelayMs:       1000,
			MaxDelayMs:        5000,
			TimeoutMs:         60000,
			ExponentialFactor: 1.5,
		},
		DeadlineMs: 120000,
		Metadata:   map[string]string{"source": "test"},
	}

	if err := v.Struct(req); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}

func TestMonitorRequest_EmptyIsValid(t *testing.T) {
	if err := New().Struct(MonitorRequest{}); err != nil {
		t.Fatalf("expected empty request to be valid, got %v", err)
	}
}

func TestPollingOptionsRequest_MaxBelowBaseIsAllowed(t *testing.T) {
	v := New()

	req := MonitorRequest{
		Options: &PollingOptionsRequest{BaseDelayMs: 5000, MaxDelayMs: 1000},
	}

	if err := v.Struct(req); err != nil {
		t.Fatalf("expected max delay below base delay to be valid, got %v", err)
	}

	opts := req.Options.ToOptions(polling.DefaultOptions())
	if err := opts.Validate(); err != nil {
		t.Fatalf("expected merged options to be valid, got %v", err)
	}
	if got := polling.ExponentialDelay(opts, 0); got != time.Second {
		t.Fatalf("expected first delay clamped to 1s, got %s", got)
	}
}

func TestPollingOptionsRequest_OutOfRange(t *testing.T) {
	v := New()

	cases := []PollingOptionsRequest{
		{MaxAttempts: -1},
		{ExponentialFactor: 0.5},
		{TimeoutMs: 10},
	}
	for _, opts := range cases {
		opts := opts
		if err := v.Struct(MonitorRequest{Options: &opts}); err == nil {
			t.Fatalf("expected validation error for %+v, got nil", opts)
		}
	}
}

func TestToOptions_OverlaysNonZeroFields(t *testing.T) {
	base := polling.DefaultOptions()

	req := &PollingOptionsRequest{MaxAttempts: 5, BaseDelayMs: 1500}
	got := req.ToOptions(base)

	if got.MaxAttempts != 5 || got.BaseDelay != 1500*time.Millisecond {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.MaxDelay != base.MaxDelay || got.ExponentialFactor != base.ExponentialFactor {
		t.Fatalf("unset fields should keep base values: %+v", got)
	}

	var nilReq *PollingOptionsRequest
	if nilReq.ToOptions(base) != base {
		t.Fatal("nil request should return base unchanged")
	}
}
