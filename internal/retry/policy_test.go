package retry

import (
	"testing"
	"time"

	"github.com/Iron-Ham/dagrun/internal/graph"
)

func TestNextDelayWithoutJitter(t *testing.T) {
	p := Policy{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    1 * time.Second,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second}, // capped, would be 1600ms
		{6, 1 * time.Second},
		{0, 100 * time.Millisecond}, // clamped to attempt 1
	}

	for _, tt := range tests {
		if got := p.NextDelay(tt.attempt); got != tt.want {
			t.Errorf("NextDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestNextDelayJitterBounds(t *testing.T) {
	p := Policy{
		MaxAttempts:    3,
		BaseDelay:      100 * time.Millisecond,
		MaxDelay:       10 * time.Second,
		JitterFraction: 0.25,
	}

	lo := time.Duration(float64(200*time.Millisecond) * 0.75)
	hi := time.Duration(float64(200*time.Millisecond) * 1.25)

	for i := 0; i < 200; i++ {
		got := p.NextDelay(2)
		if got < lo || got > hi {
			t.Fatalf("NextDelay(2) = %v outside [%v, %v]", got, lo, hi)
		}
	}
}

func TestShouldRetry(t *testing.T) {
	p := Policy{MaxAttempts: 3}

	tests := []struct {
		name    string
		kind    graph.ErrorKind
		attempt int
		want    bool
	}{
		{"transient below limit", graph.KindTransient, 1, true},
		{"transient at second attempt", graph.KindTransient, 2, true},
		{"transient at limit", graph.KindTransient, 3, false},
		{"transient past limit", graph.KindTransient, 4, false},
		{"permanent never retried", graph.KindPermanent, 1, false},
		{"timeout not retried as-is", graph.KindTimeout, 1, false},
		{"dependency failure never retried", graph.KindDependencyFailed, 1, false},
		{"circuit rejection never retried", graph.KindCircuitOpen, 1, false},
		{"cancellation never retried", graph.KindCancelled, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ShouldRetry(tt.kind, tt.attempt); got != tt.want {
				t.Errorf("ShouldRetry(%s, %d) = %v, want %v", tt.kind, tt.attempt, got, tt.want)
			}
		})
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := Default()
	if p.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d, want %d", p.MaxAttempts, DefaultMaxAttempts)
	}
	if p.BaseDelay != DefaultBaseDelay {
		t.Errorf("BaseDelay = %v, want %v", p.BaseDelay, DefaultBaseDelay)
	}
	if p.MaxDelay != DefaultMaxDelay {
		t.Errorf("MaxDelay = %v, want %v", p.MaxDelay, DefaultMaxDelay)
	}
	if p.JitterFraction != DefaultJitterFraction {
		t.Errorf("JitterFraction = %v, want %v", p.JitterFraction, DefaultJitterFraction)
	}
}
