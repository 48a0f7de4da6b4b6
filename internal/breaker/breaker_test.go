package breaker

import (
	"testing"
	"time"
)

// fakeClock lets tests advance the breaker's view of time manually.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestBreaker(windowSize int, threshold float64, cooldown time.Duration) (*Breaker, *fakeClock) {
	b := New(windowSize, threshold, cooldown)
	clock := &fakeClock{t: time.Unix(1000, 0)}
	b.now = clock.now
	return b, clock
}

func TestBreakerStartsClosed(t *testing.T) {
	b, _ := newTestBreaker(4, 0.5, time.Minute)
	if b.State() != Closed {
		t.Fatalf("state = %v, want closed", b.State())
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("Allow() = %v, want nil", err)
	}
}

func TestBreakerTripsWhenFailuresExceedThreshold(t *testing.T) {
	// Window 4, threshold 0.5: trips once failures > 2.
	b, _ := newTestBreaker(4, 0.5, time.Minute)

	b.Record(false)
	b.Record(false)
	if b.State() != Closed {
		t.Fatal("breaker tripped too early")
	}

	b.Record(false)
	if b.State() != Open {
		t.Fatalf("state = %v, want open after third failure", b.State())
	}
	if err := b.Allow(); err != ErrOpen {
		t.Fatalf("Allow() = %v, want ErrOpen", err)
	}
}

func TestBreakerWindowSlides(t *testing.T) {
	// Window 4: old outcomes are evicted, so three failures spread thin
	// across successes never accumulate.
	b, _ := newTestBreaker(4, 0.5, time.Minute)

	for i := 0; i < 10; i++ {
		b.Record(false)
		b.Record(true)
		b.Record(true)
		b.Record(true)
		if b.State() != Closed {
			t.Fatalf("breaker tripped at iteration %d with diluted failures", i)
		}
	}
}

func TestBreakerHalfOpenAfterCooldown(t *testing.T) {
	b, clock := newTestBreaker(4, 0.5, time.Minute)

	for i := 0; i < 3; i++ {
		b.Record(false)
	}
	if b.State() != Open {
		t.Fatal("expected open")
	}

	clock.advance(59 * time.Second)
	if b.State() != Open {
		t.Fatal("cooldown not yet elapsed, expected still open")
	}

	clock.advance(1 * time.Second)
	if b.State() != HalfOpen {
		t.Fatalf("state = %v, want half-open after cooldown", b.State())
	}
}

func TestBreakerHalfOpenSingleProbe(t *testing.T) {
	b, clock := newTestBreaker(4, 0.5, time.Minute)
	for i := 0; i < 3; i++ {
		b.Record(false)
	}
	clock.advance(time.Minute)

	if err := b.Allow(); err != nil {
		t.Fatalf("first probe rejected: %v", err)
	}
	if err := b.Allow(); err != ErrOpen {
		t.Fatalf("second concurrent probe allowed, want ErrOpen")
	}
}

func TestBreakerProbeSuccessCloses(t *testing.T) {
	b, clock := newTestBreaker(4, 0.5, time.Minute)
	for i := 0; i < 3; i++ {
		b.Record(false)
	}
	clock.advance(time.Minute)

	if err := b.Allow(); err != nil {
		t.Fatalf("probe rejected: %v", err)
	}
	b.Record(true)

	if b.State() != Closed {
		t.Fatalf("state = %v, want closed after successful probe", b.State())
	}

	// The window was reset: a single failure must not re-trip.
	b.Record(false)
	if b.State() != Closed {
		t.Fatal("breaker re-tripped on one failure after reset")
	}
}

func TestBreakerProbeFailureReopens(t *testing.T) {
	b, clock := newTestBreaker(4, 0.5, time.Minute)
	for i := 0; i < 3; i++ {
		b.Record(false)
	}
	clock.advance(time.Minute)

	if err := b.Allow(); err != nil {
		t.Fatalf("probe rejected: %v", err)
	}
	b.Record(false)

	if b.State() != Open {
		t.Fatalf("state = %v, want open after failed probe", b.State())
	}

	// The cooldown restarted from the failed probe.
	clock.advance(30 * time.Second)
	if b.State() != Open {
		t.Fatal("expected open, cooldown should have restarted")
	}
	clock.advance(30 * time.Second)
	if b.State() != HalfOpen {
		t.Fatal("expected half-open after restarted cooldown")
	}
}

func TestNewFallsBackToDefaults(t *testing.T) {
	b := New(0, 2.0, -time.Second)
	if b.windowSize != DefaultWindowSize {
		t.Errorf("windowSize = %d, want %d", b.windowSize, DefaultWindowSize)
	}
	if b.threshold != DefaultFailureThreshold {
		t.Errorf("threshold = %v, want %v", b.threshold, DefaultFailureThreshold)
	}
	if b.cooldown != DefaultCooldown {
		t.Errorf("cooldown = %v, want %v", b.cooldown, DefaultCooldown)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Closed, "closed"},
		{Open, "open"},
		{HalfOpen, "half-open"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
