// Package retry implements the per-task retry policy: exponential backoff
// with jitter and an error-kind gate deciding whether another attempt is
// worthwhile.
package retry

import (
	"math"
	"math/rand"
	"time"

	"github.com/Iron-Ham/dagrun/internal/graph"
)

// Defaults for the retry policy. These are configurable starting points,
// not hard requirements.
const (
	DefaultMaxAttempts    = 3
	DefaultBaseDelay      = 500 * time.Millisecond
	DefaultMaxDelay       = 30 * time.Second
	DefaultJitterFraction = 0.1
)

// Policy calculates retry delays and decides retryability. It holds only
// configuration and is safe to share across tasks.
type Policy struct {
	// MaxAttempts is the total number of attempts allowed per task,
	// including the first.
	MaxAttempts int

	// BaseDelay is the delay before the second attempt; it doubles for
	// each subsequent attempt.
	BaseDelay time.Duration

	// MaxDelay caps the computed delay.
	MaxDelay time.Duration

	// JitterFraction randomizes each delay by ±this fraction. Must be in
	// [0, 1).
	JitterFraction float64
}

// Default returns a Policy with the package defaults.
func Default() Policy {
	return Policy{
		MaxAttempts:    DefaultMaxAttempts,
		BaseDelay:      DefaultBaseDelay,
		MaxDelay:       DefaultMaxDelay,
		JitterFraction: DefaultJitterFraction,
	}
}

// NextDelay returns the backoff delay to wait after the given attempt
// number (1-based) fails: min(BaseDelay * 2^(attempt-1), MaxDelay) with a
// uniformly random jitter of ±JitterFraction applied.
func (p Policy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
	if max := float64(p.MaxDelay); delay > max {
		delay = max
	}

	if p.JitterFraction > 0 {
		// Uniform in [-JitterFraction, +JitterFraction].
		jitter := (rand.Float64()*2 - 1) * p.JitterFraction
		delay *= 1 + jitter
	}

	return time.Duration(delay)
}

// ShouldRetry reports whether another attempt should be made after a
// failure of the given kind on the given attempt number (1-based). Only
// transient kinds are ever retried; permanent failures, dependency
// failures, and circuit rejections are terminal regardless of attempt
// count.
func (p Policy) ShouldRetry(kind graph.ErrorKind, attempt int) bool {
	if attempt >= p.MaxAttempts {
		return false
	}
	return kind == graph.KindTransient
}
