// Package breaker implements a plan-scoped circuit breaker. It watches the
// failure rate over a sliding window of recent task completions and, once
// the rate trips the threshold, fast-fails new task starts instead of
// letting every remaining task retry into the same outage.
package breaker

import (
	"errors"
	"sync"
	"time"
)

// State is the breaker's position in its three-state machine.
type State int

const (
	// Closed is normal operation: all task starts are allowed.
	Closed State = iota

	// Open rejects all new task starts until the cooldown elapses.
	Open

	// HalfOpen allows exactly one probe task through; its outcome decides
	// whether the breaker closes again or re-opens.
	HalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned by Allow when the breaker is rejecting task starts.
var ErrOpen = errors.New("circuit breaker is open")

// Defaults for breaker configuration.
const (
	DefaultWindowSize       = 10
	DefaultFailureThreshold = 0.5
	DefaultCooldown         = 30 * time.Second
)

// Breaker is the shared failure-rate gate. All methods are safe for
// concurrent use; window updates from concurrently completing tasks
// serialize on an internal mutex so no completion is lost.
type Breaker struct {
	mu sync.Mutex

	state    State
	openedAt time.Time
	probing  bool

	// window is a ring buffer of the last windowSize completion outcomes;
	// true records a failure.
	window   []bool
	next     int
	recorded int
	failures int

	windowSize int
	threshold  float64
	cooldown   time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Breaker in the Closed state. Out-of-range arguments fall
// back to the package defaults.
func New(windowSize int, failureThreshold float64, cooldown time.Duration) *Breaker {
	if windowSize < 1 {
		windowSize = DefaultWindowSize
	}
	if failureThreshold <= 0 || failureThreshold > 1 {
		failureThreshold = DefaultFailureThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Breaker{
		state:      Closed,
		window:     make([]bool, windowSize),
		windowSize: windowSize,
		threshold:  failureThreshold,
		cooldown:   cooldown,
		now:        time.Now,
	}
}

// State returns the breaker's current state, accounting for cooldown
// expiry.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpen()
	return b.state
}

// Allow reports whether a new task may start. It returns ErrOpen when the
// breaker is Open, or when it is HalfOpen and the single probe slot is
// already taken.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybeHalfOpen()

	switch b.state {
	case Closed:
		return nil
	case HalfOpen:
		if b.probing {
			return ErrOpen
		}
		b.probing = true
		return nil
	default:
		return ErrOpen
	}
}

// Record adds a task completion to the sliding window and applies state
// transitions. In HalfOpen it resolves the probe: success closes the
// breaker and resets the window, failure re-opens it and restarts the
// cooldown. In Closed it trips to Open once failures in the window exceed
// the threshold fraction of the window size.
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == HalfOpen {
		b.probing = false
		if success {
			b.toClosed()
		} else {
			b.toOpen()
		}
		return
	}

	// Evict the slot being overwritten once the ring has wrapped.
	if b.recorded >= b.windowSize && b.window[b.next] {
		b.failures--
	}
	b.window[b.next] = !success
	b.next = (b.next + 1) % b.windowSize
	if b.recorded < b.windowSize {
		b.recorded++
	}
	if !success {
		b.failures++
	}

	if b.state == Closed && float64(b.failures) > b.threshold*float64(b.windowSize) {
		b.toOpen()
	}
}

// maybeHalfOpen transitions Open -> HalfOpen once the cooldown has
// elapsed. Callers must hold the mutex.
func (b *Breaker) maybeHalfOpen() {
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cooldown {
		b.state = HalfOpen
		b.probing = false
	}
}

func (b *Breaker) toOpen() {
	b.state = Open
	b.openedAt = b.now()
}

func (b *Breaker) toClosed() {
	b.state = Closed
	b.window = make([]bool, b.windowSize)
	b.next = 0
	b.recorded = 0
	b.failures = 0
}
