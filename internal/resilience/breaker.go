// Package resilience guards a node's optional blocking I/O call (a serial
// port read, a driver ioctl) behind a circuit breaker so a wedged device
// cannot turn into an unbounded tick stall. Nodes are expected not to
// block inside tick(); when a node's author chooses to anyway, wrapping
// the call in a Breaker at least bounds how long it keeps trying a device
// that is already failing.
package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrOpen is returned by Execute while the breaker is open.
	ErrOpen = errors.New("resilience: circuit breaker is open")
	// ErrTooManyProbes is returned in the half-open state once the probe
	// budget for this generation is exhausted.
	ErrTooManyProbes = errors.New("resilience: too many half-open probes")
)

// State is one of Closed, HalfOpen, Open.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures a Breaker's trip and recovery behavior.
type Settings struct {
	// MaxProbes is the number of calls allowed through while half-open.
	MaxProbes uint32
	// ResetInterval is how often a healthy closed breaker clears its
	// rolling counts.
	ResetInterval time.Duration
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
	// ReadyToTrip decides, given the current counts, whether a closed
	// breaker should open after the latest failure.
	ReadyToTrip func(Counts) bool
	// OnStateChange is called whenever the state transitions, useful for
	// wiring a node's status log.
	OnStateChange func(name string, from, to State)
}

// Counts tracks a breaker's rolling call outcomes since the last reset.
type Counts struct {
	Calls               uint32
	ConsecutiveFailures uint32
	ConsecutiveSuccesses uint32
}

// Breaker wraps a single blocking call site, identified by name, behind a
// closed/open/half-open state machine.
type Breaker struct {
	name     string
	settings Settings

	mu     sync.Mutex
	state  State
	counts Counts
	expiry time.Time
}

// New returns a Breaker for the given call site. Zero-valued Settings
// fields take the listed defaults.
func New(name string, settings Settings) *Breaker {
	if settings.MaxProbes == 0 {
		settings.MaxProbes = 1
	}
	if settings.ResetInterval == 0 {
		settings.ResetInterval = 60 * time.Second
	}
	if settings.OpenTimeout == 0 {
		settings.OpenTimeout = 10 * time.Second
	}
	if settings.ReadyToTrip == nil {
		settings.ReadyToTrip = func(c Counts) bool { return c.ConsecutiveFailures > 3 }
	}
	return &Breaker{
		name:     name,
		settings: settings,
		state:    StateClosed,
		expiry:   time.Now().Add(settings.ResetInterval),
	}
}

// Name returns the call site name this breaker guards.
func (b *Breaker) Name() string { return b.name }

// State returns the breaker's current state, advancing it past any expired
// timeout first.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, _ := b.currentState(time.Now())
	return state
}

// Counts returns a copy of the breaker's rolling call counts.
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Execute runs fn if the breaker accepts a call right now, otherwise
// returns ErrOpen or ErrTooManyProbes without calling fn. A panic inside
// fn is recorded as a failure and re-raised.
func (b *Breaker) Execute(fn func() error) error {
	gen, err := b.beforeCall()
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			b.afterCall(gen, false)
			panic(r)
		}
	}()
	err = fn()
	b.afterCall(gen, err == nil)
	return err
}

func (b *Breaker) beforeCall() (time.Time, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	state, gen := b.currentState(now)

	if state == StateOpen {
		return gen, ErrOpen
	}
	if state == StateHalfOpen && b.counts.Calls >= b.settings.MaxProbes {
		return gen, ErrTooManyProbes
	}
	b.counts.Calls++
	return gen, nil
}

func (b *Breaker) afterCall(gen time.Time, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	state, curGen := b.currentState(now)
	if !curGen.Equal(gen) {
		return
	}
	if success {
		b.onSuccess(state, now)
	} else {
		b.onFailure(state, now)
	}
}

func (b *Breaker) onSuccess(state State, now time.Time) {
	switch state {
	case StateClosed:
		b.counts.ConsecutiveSuccesses++
		b.counts.ConsecutiveFailures = 0
	case StateHalfOpen:
		b.counts.ConsecutiveSuccesses++
		b.counts.ConsecutiveFailures = 0
		if b.counts.ConsecutiveSuccesses >= b.settings.MaxProbes {
			b.setState(StateClosed, now)
		}
	}
}

func (b *Breaker) onFailure(state State, now time.Time) {
	switch state {
	case StateClosed:
		b.counts.ConsecutiveFailures++
		b.counts.ConsecutiveSuccesses = 0
		if b.settings.ReadyToTrip(b.counts) {
			b.setState(StateOpen, now)
		}
	case StateHalfOpen:
		b.setState(StateOpen, now)
	}
}

// currentState returns the (possibly advanced) state along with a
// generation marker: the expiry time in effect when the state was last
// observed, used to detect and discard stale beforeCall/afterCall pairs
// that straddle a state transition.
func (b *Breaker) currentState(now time.Time) (State, time.Time) {
	switch b.state {
	case StateClosed:
		if !b.expiry.IsZero() && b.expiry.Before(now) {
			b.counts = Counts{}
			b.expiry = now.Add(b.settings.ResetInterval)
		}
	case StateOpen:
		if b.expiry.Before(now) {
			b.setState(StateHalfOpen, now)
		}
	}
	return b.state, b.expiry
}

func (b *Breaker) setState(state State, now time.Time) {
	if b.state == state {
		return
	}
	prev := b.state
	b.state = state
	b.counts = Counts{}

	switch state {
	case StateClosed:
		b.expiry = now.Add(b.settings.ResetInterval)
	case StateOpen:
		b.expiry = now.Add(b.settings.OpenTimeout)
	case StateHalfOpen:
		b.expiry = time.Time{}
	}

	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, prev, state)
	}
}
