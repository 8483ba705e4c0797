package infra

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when a call is rejected without reaching the provider.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State of a provider breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Outcome classifies one finished provider call.
type Outcome int

const (
	// OutcomeSuccess is any answer that proves the provider is up, a 404 included.
	OutcomeSuccess Outcome = iota
	// OutcomeFailure is a transport error, a 5xx or an undecodable body.
	OutcomeFailure
	// OutcomeIgnored is a call abandoned by its caller.
	OutcomeIgnored
)

// BreakerStatus is a point-in-time view of a breaker, served by the health check.
type BreakerStatus struct {
	Name      string     `json:"name"`
	State     string     `json:"state"`
	Failures  int        `json:"consecutive_failures"`
	Trips     int        `json:"trips"`
	Throttled bool       `json:"throttled"`
	RetryAt   *time.Time `json:"retry_at,omitempty"`
}

// Healthy reports whether calls currently reach the provider.
func (s BreakerStatus) Healthy() bool {
	return s.State == StateClosed.String()
}

// BreakerConfig configures a CircuitBreaker.
type BreakerConfig struct {
	Name             string
	FailureThreshold int           // consecutive failures that open the breaker
	Cooldown         time.Duration // open period after the first trip
}

// DefaultBreakerConfig suits the public CoinGecko tier.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
	}
}

// CircuitBreaker guards one market data provider.
//
// Consecutive failures open it, and every further trip without a recovery
// stays open longer (see CalculateBackoff). A throttling answer opens it at
// once for as long as the provider asked, without counting as a trip. When
// the open period ends a single trial call is let through; its outcome
// closes or reopens the breaker.
type CircuitBreaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu            sync.Mutex
	state         State
	failures      int
	trips         int
	throttled     bool
	openUntil     time.Time
	trialInFlight bool
}

func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = 1
	}
	return &CircuitBreaker{
		name:      cfg.Name,
		threshold: cfg.FailureThreshold,
		cooldown:  cfg.Cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a call may go out. In the half-open state only one
// call at a time is allowed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Before(cb.openUntil) {
			return false
		}
		cb.state = StateHalfOpen
		cb.trialInFlight = true
		slog.Info("Provider breaker half-open, sending a trial call", slog.String("provider", cb.name))
		return true
	case StateHalfOpen:
		if cb.trialInFlight {
			return false
		}
		cb.trialInFlight = true
		return true
	default:
		return true
	}
}

// Record feeds the outcome of an allowed call back into the breaker.
func (cb *CircuitBreaker) Record(o Outcome) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch o {
	case OutcomeSuccess:
		if cb.state != StateClosed {
			slog.Info("Provider breaker closed",
				slog.String("provider", cb.name),
				slog.Int("trips", cb.trips))
		}
		cb.state = StateClosed
		cb.failures = 0
		cb.trips = 0
		cb.throttled = false
		cb.trialInFlight = false

	case OutcomeFailure:
		cb.failures++
		if cb.state == StateHalfOpen || cb.failures >= cb.threshold {
			cb.trip()
		}

	case OutcomeIgnored:
		cb.trialInFlight = false
	}
}

// Throttle opens the breaker because the provider rejected a call for rate
// reasons. retryAfter is the provider's hint; zero means the base cooldown.
func (cb *CircuitBreaker) Throttle(retryAfter time.Duration) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if retryAfter <= 0 {
		retryAfter = cb.cooldown
	}
	cb.state = StateOpen
	cb.throttled = true
	cb.trialInFlight = false
	cb.openUntil = cb.now().Add(retryAfter)
	slog.Warn("Provider throttled us, pausing calls",
		slog.String("provider", cb.name),
		slog.Duration("retry_after", retryAfter))
}

// trip must be called with the mutex held.
func (cb *CircuitBreaker) trip() {
	cb.trips++
	open := cb.cooldown
	if cb.trips > 1 {
		open += CalculateBackoff(cb.trips - 2)
	}
	cb.state = StateOpen
	cb.throttled = false
	cb.trialInFlight = false
	cb.openUntil = cb.now().Add(open)
	slog.Warn("Provider breaker opened",
		slog.String("provider", cb.name),
		slog.Int("failures", cb.failures),
		slog.Int("trips", cb.trips),
		slog.Duration("open_for", open))
}

// Status returns a snapshot for monitoring.
func (cb *CircuitBreaker) Status() BreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	s := BreakerStatus{
		Name:      cb.name,
		State:     cb.state.String(),
		Failures:  cb.failures,
		Trips:     cb.trips,
		Throttled: cb.throttled,
	}
	if cb.state == StateOpen {
		at := cb.openUntil.UTC()
		s.RetryAt = &at
	}
	return s
}
