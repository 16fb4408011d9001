package utils

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned when the breaker refuses a call outright. The
// escrow API client surfaces it as a transport failure; it never retries.
var ErrBreakerOpen = errors.New("circuit breaker is open")

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

type breakerCounts struct {
	requests            uint32
	totalFailures       uint32
	consecutiveFailures uint32
}

// CircuitBreaker fails calls fast while the remote escrow backend is down.
// Trips open when the failure ratio over a rolling interval crosses the
// threshold; after the cooldown it lets a limited number of probe requests
// through before closing again.
type CircuitBreaker struct {
	name         string
	maxRequests  uint32
	interval     time.Duration
	cooldown     time.Duration
	failureRatio float64

	mu     sync.Mutex
	state  BreakerState
	counts breakerCounts
	expiry time.Time
}

func NewCircuitBreaker(name string) *CircuitBreaker {
	return &CircuitBreaker{
		name:         name,
		maxRequests:  5,
		interval:     60 * time.Second,
		cooldown:     30 * time.Second,
		failureRatio: 0.6,
		state:        BreakerClosed,
	}
}

// Execute runs fn under the breaker. The breaker does not retry; a refused
// call returns ErrBreakerOpen immediately.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}
	err := fn()
	cb.afterRequest(err == nil)
	return err
}

func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentState(time.Now())
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	switch cb.currentState(now) {
	case BreakerOpen:
		return ErrBreakerOpen
	case BreakerHalfOpen:
		if cb.counts.requests >= cb.maxRequests {
			return ErrBreakerOpen
		}
	}

	cb.counts.requests++
	return nil
}

func (cb *CircuitBreaker) afterRequest(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state := cb.currentState(time.Now())
	if success {
		cb.counts.consecutiveFailures = 0
		if state == BreakerHalfOpen {
			cb.state = BreakerClosed
			cb.resetCounts(time.Now())
		}
		return
	}

	cb.counts.totalFailures++
	cb.counts.consecutiveFailures++
	if state == BreakerHalfOpen || cb.readyToTrip() {
		cb.state = BreakerOpen
		cb.expiry = time.Now().Add(cb.cooldown)
		cb.counts = breakerCounts{}
	}
}

func (cb *CircuitBreaker) readyToTrip() bool {
	return cb.counts.requests >= cb.maxRequests &&
		float64(cb.counts.totalFailures)/float64(cb.counts.requests) >= cb.failureRatio
}

func (cb *CircuitBreaker) currentState(now time.Time) BreakerState {
	switch cb.state {
	case BreakerClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.resetCounts(now)
		}
	case BreakerOpen:
		if cb.expiry.Before(now) {
			cb.state = BreakerHalfOpen
			cb.counts = breakerCounts{}
			cb.expiry = time.Time{}
		}
	}
	return cb.state
}

func (cb *CircuitBreaker) resetCounts(now time.Time) {
	cb.counts = breakerCounts{}
	cb.expiry = now.Add(cb.interval)
}
