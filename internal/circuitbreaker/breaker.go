package circuitbreaker

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type State int

const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Blocking requests
	StateHalfOpen              // Probing for recovery
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Trip when more than half of the requests in the monitoring window failed.
const windowTripRate = 0.5

// Config holds the per-circuit options. Zero or negative values fall back to
// the defaults below.
type Config struct {
	// Name identifies the circuit inside a Registry. Required.
	Name string

	// FailureThreshold is the number of consecutive failures in CLOSED that
	// trip the circuit. Default: 5.
	FailureThreshold int

	// SuccessThreshold is the number of consecutive probe successes in
	// HALF-OPEN required to close the circuit. Default: 2.
	SuccessThreshold int

	// Timeout bounds how long a single operation may run before it is
	// treated as failed. Default: 3s.
	Timeout time.Duration

	// ResetTimeout is the minimum time the circuit stays OPEN before a probe
	// is allowed. Default: 30s.
	ResetTimeout time.Duration

	// MonitoringPeriod is the width of the sliding window used for the
	// failure-rate computation. Default: 60s.
	MonitoringPeriod time.Duration
}

func (c Config) withDefaults() Config {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = 2
	}
	if c.Timeout <= 0 {
		c.Timeout = 3 * time.Second
	}
	if c.ResetTimeout <= 0 {
		c.ResetTimeout = 30 * time.Second
	}
	if c.MonitoringPeriod <= 0 {
		c.MonitoringPeriod = 60 * time.Second
	}
	return c
}

// Operation is the unit of work a circuit protects. The context is cancelled
// when the circuit stops waiting, so cooperative operations can stop early.
type Operation func(ctx context.Context) (any, error)

type outcome struct {
	value any
	err   error
}

// Stats is an immutable snapshot of a circuit's counters.
type Stats struct {
	State                State     `json:"state"`
	Failures             int64     `json:"failures"`
	Successes            int64     `json:"successes"`
	ConsecutiveFailures  int       `json:"consecutive_failures"`
	ConsecutiveSuccesses int       `json:"consecutive_successes"`
	LastFailureAt        time.Time `json:"last_failure_at"`
	LastSuccessAt        time.Time `json:"last_success_at"`
	TotalRequests        int64     `json:"total_requests"`
	FailureRate          float64   `json:"failure_rate"`
	NextAttempt          time.Time `json:"next_attempt"`
}

// CircuitBreaker is the fault-isolation state machine for one named
// dependency. All counter and state mutation is serialized by the mutex;
// the protected operations themselves run concurrently outside of it.
type CircuitBreaker struct {
	cfg  Config
	sink EventSink
	now  func() time.Time

	mutex                sync.Mutex
	state                State
	consecutiveFailures  int
	consecutiveSuccesses int
	totalFailures        int64
	totalSuccesses       int64
	totalRequests        int64
	lastFailure          time.Time
	lastSuccess          time.Time
	nextAttempt          time.Time
	window               *SlidingWindow
}

// NewCircuitBreaker creates a circuit in the CLOSED state. The sink may be
// nil, in which case events are discarded.
func NewCircuitBreaker(cfg Config, sink EventSink) *CircuitBreaker {
	cfg = cfg.withDefaults()

	return &CircuitBreaker{
		cfg:    cfg,
		sink:   sink,
		now:    time.Now,
		state:  StateClosed,
		window: NewSlidingWindow(cfg.MonitoringPeriod),
	}
}

// Name returns the circuit's identity key.
func (cb *CircuitBreaker) Name() string {
	return cb.cfg.Name
}

// Execute runs op under the circuit's admission control. While OPEN and
// before the reset timeout it returns an *OpenError without invoking op.
// The op races a timer of the configured timeout; when the timer wins, a
// *TimeoutError is returned and a late result from op is discarded. Every
// failure is re-raised to the caller after being recorded; the circuit never
// retries.
func (cb *CircuitBreaker) Execute(ctx context.Context, op Operation) (any, error) {
	if err := cb.admit(); err != nil {
		return nil, err
	}

	value, err := cb.run(ctx, op)
	if err != nil {
		cb.recordFailure()
		return nil, err
	}

	cb.recordSuccess()
	return value, nil
}

// admit decides whether the next call may proceed, transitioning from OPEN
// to HALF-OPEN when the reset timeout has elapsed. Rejected calls do not
// count toward totalRequests.
func (cb *CircuitBreaker) admit() error {
	cb.mutex.Lock()
	now := cb.now()

	if cb.state == StateOpen && now.Before(cb.nextAttempt) {
		err := &OpenError{
			Circuit:     cb.cfg.Name,
			State:       cb.state,
			NextAttempt: cb.nextAttempt,
		}
		cb.mutex.Unlock()
		return err
	}

	var events []Event
	if cb.state == StateOpen {
		cb.state = StateHalfOpen
		cb.consecutiveFailures = 0
		cb.consecutiveSuccesses = 0
		events = append(events, cb.eventLocked(EventHalfOpen, now))
	}

	cb.totalRequests++
	cb.window.Prune(now)
	cb.mutex.Unlock()

	cb.publish(events)
	return nil
}

// run races op against the timeout. The result channel is buffered so an
// abandoned operation can deliver its late outcome and exit without anyone
// reading it.
func (cb *CircuitBreaker) run(ctx context.Context, op Operation) (any, error) {
	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultCh := make(chan outcome, 1)
	go func() {
		value, err := op(opCtx)
		resultCh <- outcome{value: value, err: err}
	}()

	timer := time.NewTimer(cb.cfg.Timeout)
	defer timer.Stop()

	select {
	case result := <-resultCh:
		return result.value, result.err
	case <-timer.C:
		return nil, &TimeoutError{Circuit: cb.cfg.Name, After: cb.cfg.Timeout}
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mutex.Lock()
	now := cb.now()

	cb.totalSuccesses++
	cb.consecutiveSuccesses++
	cb.consecutiveFailures = 0
	cb.lastSuccess = now
	cb.window.Record(now, false)

	var events []Event
	if cb.state == StateHalfOpen && cb.consecutiveSuccesses >= cb.cfg.SuccessThreshold {
		cb.closeLocked()
		events = append(events, cb.eventLocked(EventClosed, now))
	}
	events = append(events, cb.eventLocked(EventSuccess, now))
	cb.mutex.Unlock()

	cb.publish(events)
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mutex.Lock()
	now := cb.now()

	cb.totalFailures++
	cb.consecutiveFailures++
	cb.consecutiveSuccesses = 0
	cb.lastFailure = now
	cb.window.Record(now, true)

	var events []Event
	switch cb.state {
	case StateHalfOpen:
		// A failed probe reopens immediately.
		cb.tripLocked(now)
		events = append(events, cb.eventLocked(EventOpen, now))
	case StateClosed:
		// The rate rule only applies once the window holds at least
		// FailureThreshold samples; otherwise a single failure against an
		// empty window would trip the circuit at rate 1.0.
		tripped := cb.consecutiveFailures >= cb.cfg.FailureThreshold
		if !tripped && cb.window.Size(now) >= cb.cfg.FailureThreshold {
			tripped = cb.window.FailureRate(now) > windowTripRate
		}
		if tripped {
			cb.tripLocked(now)
			events = append(events, cb.eventLocked(EventOpen, now))
		}
	}
	events = append(events, cb.eventLocked(EventFailure, now))
	cb.mutex.Unlock()

	cb.publish(events)
}

func (cb *CircuitBreaker) tripLocked(now time.Time) {
	cb.state = StateOpen
	cb.nextAttempt = now.Add(cb.cfg.ResetTimeout)
}

// closeLocked clears every counter. The lifetime totals restart after a
// trip-and-recover cycle; the window keeps its entries since it tracks
// requests, not circuit state.
func (cb *CircuitBreaker) closeLocked() {
	cb.state = StateClosed
	cb.consecutiveFailures = 0
	cb.consecutiveSuccesses = 0
	cb.totalFailures = 0
	cb.totalSuccesses = 0
	cb.totalRequests = 0
	cb.nextAttempt = time.Time{}
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

// Stats returns a snapshot of all counters plus the live failure rate.
func (cb *CircuitBreaker) Stats() Stats {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	return Stats{
		State:                cb.state,
		Failures:             cb.totalFailures,
		Successes:            cb.totalSuccesses,
		ConsecutiveFailures:  cb.consecutiveFailures,
		ConsecutiveSuccesses: cb.consecutiveSuccesses,
		LastFailureAt:        cb.lastFailure,
		LastSuccessAt:        cb.lastSuccess,
		TotalRequests:        cb.totalRequests,
		FailureRate:          cb.window.FailureRate(cb.now()),
		NextAttempt:          cb.nextAttempt,
	}
}

// Reset forces the circuit back to CLOSED with all counters and the window
// cleared. The instance itself survives.
func (cb *CircuitBreaker) Reset() {
	cb.mutex.Lock()
	now := cb.now()

	var events []Event
	if cb.state != StateClosed {
		cb.state = StateClosed
		events = append(events, cb.eventLocked(EventClosed, now))
	}
	cb.closeLocked()
	cb.window.reset()
	cb.lastFailure = time.Time{}
	cb.lastSuccess = time.Time{}
	cb.mutex.Unlock()

	cb.publish(events)
}

func (cb *CircuitBreaker) eventLocked(kind EventType, now time.Time) Event {
	return Event{
		Type:                kind,
		Timestamp:           now,
		Circuit:             cb.cfg.Name,
		State:               cb.state,
		ConsecutiveFailures: cb.consecutiveFailures,
		NextAttempt:         cb.nextAttempt,
	}
}

// publish delivers events outside the mutex so a sink may call back into the
// breaker. Sink panics never reach Execute's caller.
func (cb *CircuitBreaker) publish(events []Event) {
	if cb.sink == nil {
		return
	}
	for _, event := range events {
		cb.publishOne(event)
	}
}

func (cb *CircuitBreaker) publishOne(event Event) {
	defer func() {
		_ = recover()
	}()
	cb.sink.Publish(event)
}
