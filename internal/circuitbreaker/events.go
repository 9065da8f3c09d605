package circuitbreaker

import "time"

type EventType string

const (
	EventSuccess  EventType = "success"
	EventFailure  EventType = "failure"
	EventOpen     EventType = "open"
	EventHalfOpen EventType = "half-open"
	EventClosed   EventType = "closed"
)

// Event describes a single outcome or state transition of a circuit.
type Event struct {
	Type                EventType
	Timestamp           time.Time
	Circuit             string
	State               State
	ConsecutiveFailures int
	NextAttempt         time.Time
}

// EventSink receives every outcome and transition event a circuit emits.
// Publishing is fire-and-forget: implementations must not block the calling
// goroutine for long, and a panic inside Publish is swallowed by the breaker.
type EventSink interface {
	Publish(event Event)
}
