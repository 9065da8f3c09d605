package metrics

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/angeloszaimis/circuit-breaker/internal/circuitbreaker"
)

// Collector is a channel-backed circuitbreaker.EventSink. Publishing never
// blocks the circuit's goroutine: when the buffer is full the event is
// dropped and counted instead.
type Collector struct {
	eventCh chan circuitbreaker.Event
	metrics *Metrics
	logger  *slog.Logger
	dropped atomic.Int64
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan circuitbreaker.Event, bufferSize),
		metrics: NewMetrics(),
		logger:  logger,
	}
}

// Publish implements circuitbreaker.EventSink.
func (c *Collector) Publish(event circuitbreaker.Event) {
	select {
	case c.eventCh <- event:
	default:
		c.dropped.Add(1)
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Telemetry collector started")
	defer c.logger.Info("Telemetry collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event circuitbreaker.Event) {
	switch event.Type {
	case circuitbreaker.EventSuccess:
		c.metrics.RecordSuccess(event.Circuit, event.State)

	case circuitbreaker.EventFailure:
		c.metrics.RecordFailure(event.Circuit, event.State)

	case circuitbreaker.EventOpen:
		c.metrics.RecordTransition(event.Circuit, circuitbreaker.StateOpen, event.Timestamp)
		c.logger.Warn("Circuit opened",
			slog.String("circuit", event.Circuit),
			slog.Int("consecutive_failures", event.ConsecutiveFailures),
			slog.Time("next_attempt", event.NextAttempt))

	case circuitbreaker.EventHalfOpen:
		c.metrics.RecordTransition(event.Circuit, circuitbreaker.StateHalfOpen, event.Timestamp)
		c.logger.Info("Circuit probing for recovery",
			slog.String("circuit", event.Circuit))

	case circuitbreaker.EventClosed:
		c.metrics.RecordTransition(event.Circuit, circuitbreaker.StateClosed, event.Timestamp)
		c.logger.Info("Circuit closed",
			slog.String("circuit", event.Circuit))
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot(c.dropped.Load())
}
