// Package metrics aggregates circuit lifecycle telemetry.
//
// It implements the circuitbreaker.EventSink contract with a channel-based
// event pipeline: circuits publish outcomes and transitions, a dedicated
// goroutine folds them into per-circuit counters (successes, failures,
// trips, probes, recoveries) and logs state transitions. Publishing is
// non-blocking; events that arrive while the buffer is full are dropped and
// counted, never stalling the circuit's execution path.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Start(ctx)
//
//	registry := circuitbreaker.NewRegistry(collector, logger)
//
//	// Later, inspect the aggregates
//	snapshot := collector.Snapshot()
//
// The collector drains its channel on shutdown so late events are not lost.
package metrics
