// Package circuitbreaker implements per-operation fault isolation for
// failing or slow dependencies.
//
// A circuit breaker prevents cascading failures by rejecting calls to a
// dependency that keeps failing, then probing it for recovery. It has three
// states:
//
//   - CLOSED: Normal operation, calls pass through
//   - OPEN: Dependency failing, calls rejected without being invoked
//   - HALF-OPEN: Probe calls test whether the dependency recovered
//
// Circuits trip on consecutive failures or when more than half of the
// requests inside the monitoring window failed. Each call races against a
// per-call timeout; a call that outlives it counts as a failure and its late
// result is discarded.
//
// Usage:
//
//	registry := circuitbreaker.NewRegistry(sink, logger)
//	cb := registry.GetOrCreate(circuitbreaker.Config{
//	    Name:             "payments",
//	    FailureThreshold: 5,
//	    Timeout:          3 * time.Second,
//	})
//	value, err := cb.Execute(ctx, func(ctx context.Context) (any, error) {
//	    return client.Charge(ctx, order)
//	})
//
// Every outcome and transition is published to the injected EventSink; sink
// failures never reach the caller of Execute.
package circuitbreaker
