package circuitbreaker

import (
	"log/slog"
	"sync"
)

// Registry hands out one shared circuit instance per name. Instances are
// created lazily on first lookup and live for the registry's lifetime.
type Registry struct {
	mutex    sync.RWMutex
	breakers map[string]*CircuitBreaker
	sink     EventSink
	logger   *slog.Logger
}

// NewRegistry creates an empty registry. Circuits created through it share
// the given event sink; a nil sink discards events.
func NewRegistry(sink EventSink, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		breakers: make(map[string]*CircuitBreaker),
		sink:     sink,
		logger:   logger,
	}
}

// GetOrCreate returns the circuit registered under cfg.Name, creating it
// from cfg if absent. The first registration wins: a differing configuration
// passed later is ignored.
func (r *Registry) GetOrCreate(cfg Config) *CircuitBreaker {
	r.mutex.RLock()
	cb, exists := r.breakers[cfg.Name]
	r.mutex.RUnlock()

	if exists {
		return cb
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Double-check: another goroutine may have created it
	if cb, exists = r.breakers[cfg.Name]; exists {
		return cb
	}

	cb = NewCircuitBreaker(cfg, r.sink)
	r.breakers[cfg.Name] = cb

	r.logger.Info("Circuit created",
		slog.String("circuit", cfg.Name),
		slog.Int("failure_threshold", cb.cfg.FailureThreshold),
		slog.Duration("timeout", cb.cfg.Timeout),
		slog.Duration("reset_timeout", cb.cfg.ResetTimeout))

	return cb
}

// State reports the state of the named circuit. The second return value is
// false when no circuit is registered under that name.
func (r *Registry) State(name string) (State, bool) {
	r.mutex.RLock()
	cb, exists := r.breakers[name]
	r.mutex.RUnlock()

	if !exists {
		return StateClosed, false
	}
	return cb.State(), true
}

// Stats returns a counter snapshot of the named circuit, or false when the
// name is unknown. Probing for existence is a legitimate read, not an error.
func (r *Registry) Stats(name string) (Stats, bool) {
	r.mutex.RLock()
	cb, exists := r.breakers[name]
	r.mutex.RUnlock()

	if !exists {
		return Stats{}, false
	}
	return cb.Stats(), true
}

// Reset forces the named circuit back to CLOSED with cleared counters. It is
// a no-op when the name is unknown; the instance is never destroyed.
func (r *Registry) Reset(name string) {
	r.mutex.RLock()
	cb, exists := r.breakers[name]
	r.mutex.RUnlock()

	if !exists {
		return
	}

	cb.Reset()
	r.logger.Info("Circuit reset", slog.String("circuit", name))
}

// All returns a stats snapshot for every registered circuit, keyed by name.
func (r *Registry) All() map[string]Stats {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := make(map[string]Stats, len(r.breakers))
	for name, cb := range r.breakers {
		stats[name] = cb.Stats()
	}
	return stats
}
