package circuitbreaker

import "context"

// Protect wraps op so that every invocation goes through the circuit
// registered under cfg.Name. When registry is nil there is no circuit to
// consult, so the operation runs unprotected instead of failing.
func Protect(registry *Registry, cfg Config, op Operation) Operation {
	if registry == nil {
		return op
	}

	return func(ctx context.Context) (any, error) {
		return registry.GetOrCreate(cfg).Execute(ctx, op)
	}
}
