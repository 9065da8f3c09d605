package circuitbreaker_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/circuit-breaker/internal/circuitbreaker"
)

var _ = Describe("Registry", func() {
	var (
		registry *circuitbreaker.Registry
		ctx      context.Context
	)

	cfg := func(name string) circuitbreaker.Config {
		return circuitbreaker.Config{
			Name:             name,
			FailureThreshold: 3,
			ResetTimeout:     100 * time.Millisecond,
		}
	}

	BeforeEach(func() {
		log := slog.New(slog.NewTextHandler(os.Stdout, nil))
		registry = circuitbreaker.NewRegistry(nil, log)
		ctx = context.Background()
	})

	Describe("NewRegistry", func() {
		It("should create a registry", func() {
			Expect(registry).NotTo(BeNil())
		})

		It("should tolerate a nil logger", func() {
			registry = circuitbreaker.NewRegistry(nil, nil)
			Expect(registry.GetOrCreate(cfg("payments"))).NotTo(BeNil())
		})
	})

	Describe("GetOrCreate", func() {
		It("should create a new circuit for an unknown name", func() {
			cb := registry.GetOrCreate(cfg("payments"))
			Expect(cb).NotTo(BeNil())
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
		})

		It("should return the same instance for the same name", func() {
			cb1 := registry.GetOrCreate(cfg("payments"))
			cb2 := registry.GetOrCreate(cfg("payments"))
			Expect(cb1).To(BeIdenticalTo(cb2))
		})

		It("should return different instances for different names", func() {
			cb1 := registry.GetOrCreate(cfg("payments"))
			cb2 := registry.GetOrCreate(cfg("inventory"))
			Expect(cb1).NotTo(BeIdenticalTo(cb2))
		})

		It("should keep the first registration's configuration", func() {
			cb1 := registry.GetOrCreate(cfg("payments"))

			later := cfg("payments")
			later.FailureThreshold = 100
			cb2 := registry.GetOrCreate(later)
			Expect(cb2).To(BeIdenticalTo(cb1))

			// Still governed by the original threshold of 3.
			for i := 0; i < 3; i++ {
				cb2.Execute(ctx, failOp)
			}
			Expect(cb2.State()).To(Equal(circuitbreaker.StateOpen))
		})

		It("should hand the shared sink to new circuits", func() {
			sink := &recordingSink{}
			registry = circuitbreaker.NewRegistry(sink, nil)

			cb := registry.GetOrCreate(cfg("payments"))
			cb.Execute(ctx, succeed)

			Expect(sink.kinds()).To(Equal([]circuitbreaker.EventType{circuitbreaker.EventSuccess}))
		})
	})

	Describe("State", func() {
		It("should report the state of a known circuit", func() {
			registry.GetOrCreate(cfg("payments"))

			state, found := registry.State("payments")
			Expect(found).To(BeTrue())
			Expect(state).To(Equal(circuitbreaker.StateClosed))
		})

		It("should report not-found for an unknown name", func() {
			_, found := registry.State("ghost")
			Expect(found).To(BeFalse())
		})
	})

	Describe("Stats", func() {
		It("should snapshot the counters of a known circuit", func() {
			cb := registry.GetOrCreate(cfg("payments"))
			cb.Execute(ctx, succeed)
			cb.Execute(ctx, failOp)

			stats, found := registry.Stats("payments")
			Expect(found).To(BeTrue())
			Expect(stats.TotalRequests).To(Equal(int64(2)))
			Expect(stats.Successes).To(Equal(int64(1)))
			Expect(stats.Failures).To(Equal(int64(1)))
			Expect(stats.FailureRate).To(BeNumerically("~", 0.5, 0.001))
		})

		It("should report not-found for an unknown name", func() {
			_, found := registry.Stats("ghost")
			Expect(found).To(BeFalse())
		})
	})

	Describe("Reset", func() {
		It("should force the named circuit back to CLOSED", func() {
			cb := registry.GetOrCreate(cfg("payments"))
			for i := 0; i < 3; i++ {
				cb.Execute(ctx, failOp)
			}
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))

			registry.Reset("payments")

			state, found := registry.State("payments")
			Expect(found).To(BeTrue())
			Expect(state).To(Equal(circuitbreaker.StateClosed))
		})

		It("should preserve instance identity across resets", func() {
			cb := registry.GetOrCreate(cfg("payments"))
			registry.Reset("payments")
			Expect(registry.GetOrCreate(cfg("payments"))).To(BeIdenticalTo(cb))
		})

		It("should be a no-op for an unknown name", func() {
			Expect(func() { registry.Reset("ghost") }).NotTo(Panic())
		})
	})

	Describe("All", func() {
		It("should return a snapshot per registered circuit", func() {
			cb1 := registry.GetOrCreate(cfg("payments"))
			cb2 := registry.GetOrCreate(cfg("inventory"))

			for i := 0; i < 3; i++ {
				cb2.Execute(ctx, failOp)
			}

			all := registry.All()
			Expect(all).To(HaveLen(2))
			Expect(all["payments"].State).To(Equal(circuitbreaker.StateClosed))
			Expect(all["inventory"].State).To(Equal(circuitbreaker.StateOpen))

			Expect(cb1.State()).To(Equal(circuitbreaker.StateClosed))
		})

		It("should return an empty map for an empty registry", func() {
			Expect(registry.All()).To(BeEmpty())
		})
	})

	Describe("Concurrent access", func() {
		It("should hand out exactly one instance per name", func() {
			const goroutines = 100

			var wg sync.WaitGroup
			wg.Add(goroutines)

			instances := make([]*circuitbreaker.CircuitBreaker, goroutines)
			for i := 0; i < goroutines; i++ {
				go func(slot int) {
					defer wg.Done()
					instances[slot] = registry.GetOrCreate(cfg("payments"))
				}(i)
			}
			wg.Wait()

			for _, cb := range instances {
				Expect(cb).To(BeIdenticalTo(instances[0]))
			}
			Expect(registry.All()).To(HaveLen(1))
		})
	})
})
