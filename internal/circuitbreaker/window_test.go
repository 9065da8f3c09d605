package circuitbreaker_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/circuit-breaker/internal/circuitbreaker"
)

var _ = Describe("SlidingWindow", func() {
	var (
		window *circuitbreaker.SlidingWindow
		now    time.Time
	)

	BeforeEach(func() {
		window = circuitbreaker.NewSlidingWindow(time.Minute)
		now = time.Now()
	})

	Describe("FailureRate", func() {
		It("should be 0 for an empty window, not an error", func() {
			Expect(window.FailureRate(now)).To(BeZero())
		})

		It("should be failures divided by total within the window", func() {
			window.Record(now.Add(-30*time.Second), true)
			window.Record(now.Add(-20*time.Second), false)
			window.Record(now.Add(-10*time.Second), true)
			window.Record(now.Add(-5*time.Second), false)

			Expect(window.FailureRate(now)).To(BeNumerically("~", 0.5, 0.001))
		})

		It("should ignore entries older than the monitoring period", func() {
			window.Record(now.Add(-2*time.Minute), true)
			window.Record(now.Add(-90*time.Second), true)
			window.Record(now.Add(-10*time.Second), false)

			Expect(window.FailureRate(now)).To(BeZero())
		})

		It("should be 0 again once everything has aged out", func() {
			window.Record(now.Add(-30*time.Second), true)
			window.Record(now.Add(-20*time.Second), true)

			Expect(window.FailureRate(now.Add(2 * time.Minute))).To(BeZero())
		})
	})

	Describe("Prune", func() {
		It("should drop entries at or beyond the period boundary", func() {
			window.Record(now.Add(-time.Minute), true)
			window.Record(now.Add(-time.Minute+time.Millisecond), false)

			window.Prune(now)

			Expect(window.Size(now)).To(Equal(1))
		})

		It("should keep the window empty when nothing was recorded", func() {
			window.Prune(now)
			Expect(window.Size(now)).To(BeZero())
		})
	})

	Describe("Size", func() {
		It("should count only entries inside the window", func() {
			window.Record(now.Add(-2*time.Minute), false)
			window.Record(now.Add(-30*time.Second), false)
			window.Record(now, true)

			Expect(window.Size(now)).To(Equal(2))
		})
	})
})
