package metrics_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/circuit-breaker/internal/circuitbreaker"
	"github.com/angeloszaimis/circuit-breaker/internal/metrics"
)

var _ = Describe("Metrics", func() {
	var m *metrics.Metrics

	BeforeEach(func() {
		m = metrics.NewMetrics()
	})

	Describe("Snapshot", func() {
		It("should be empty for a fresh store", func() {
			snap := m.Snapshot(0)
			Expect(snap.Circuits).To(BeEmpty())
			Expect(snap.Uptime).To(BeNumerically(">=", 0))
		})

		It("should carry the dropped-event count through", func() {
			Expect(m.Snapshot(7).DroppedEvents).To(Equal(int64(7)))
		})

		It("should aggregate outcomes and transitions per circuit", func() {
			at := time.Now()
			m.RecordSuccess("payments", circuitbreaker.StateClosed)
			m.RecordSuccess("payments", circuitbreaker.StateClosed)
			m.RecordFailure("payments", circuitbreaker.StateClosed)
			m.RecordTransition("payments", circuitbreaker.StateOpen, at)

			cm := m.Snapshot(0).Circuits["payments"]
			Expect(cm.Successes).To(Equal(int64(2)))
			Expect(cm.Failures).To(Equal(int64(1)))
			Expect(cm.Trips).To(Equal(int64(1)))
			Expect(cm.State).To(Equal("OPEN"))
			Expect(cm.LastTransition).To(BeTemporally("~", at, time.Millisecond))
		})

		It("should include circuits that only ever transitioned", func() {
			m.RecordTransition("inventory", circuitbreaker.StateHalfOpen, time.Now())

			snap := m.Snapshot(0)
			Expect(snap.Circuits).To(HaveKey("inventory"))
			Expect(snap.Circuits["inventory"].Probes).To(Equal(int64(1)))
		})
	})
})

var _ = Describe("Handler", func() {
	It("should serve the snapshot as JSON", func() {
		log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
		collector := metrics.NewCollector(10, log)

		req := httptest.NewRequest(http.MethodGet, "/telemetry", nil)
		w := httptest.NewRecorder()

		collector.Handler()(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))

		var snap metrics.Snapshot
		Expect(json.Unmarshal(w.Body.Bytes(), &snap)).To(Succeed())
	})
})
