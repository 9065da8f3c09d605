package metrics

import (
	"sync"
	"time"

	"github.com/angeloszaimis/circuit-breaker/internal/circuitbreaker"
)

type Metrics struct {
	mutex          sync.RWMutex
	successes      map[string]int64
	failures       map[string]int64
	trips          map[string]int64
	probes         map[string]int64
	recoveries     map[string]int64
	states         map[string]circuitbreaker.State
	lastTransition map[string]time.Time
	startTime      time.Time
}

type Snapshot struct {
	Uptime        time.Duration             `json:"uptime"`
	DroppedEvents int64                     `json:"dropped_events"`
	Circuits      map[string]CircuitMetrics `json:"circuits"`
}

type CircuitMetrics struct {
	State          string    `json:"state"`
	Successes      int64     `json:"successes"`
	Failures       int64     `json:"failures"`
	Trips          int64     `json:"trips"`
	Probes         int64     `json:"probes"`
	Recoveries     int64     `json:"recoveries"`
	LastTransition time.Time `json:"last_transition"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		successes:      make(map[string]int64),
		failures:       make(map[string]int64),
		trips:          make(map[string]int64),
		probes:         make(map[string]int64),
		recoveries:     make(map[string]int64),
		states:         make(map[string]circuitbreaker.State),
		lastTransition: make(map[string]time.Time),
		startTime:      time.Now(),
	}
}

func (m *Metrics) RecordSuccess(circuit string, state circuitbreaker.State) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.successes[circuit]++
	m.states[circuit] = state
}

func (m *Metrics) RecordFailure(circuit string, state circuitbreaker.State) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.failures[circuit]++
	m.states[circuit] = state
}

func (m *Metrics) RecordTransition(circuit string, to circuitbreaker.State, at time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	switch to {
	case circuitbreaker.StateOpen:
		m.trips[circuit]++
	case circuitbreaker.StateHalfOpen:
		m.probes[circuit]++
	case circuitbreaker.StateClosed:
		m.recoveries[circuit]++
	}

	m.states[circuit] = to
	m.lastTransition[circuit] = at
}

func (m *Metrics) Snapshot(dropped int64) Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:        time.Since(m.startTime),
		DroppedEvents: dropped,
		Circuits:      make(map[string]CircuitMetrics),
	}

	// Collect all circuit names seen so far
	allCircuits := make(map[string]bool)
	for circuit := range m.successes {
		allCircuits[circuit] = true
	}
	for circuit := range m.failures {
		allCircuits[circuit] = true
	}
	for circuit := range m.states {
		allCircuits[circuit] = true
	}

	for circuit := range allCircuits {
		snap.Circuits[circuit] = CircuitMetrics{
			State:          m.states[circuit].String(),
			Successes:      m.successes[circuit],
			Failures:       m.failures[circuit],
			Trips:          m.trips[circuit],
			Probes:         m.probes[circuit],
			Recoveries:     m.recoveries[circuit],
			LastTransition: m.lastTransition[circuit],
		}
	}

	return snap
}
