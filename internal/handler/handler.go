package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/angeloszaimis/circuit-breaker/internal/circuitbreaker"
)

// AdminHandler exposes read-only registry introspection plus a reset
// endpoint. It carries no traffic through the circuits itself.
type AdminHandler struct {
	logger   *slog.Logger
	registry *circuitbreaker.Registry
}

func NewAdminHandler(logger *slog.Logger, registry *circuitbreaker.Registry) *AdminHandler {
	return &AdminHandler{
		logger:   logger,
		registry: registry,
	}
}

// ListCircuits serves a stats snapshot for every registered circuit.
func (h *AdminHandler) ListCircuits(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Listing circuits", slog.String("from", r.RemoteAddr))

	writeJSON(w, h.registry.All())
}

// GetCircuit serves the stats snapshot of one circuit, 404 when unknown.
func (h *AdminHandler) GetCircuit(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	stats, found := h.registry.Stats(name)
	if !found {
		http.Error(w, "circuit not found", http.StatusNotFound)
		return
	}

	writeJSON(w, stats)
}

// ResetCircuit forces the named circuit back to CLOSED.
func (h *AdminHandler) ResetCircuit(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if _, found := h.registry.Stats(name); !found {
		http.Error(w, "circuit not found", http.StatusNotFound)
		return
	}

	h.registry.Reset(name)
	h.logger.Info("Circuit reset via admin API",
		slog.String("circuit", name),
		slog.String("from", r.RemoteAddr))

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
