package main

import (
	"net/http"

	"github.com/angeloszaimis/circuit-breaker/internal/handler"
	"github.com/angeloszaimis/circuit-breaker/internal/metrics"
)

func setupRouter(adminHandler *handler.AdminHandler, metricsCollector *metrics.Collector) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /circuits", adminHandler.ListCircuits)
	mux.HandleFunc("GET /circuits/{name}", adminHandler.GetCircuit)
	mux.HandleFunc("POST /circuits/{name}/reset", adminHandler.ResetCircuit)
	mux.HandleFunc("GET /telemetry", metricsCollector.Handler())

	return mux
}
