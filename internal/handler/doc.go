// Package handler implements the admin HTTP API for circuit introspection.
//
// It exposes the registry over three routes:
//
//   - GET  /circuits               stats snapshot for every circuit
//   - GET  /circuits/{name}        one circuit's snapshot, 404 when unknown
//   - POST /circuits/{name}/reset  force the circuit back to CLOSED
//
// The handlers only read registry snapshots and trigger resets; no request
// ever flows through a circuit here.
package handler
