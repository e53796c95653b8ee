// Package httpserver exposes the logchain HTTP API: submission, tail
// retrieval, streaming ingestion, the raw ledger endpoints, health, and
// Prometheus metrics.
package httpserver
