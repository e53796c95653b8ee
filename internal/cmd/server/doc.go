// Package serverrun boots a logchain instance: runtime, ingestion pipeline,
// optional stdin feed, and the HTTP API server.
package serverrun
