// Package logsvc exposes the log operations shared by the HTTP surface and
// the CLI: direct submission, latest-tail retrieval, and health.
package logsvc
