// Package log provides logchain's structured logging facade.
//
// The package exposes a small Logger interface with leveled, Field-based
// methods. Internally it is backed by the standard library's slog through a
// bridge handler that routes records into a formatter/output pipeline, so
// output stays consistent across the codebase while slog handles levels and
// attribute plumbing.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("ingest"))
//	l.Info("pipeline started", log.Int("queue_capacity", 50))
//
// Use ApplyConfig to build a logger from a declarative Config (level plus
// text or JSON format). To integrate with libraries that expect a *log.Logger
// from the standard library, use RedirectStdLog.
package log
