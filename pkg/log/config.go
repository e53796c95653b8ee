package log

import (
	stdlog "log"
)

// Config declaratively describes a logger.
type Config struct {
	// Level is one of debug|info|warn|error|fatal. Empty means info.
	Level string `json:"level" yaml:"level"`
	// Format is text or json. Empty means text.
	Format string `json:"format" yaml:"format"`
}

// ApplyConfig builds a Logger from a declarative Config.
func ApplyConfig(cfg *Config) (Logger, error) {
	level := InfoLevel
	if cfg.Level != "" {
		parsed, err := ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	var formatter Formatter
	switch cfg.Format {
	case "", "text":
		formatter = &TextFormatter{}
	case "json":
		formatter = &JSONFormatter{}
	default:
		return nil, errUnknownFormat(cfg.Format)
	}
	return NewLogger(
		WithLevel(level),
		WithFormatter(formatter),
		WithOutput(NewConsoleOutput()),
	), nil
}

type errUnknownFormat string

func (e errUnknownFormat) Error() string { return "log: unknown format " + string(e) }

// RedirectStdLog routes the standard library's default logger (used by
// third-party code such as Pebble) into the given Logger at info level.
func RedirectStdLog(l Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(stdLogWriter{l})
}

type stdLogWriter struct{ l Logger }

func (w stdLogWriter) Write(p []byte) (int, error) {
	msg := string(p)
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		msg = msg[:n-1]
	}
	w.l.Info(msg)
	return len(p), nil
}
