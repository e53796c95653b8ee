package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Level represents the severity level of a log message.
type Level int

// Log levels
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name (case-insensitive) into a Level.
func ParseLevel(s string) (Level, error) {
	switch lower(s) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("log: unknown level %q", s)
	}
}

func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// Fields is a map of field names to values.
type Fields map[string]interface{}

// Entry represents a single log entry handed to formatters and outputs.
type Entry struct {
	Level     Level
	Message   string
	Fields    Fields
	Timestamp time.Time
}

// Logger defines the core logging interface for logchain components.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// With returns a logger carrying the given fields on every entry.
	With(fields ...Field) Logger

	// WithComponent tags entries with a component name.
	WithComponent(component string) Logger

	SetLevel(level Level)
	GetLevel() Level
}

// Formatter renders an Entry into bytes.
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// Output receives formatted entries.
type Output interface {
	Write(entry *Entry, formatted []byte) error
	Close() error
}

// LoggerOption configures a logger under construction.
type LoggerOption func(*BaseLogger)

// BaseLogger implements Logger on top of a slog bridge.
type BaseLogger struct {
	level      Level
	formatter  Formatter
	outputs    []Output
	slogLogger *slog.Logger
}

// NewLogger creates a new logger with the given options.
func NewLogger(options ...LoggerOption) Logger {
	logger := &BaseLogger{
		level:     InfoLevel,
		formatter: &TextFormatter{},
	}
	for _, option := range options {
		option(logger)
	}
	if len(logger.outputs) == 0 {
		logger.outputs = append(logger.outputs, NewConsoleOutput())
	}
	logger.slogLogger = slog.New(newBridgeHandler(logger))
	return logger
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) LoggerOption {
	return func(l *BaseLogger) { l.level = level }
}

// WithFormatter sets the log formatter.
func WithFormatter(formatter Formatter) LoggerOption {
	return func(l *BaseLogger) { l.formatter = formatter }
}

// WithOutput adds an output to the logger.
func WithOutput(output Output) LoggerOption {
	return func(l *BaseLogger) { l.outputs = append(l.outputs, output) }
}

func (l *BaseLogger) log(level Level, msg string, fields []Field) {
	l.slogLogger.LogAttrs(context.Background(), toSlogLevel(level), msg, attrsFromFields(fields)...)
}

func (l *BaseLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *BaseLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *BaseLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *BaseLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

// Fatal logs at FatalLevel and exits the process.
func (l *BaseLogger) Fatal(msg string, fields ...Field) {
	l.log(FatalLevel, msg, fields)
	os.Exit(1)
}

// With returns a logger that carries the given fields on every entry.
func (l *BaseLogger) With(fields ...Field) Logger {
	nl := *l
	nl.slogLogger = slog.New(l.slogLogger.Handler().WithAttrs(attrsFromFields(fields)))
	return &nl
}

// WithComponent tags entries with a component name.
func (l *BaseLogger) WithComponent(component string) Logger {
	return l.With(Component(component))
}

// SetLevel sets the minimum log level.
func (l *BaseLogger) SetLevel(level Level) { l.level = level }

// GetLevel returns the current minimum log level.
func (l *BaseLogger) GetLevel() Level { return l.level }
