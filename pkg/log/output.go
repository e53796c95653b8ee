package log

import (
	"io"
	"os"
	"sync"
)

// ConsoleOutput writes formatted entries to a writer, stderr by default.
// Writes are serialized so concurrent loggers do not interleave lines.
type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleOutput returns an output writing to stderr.
func NewConsoleOutput() *ConsoleOutput {
	return &ConsoleOutput{w: os.Stderr}
}

// NewWriterOutput returns an output writing to w.
func NewWriterOutput(w io.Writer) *ConsoleOutput {
	return &ConsoleOutput{w: w}
}

// Write implements Output.
func (o *ConsoleOutput) Write(_ *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.w.Write(formatted)
	return err
}

// Close implements Output. Console outputs hold no resources.
func (o *ConsoleOutput) Close() error { return nil }
