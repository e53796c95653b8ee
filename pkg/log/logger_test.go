package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelGate(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithLevel(WarnLevel), WithFormatter(&TextFormatter{}), WithOutput(NewWriterOutput(&buf)))
	l.Info("dropped")
	l.Warn("kept")
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info should be gated: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn should pass: %q", out)
	}
}

func TestWithFieldsCarried(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithFormatter(&TextFormatter{}), WithOutput(NewWriterOutput(&buf)))
	l = l.With(Component("ingest"), Str("producer", "node-1"))
	l.Info("dispatched", Uint64("index", 42))
	out := buf.String()
	for _, want := range []string{"component=ingest", "producer=node-1", "index=42", "dispatched"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithFormatter(&JSONFormatter{}), WithOutput(NewWriterOutput(&buf)))
	l.Error("append failed", Err(errUnknownFormat("x")))
	out := buf.String()
	if !strings.Contains(out, `"level":"ERROR"`) || !strings.Contains(out, `"msg":"append failed"`) {
		t.Fatalf("unexpected json: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel("WARN"); err != nil || lvl != WarnLevel {
		t.Fatalf("parse warn: %v %v", lvl, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestApplyConfig(t *testing.T) {
	l, err := ApplyConfig(&Config{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if l.GetLevel() != DebugLevel {
		t.Fatalf("level: %v", l.GetLevel())
	}
	if _, err := ApplyConfig(&Config{Format: "xml"}); err == nil {
		t.Fatalf("expected unknown format error")
	}
}
