package health

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rahulshendre/secure-logchain/internal/ledger"
	logpkg "github.com/rahulshendre/secure-logchain/pkg/log"
)

func newTestTracker(throttle time.Duration) (*Tracker, *bytes.Buffer, *time.Time) {
	var buf bytes.Buffer
	logger := logpkg.NewLogger(
		logpkg.WithLevel(logpkg.DebugLevel),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewWriterOutput(&buf)),
	)
	tr := New(throttle, logger)
	clock := time.Unix(1_700_000_000, 0)
	tr.now = func() time.Time { return clock }
	return tr, &buf, &clock
}

func countLines(buf *bytes.Buffer) int {
	s := strings.TrimSpace(buf.String())
	if s == "" {
		return 0
	}
	return len(strings.Split(s, "\n"))
}

func TestThreeFailuresOneNotification(t *testing.T) {
	tr, buf, _ := newTestTracker(5 * time.Second)
	err := fmt.Errorf("dial: %w", ledger.ErrUnreachable)
	tr.ObserveFailure(err)
	tr.ObserveFailure(err)
	tr.ObserveFailure(err)
	if got := countLines(buf); got != 1 {
		t.Fatalf("want exactly 1 notification, got %d:\n%s", got, buf.String())
	}
	if tr.Reachable() {
		t.Fatalf("tracker should be unavailable")
	}
}

func TestNotificationAfterThrottleWindow(t *testing.T) {
	tr, buf, clock := newTestTracker(5 * time.Second)
	err := ledger.ErrUnreachable
	tr.ObserveFailure(err)
	*clock = clock.Add(6 * time.Second)
	tr.ObserveFailure(err)
	if got := countLines(buf); got != 2 {
		t.Fatalf("want 2 notifications across windows, got %d", got)
	}
}

func TestRecoveryAlwaysNotifies(t *testing.T) {
	tr, buf, _ := newTestTracker(5 * time.Second)
	tr.ObserveFailure(ledger.ErrUnreachable)
	tr.ObserveSuccess()
	if !tr.Reachable() {
		t.Fatalf("tracker should be available after success")
	}
	out := buf.String()
	if !strings.Contains(out, "reachable again") {
		t.Fatalf("missing recovery notification: %s", out)
	}
	if got := countLines(buf); got != 2 {
		t.Fatalf("want failure + recovery = 2 lines, got %d", got)
	}
}

func TestRejectionDoesNotFlipState(t *testing.T) {
	tr, _, _ := newTestTracker(5 * time.Second)
	tr.ObserveFailure(errors.New("malformed input"))
	if !tr.Reachable() {
		t.Fatalf("application-level failure must not flip availability")
	}
}

func TestSuccessWhileAvailableIsSilent(t *testing.T) {
	tr, buf, _ := newTestTracker(5 * time.Second)
	tr.ObserveSuccess()
	tr.ObserveSuccess()
	if got := countLines(buf); got != 0 {
		t.Fatalf("steady-state success should not notify, got %d lines", got)
	}
}
