// Package health tracks ledger reachability and throttles failure
// notifications so a sustained outage does not flood logs or observers.
package health

import (
	"sync"
	"time"

	"github.com/rahulshendre/secure-logchain/internal/ledger"
	logpkg "github.com/rahulshendre/secure-logchain/pkg/log"
)

// State is the tracker's view of the ledger.
type State int

const (
	StateAvailable State = iota
	StateUnavailable
)

// String returns the state name.
func (s State) String() string {
	if s == StateUnavailable {
		return "unavailable"
	}
	return "available"
}

// Tracker is a two-state machine over ledger call outcomes. Only
// connectivity-class failures flip it to Unavailable; the next successful
// call flips it back and always emits one recovery notification. While
// Unavailable, failure notifications are spaced at least one throttle
// interval apart.
type Tracker struct {
	mu           sync.Mutex
	state        State
	throttle     time.Duration
	lastNotified time.Time
	logger       logpkg.Logger

	now func() time.Time
}

// New builds a Tracker that notifies through logger at most once per
// throttle interval while unavailable.
func New(throttle time.Duration, logger logpkg.Logger) *Tracker {
	return &Tracker{
		state:    StateAvailable,
		throttle: throttle,
		logger:   logger.WithComponent("health"),
		now:      time.Now,
	}
}

// Reachable reports whether the ledger is currently considered reachable.
func (t *Tracker) Reachable() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == StateAvailable
}

// ObserveSuccess records a successful ledger call. The first success after
// an outage emits exactly one recovery notification, unthrottled.
func (t *Tracker) ObserveSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateUnavailable {
		t.state = StateAvailable
		t.lastNotified = time.Time{}
		t.logger.Info("ledger reachable again")
	}
}

// ObserveFailure records a failed ledger call. Connectivity-class failures
// transition the state; application-level rejections only log (throttled)
// and leave the state alone.
func (t *Tracker) ObserveFailure(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !ledger.IsConnectivity(err) {
		if t.allowNotify() {
			t.logger.Warn("ledger call failed", logpkg.Err(err))
		}
		return
	}

	if t.state == StateAvailable {
		t.state = StateUnavailable
		t.lastNotified = t.now()
		t.logger.Error("ledger unreachable", logpkg.Err(err))
		return
	}
	if t.allowNotify() {
		t.logger.Error("ledger still unreachable", logpkg.Err(err))
	}
}

// allowNotify applies the throttle. Caller must hold the mutex.
func (t *Tracker) allowNotify() bool {
	now := t.now()
	if !t.lastNotified.IsZero() && now.Sub(t.lastNotified) < t.throttle {
		return false
	}
	t.lastNotified = now
	return true
}
