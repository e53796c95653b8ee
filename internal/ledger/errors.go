package ledger

import (
	"context"
	"errors"
)

// Error taxonomy for ledger calls. Callers classify with errors.Is.
var (
	// ErrUnreachable marks connectivity-class failures: the ledger cannot be
	// reached, or a call timed out.
	ErrUnreachable = errors.New("ledger unreachable")
	// ErrRejected marks an append the ledger refused (application-level, not
	// connectivity).
	ErrRejected = errors.New("append rejected")
	// ErrCostEstimation marks a failed cost estimate.
	ErrCostEstimation = errors.New("cost estimation failed")
	// ErrAbsent marks a read of an index that holds no entry. Expected during
	// index discovery; never a connectivity failure.
	ErrAbsent = errors.New("index absent")
)

// IsConnectivity reports whether err is a connectivity-class failure, the
// only class that flips availability state.
func IsConnectivity(err error) bool {
	return errors.Is(err, ErrUnreachable) ||
		errors.Is(err, context.DeadlineExceeded)
}
