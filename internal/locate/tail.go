package locate

import (
	"context"
	"errors"
	"fmt"

	"github.com/rahulshendre/secure-logchain/internal/ledger"
	"github.com/rahulshendre/secure-logchain/internal/metrics"
	logpkg "github.com/rahulshendre/secure-logchain/pkg/log"
)

// ErrBulkReadExhausted reports that both individual reads and the bulk
// fallback failed; the retrieval as a whole failed.
var ErrBulkReadExhausted = errors.New("individual and bulk reads exhausted")

// Tail is the result of one retrieval: the most recent entries, newest
// first, plus the total count implied by the highest index.
type Tail struct {
	// Total is highestIndex+1, an upper bound on the true entry count,
	// consistent with the dense-sequence invariant but not re-verified.
	Total   uint64         `json:"totalCount"`
	Entries []ledger.Entry `json:"entries"`
}

// TailReader fetches the most recent n entries below a known highest index.
type TailReader struct {
	ldg     ledger.Ledger
	metrics *metrics.Metrics
	logger  logpkg.Logger
}

// NewTailReader builds a TailReader over the given ledger.
func NewTailReader(ldg ledger.Ledger, m *metrics.Metrics, logger logpkg.Logger) *TailReader {
	if m == nil {
		m = metrics.NewNop()
	}
	return &TailReader{ldg: ldg, metrics: m, logger: logger.WithComponent("locate")}
}

// FetchLatest reads indices [highest .. max(0, highest-n+1)] individually,
// newest first, skipping absent indices. If an individual read fails
// wholesale it falls back to one bulk range read and reverses the result.
// Returns at most n entries and never pads.
func (t *TailReader) FetchLatest(ctx context.Context, n int, highest uint64) ([]ledger.Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	low := uint64(0)
	if highest >= uint64(n) {
		low = highest - uint64(n) + 1
	}

	entries := make([]ledger.Entry, 0, n)
	for i := highest; ; i-- {
		e, err := t.ldg.ReadByIndex(ctx, i)
		switch {
		case err == nil:
			t.metrics.ReadsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
			entries = append(entries, e)
		case errors.Is(err, ledger.ErrAbsent):
			// Sparse gap: skip, do not fail.
			t.metrics.ReadsTotal.WithLabelValues(metrics.OutcomeAbsent).Inc()
		default:
			t.metrics.ReadsTotal.WithLabelValues(metrics.OutcomeUnreachable).Inc()
			t.logger.Warn("individual reads failed, trying bulk fallback", logpkg.Err(err))
			return t.bulkFallback(ctx, n, low, highest, err)
		}
		if i == low {
			break
		}
	}
	return entries, nil
}

// bulkFallback issues a single range read over the whole window, reverses
// it to newest-first, and truncates to n.
func (t *TailReader) bulkFallback(ctx context.Context, n int, low, highest uint64, cause error) ([]ledger.Entry, error) {
	br, ok := t.ldg.(ledger.BulkReader)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrBulkReadExhausted, cause)
	}
	asc, err := br.ReadRange(ctx, low, highest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (bulk: %v)", ErrBulkReadExhausted, cause, err)
	}
	entries := make([]ledger.Entry, 0, n)
	for i := len(asc) - 1; i >= 0 && len(entries) < n; i-- {
		entries = append(entries, asc[i])
	}
	return entries, nil
}
