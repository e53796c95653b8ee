package locate

import (
	"context"
	"errors"
	"fmt"

	"github.com/rahulshendre/secure-logchain/internal/ledger"
	"github.com/rahulshendre/secure-logchain/internal/metrics"
	logpkg "github.com/rahulshendre/secure-logchain/pkg/log"
)

// ErrLedgerEmpty reports a ledger with no populated index at all.
var ErrLedgerEmpty = errors.New("ledger empty")

// Locator finds the highest populated ledger index.
type Locator struct {
	ldg     ledger.Ledger
	ceiling uint64
	stride  uint64
	metrics *metrics.Metrics
	logger  logpkg.Logger
}

// NewLocator builds a Locator probing backward from ceiling by stride.
func NewLocator(ldg ledger.Ledger, ceiling, stride uint64, m *metrics.Metrics, logger logpkg.Logger) *Locator {
	if stride == 0 {
		stride = 1
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Locator{ldg: ldg, ceiling: ceiling, stride: stride, metrics: m, logger: logger.WithComponent("locate")}
}

// LocateHighest returns the exact highest populated index using a
// logarithmic number of reads relative to the discovered range.
//
// Phase one probes ceiling, ceiling-stride, ... until a populated index is
// found. Phase two binary-searches the stride window above that index. When
// no coarse probe hits, the ledger may simply be small, so a forward scan
// from 0 (bounded by the ceiling) finds the first missing index. An empty
// ledger yields ErrLedgerEmpty.
func (l *Locator) LocateHighest(ctx context.Context) (uint64, error) {
	found, ok, err := l.coarseProbe(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return l.forwardScan(ctx)
	}

	// lo is populated; hunt for an absent upper edge. The ledger can outgrow
	// the ceiling, so keep stepping the window up until the edge is absent.
	lo := found
	hi := found + l.stride
	for {
		populated, err := l.probe(ctx, hi)
		if err != nil {
			return 0, err
		}
		if !populated {
			break
		}
		lo = hi
		hi += l.stride
	}
	return l.refine(ctx, lo, hi)
}

// coarseProbe steps backward from the ceiling until a populated index is
// found. The boolean result reports whether any probe hit.
func (l *Locator) coarseProbe(ctx context.Context) (uint64, bool, error) {
	idx := l.ceiling
	for {
		populated, err := l.probe(ctx, idx)
		if err != nil {
			return 0, false, err
		}
		if populated {
			return idx, true, nil
		}
		if idx < l.stride {
			return 0, false, nil
		}
		idx -= l.stride
	}
}

// refine binary-searches (lo, hi) where lo is populated and hi is absent,
// converging on the exact highest populated index.
func (l *Locator) refine(ctx context.Context, lo, hi uint64) (uint64, error) {
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		populated, err := l.probe(ctx, mid)
		if err != nil {
			return 0, err
		}
		if populated {
			lo = mid
		} else {
			hi = mid
		}
	}
	l.logger.Debug("located highest index", logpkg.Uint64("index", lo))
	return lo, nil
}

// forwardScan walks up from 0 until the first missing index, bounded by the
// ceiling as a safety stop. Reached only when every coarse probe missed,
// which means the ledger is smaller than one stride (or empty).
func (l *Locator) forwardScan(ctx context.Context) (uint64, error) {
	for i := uint64(0); i <= l.ceiling; i++ {
		populated, err := l.probe(ctx, i)
		if err != nil {
			return 0, err
		}
		if !populated {
			if i == 0 {
				return 0, ErrLedgerEmpty
			}
			return i - 1, nil
		}
	}
	return l.ceiling, nil
}

// probe issues one read. An absent index narrows the search; any other
// failure surfaces as a retrieval failure, never as a false negative.
func (l *Locator) probe(ctx context.Context, index uint64) (bool, error) {
	l.metrics.ProbeCallsTotal.Inc()
	_, err := l.ldg.ReadByIndex(ctx, index)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ledger.ErrAbsent) {
		return false, nil
	}
	return false, fmt.Errorf("probe index %d: %w", index, err)
}
