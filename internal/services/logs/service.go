package logsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/rahulshendre/secure-logchain/internal/ledger"
	"github.com/rahulshendre/secure-logchain/internal/locate"
	"github.com/rahulshendre/secure-logchain/internal/runtime"
	logpkg "github.com/rahulshendre/secure-logchain/pkg/log"
)

// ErrMalformedInput reports a submission that is empty after trimming.
var ErrMalformedInput = errors.New("malformed input")

// Service provides submit and retrieval operations over the runtime's
// ledger. Submissions here bypass the ingestion pipeline's queue and rate
// gate: they are caller-driven, one call per message, and still pay the
// cost-estimation step before appending.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

// New returns a Service using a default logger.
func New(rt *runtime.Runtime) *Service {
	return NewWithLogger(rt, nil)
}

// NewWithLogger constructs the service with an injected logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &Service{rt: rt, logger: logger.WithComponent("logs")}
}

// Submit validates and appends one message, returning the ledger receipt.
// The append outcome feeds the availability tracker either way.
func (s *Service) Submit(ctx context.Context, message string) (ledger.Receipt, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return ledger.Receipt{}, ErrMalformedInput
	}

	cctx, cancel := context.WithTimeout(ctx, s.rt.Config().CallTimeout())
	defer cancel()

	if _, err := s.rt.Ledger().EstimateAppendCost(cctx, message); err != nil {
		s.rt.Tracker().ObserveFailure(err)
		return ledger.Receipt{}, err
	}
	receipt, err := s.rt.Ledger().Append(cctx, message)
	if err != nil {
		s.rt.Tracker().ObserveFailure(err)
		return ledger.Receipt{}, err
	}
	s.rt.Tracker().ObserveSuccess()
	s.logger.Debug("message submitted", logpkg.Uint64("index", receipt.Index))
	return receipt, nil
}

// Latest locates the highest populated index and returns the most recent n
// entries, newest first. n <= 0 falls back to the configured default. An
// empty ledger is not an error: it yields a zero-count tail.
func (s *Service) Latest(ctx context.Context, n int) (locate.Tail, error) {
	if n <= 0 {
		n = s.rt.Config().Locate.DefaultTailSize
	}

	cctx, cancel := context.WithTimeout(ctx, s.rt.Config().CallTimeout())
	defer cancel()

	highest, err := s.rt.Locator().LocateHighest(cctx)
	if err != nil {
		if errors.Is(err, locate.ErrLedgerEmpty) {
			return locate.Tail{Total: 0, Entries: []ledger.Entry{}}, nil
		}
		s.rt.Tracker().ObserveFailure(err)
		return locate.Tail{}, err
	}

	entries, err := s.rt.Tail().FetchLatest(cctx, n, highest)
	if err != nil {
		s.rt.Tracker().ObserveFailure(err)
		return locate.Tail{}, err
	}
	s.rt.Tracker().ObserveSuccess()
	if entries == nil {
		entries = []ledger.Entry{}
	}
	return locate.Tail{Total: highest + 1, Entries: entries}, nil
}

// Health reports whether the runtime's ledger side is serving.
func (s *Service) Health(ctx context.Context) error {
	return s.rt.CheckHealth(ctx)
}
