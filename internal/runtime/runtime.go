package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cfgpkg "github.com/rahulshendre/secure-logchain/internal/config"
	"github.com/rahulshendre/secure-logchain/internal/health"
	"github.com/rahulshendre/secure-logchain/internal/ingest"
	"github.com/rahulshendre/secure-logchain/internal/ledger"
	"github.com/rahulshendre/secure-logchain/internal/ledger/httpledger"
	"github.com/rahulshendre/secure-logchain/internal/ledger/pebbleledger"
	"github.com/rahulshendre/secure-logchain/internal/locate"
	"github.com/rahulshendre/secure-logchain/internal/metrics"
	pebblestore "github.com/rahulshendre/secure-logchain/internal/storage/pebble"
	logpkg "github.com/rahulshendre/secure-logchain/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	Logger        logpkg.Logger
}

// Runtime owns the wired components for a single-node instance.
type Runtime struct {
	config   cfgpkg.Config
	logger   logpkg.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	db       *pebblestore.DB
	ldg      ledger.Ledger
	tracker  *health.Tracker
	pipeline *ingest.Pipeline
	locator  *locate.Locator
	tail     *locate.TailReader
}

// Open initializes storage (or the remote ledger client) and wires the
// components. The pipeline does not dispatch until its Run loop is started.
func Open(opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	rt := &Runtime{
		config:   opts.Config,
		logger:   logger,
		registry: registry,
		metrics:  m,
	}

	if opts.Config.LedgerURL != "" {
		rt.ldg = httpledger.New(opts.Config.LedgerURL)
		logger.Info("using remote ledger", logpkg.Str("url", opts.Config.LedgerURL))
	} else {
		db, err := pebblestore.Open(pebblestore.Options{
			DataDir:       opts.DataDir,
			Fsync:         opts.Fsync,
			FsyncInterval: opts.FsyncInterval,
			Metrics:       m.StorageHook(),
		})
		if err != nil {
			return nil, err
		}
		ldg, err := pebbleledger.Open(db, opts.Config.Producer)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		rt.db = db
		rt.ldg = ldg
	}

	rt.tracker = health.New(opts.Config.Ingest.ErrorThrottle(), logger)
	rt.pipeline = ingest.New(ingest.Options{
		Ledger:           rt.ldg,
		Tracker:          rt.tracker,
		Logger:           logger,
		Metrics:          m,
		QueueCapacity:    opts.Config.Ingest.QueueCapacity,
		DispatchInterval: opts.Config.Ingest.DispatchInterval(),
		DailyQuota:       opts.Config.Ingest.DailyQuota,
		QuotaWindow:      opts.Config.Ingest.QuotaWindow(),
		CallTimeout:      opts.Config.CallTimeout(),
		ErrorThrottle:    opts.Config.Ingest.ErrorThrottle(),
	})
	rt.locator = locate.NewLocator(rt.ldg, opts.Config.Locate.ProbeCeiling, opts.Config.Locate.ProbeStride, m, logger)
	rt.tail = locate.NewTailReader(rt.ldg, m, logger)
	return rt, nil
}

// Close stops the pipeline and releases storage. Safe to call more than once.
func (r *Runtime) Close() error {
	if r.pipeline != nil {
		r.pipeline.Stop()
	}
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// CheckHealth verifies local storage (when present) is usable.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		// Remote mode: reachability is the tracker's call.
		if !r.tracker.Reachable() {
			return errors.New("remote ledger unreachable")
		}
		return nil
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// Ledger returns the wired ledger capability.
func (r *Runtime) Ledger() ledger.Ledger { return r.ldg }

// Pipeline returns the ingestion pipeline.
func (r *Runtime) Pipeline() *ingest.Pipeline { return r.pipeline }

// Tracker returns the availability tracker.
func (r *Runtime) Tracker() *health.Tracker { return r.tracker }

// Locator returns the index locator.
func (r *Runtime) Locator() *locate.Locator { return r.locator }

// Tail returns the tail reader.
func (r *Runtime) Tail() *locate.TailReader { return r.tail }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Logger returns the process logger.
func (r *Runtime) Logger() logpkg.Logger { return r.logger }

// Registry returns the Prometheus registry for the HTTP metrics endpoint.
func (r *Runtime) Registry() *prometheus.Registry { return r.registry }
