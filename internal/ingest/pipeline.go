package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rahulshendre/secure-logchain/internal/health"
	"github.com/rahulshendre/secure-logchain/internal/ledger"
	"github.com/rahulshendre/secure-logchain/internal/metrics"
	logpkg "github.com/rahulshendre/secure-logchain/pkg/log"
)

// Options configures a Pipeline.
type Options struct {
	Ledger  ledger.Ledger
	Tracker *health.Tracker
	Logger  logpkg.Logger
	Metrics *metrics.Metrics

	// QueueCapacity bounds pending lines (drop-oldest beyond it).
	QueueCapacity int
	// DispatchInterval is the minimum spacing between appends.
	DispatchInterval time.Duration
	// DailyQuota caps successful appends per QuotaWindow.
	DailyQuota int
	// QuotaWindow is the rolling quota period.
	QuotaWindow time.Duration
	// CallTimeout bounds each ledger call issued by the pipeline.
	CallTimeout time.Duration
	// ErrorThrottle spaces out quota-refusal log lines.
	ErrorThrottle time.Duration
}

// Pipeline owns the full ingestion path: line assembly, bounded queueing,
// and rate-gated, quota-enforced dispatch into the ledger. One Pipeline
// drains one queue; Run is the single consumer.
type Pipeline struct {
	ldg     ledger.Ledger
	tracker *health.Tracker
	logger  logpkg.Logger
	metrics *metrics.Metrics

	interval    time.Duration
	callTimeout time.Duration

	feedMu sync.Mutex
	buf    lineBuffer

	queue *queue
	quota *QuotaState

	mu      sync.Mutex
	stopped bool
	stopCh  chan struct{}

	refusalEvery   time.Duration
	lastRefusalLog time.Time

	now func() time.Time
}

// New builds a Pipeline. It does not start dispatching until Run is called.
func New(opts Options) *Pipeline {
	m := opts.Metrics
	if m == nil {
		m = metrics.NewNop()
	}
	interval := opts.DispatchInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &Pipeline{
		ldg:          opts.Ledger,
		tracker:      opts.Tracker,
		logger:       opts.Logger.WithComponent("ingest"),
		metrics:      m,
		interval:     interval,
		callTimeout:  opts.CallTimeout,
		queue:        newQueue(opts.QueueCapacity),
		quota:        newQuotaState(opts.DailyQuota, opts.QuotaWindow),
		stopCh:       make(chan struct{}),
		refusalEvery: opts.ErrorThrottle,
		now:          time.Now,
	}
}

// Feed consumes one raw chunk from the event source. Complete lines are
// queued; a trailing partial line is retained for the next chunk. Chunks
// arriving after Stop are discarded.
func (p *Pipeline) Feed(chunk []byte) {
	p.feedMu.Lock()
	defer p.feedMu.Unlock()
	if p.isStopped() {
		return
	}
	for _, line := range p.buf.split(chunk) {
		p.enqueue(line)
	}
}

// FlushPartial queues any retained partial line as a final line. Called by
// the source on end-of-stream.
func (p *Pipeline) FlushPartial() {
	p.feedMu.Lock()
	defer p.feedMu.Unlock()
	if p.isStopped() {
		return
	}
	if line, ok := p.buf.flush(); ok {
		p.enqueue(line)
	}
}

// enqueue admits one complete line, evicting the oldest when full.
func (p *Pipeline) enqueue(text string) {
	evicted := p.queue.push(PendingLine{Text: text, EnqueuedAt: p.now()})
	if evicted {
		p.metrics.LinesDroppedTotal.Inc()
	}
	p.metrics.QueueDepth.Set(float64(p.queue.len()))
}

// Run drives dispatch: it sleeps until the next permitted slot and drains
// one pending line per interval. Returns when ctx is done or Stop is called.
func (p *Pipeline) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.dispatchOne(ctx)
		}
	}
}

// Stop halts the pipeline: new enqueues are rejected, all queued lines are
// discarded, and an in-flight append finishes or fails on its own.
// Idempotent.
func (p *Pipeline) Stop() {
	// Holding feedMu excludes a concurrent Feed, so no line can slip into
	// the queue between the stopped flag flipping and the clear below.
	p.feedMu.Lock()
	defer p.feedMu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	close(p.stopCh)
	p.queue.clear()
	p.metrics.QueueDepth.Set(0)
	p.logger.Info("pipeline stopped, queue cleared")
}

func (p *Pipeline) isStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// QueueLen reports the current queue depth.
func (p *Pipeline) QueueLen() int { return p.queue.len() }

// QuotaUsed reports appends consumed in the current quota window.
func (p *Pipeline) QuotaUsed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quota.used()
}

// dispatchOne moves at most one pending line into the ledger. The quota is
// checked before any ledger call so a refused attempt consumes no cost
// budget; the refused line stays queued and is only ever destroyed by
// eviction or shutdown.
func (p *Pipeline) dispatchOne(ctx context.Context) {
	if p.queue.len() == 0 {
		return
	}

	p.mu.Lock()
	allowed := p.quota.allow(p.now())
	p.mu.Unlock()
	if !allowed {
		p.metrics.QuotaRefusalsTotal.Inc()
		p.logQuotaRefusal()
		return
	}

	line, ok := p.queue.pop()
	if !ok {
		return
	}
	p.metrics.QueueDepth.Set(float64(p.queue.len()))

	cctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	if _, err := p.ldg.EstimateAppendCost(cctx, line.Text); err != nil {
		p.metrics.AppendsTotal.WithLabelValues(metrics.OutcomeCostEstimation).Inc()
		p.tracker.ObserveFailure(err)
		return
	}
	receipt, err := p.ldg.Append(cctx, line.Text)
	if err != nil {
		// Telemetry loss on failure is accepted: no retry, no re-enqueue.
		p.metrics.AppendsTotal.WithLabelValues(appendOutcome(err)).Inc()
		p.tracker.ObserveFailure(err)
		return
	}

	p.mu.Lock()
	p.quota.commit()
	p.mu.Unlock()
	p.metrics.AppendsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	p.tracker.ObserveSuccess()
	p.logger.Debug("line appended",
		logpkg.Uint64("index", receipt.Index),
		logpkg.Int("queued", p.queue.len()),
	)
}

// logQuotaRefusal logs at most once per throttle interval.
func (p *Pipeline) logQuotaRefusal() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	if !p.lastRefusalLog.IsZero() && now.Sub(p.lastRefusalLog) < p.refusalEvery {
		return
	}
	p.lastRefusalLog = now
	p.logger.Warn("daily quota exhausted, refusing dispatch",
		logpkg.Int("used", p.quota.used()),
	)
}

func appendOutcome(err error) string {
	switch {
	case errors.Is(err, ledger.ErrRejected):
		return metrics.OutcomeRejected
	case errors.Is(err, ledger.ErrCostEstimation):
		return metrics.OutcomeCostEstimation
	default:
		return metrics.OutcomeUnreachable
	}
}
