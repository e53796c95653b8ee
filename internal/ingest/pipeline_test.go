package ingest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rahulshendre/secure-logchain/internal/health"
	"github.com/rahulshendre/secure-logchain/internal/ledger"
	"github.com/rahulshendre/secure-logchain/internal/ledger/ledgertest"
	logpkg "github.com/rahulshendre/secure-logchain/pkg/log"
)

func testLogger() logpkg.Logger {
	return logpkg.NewLogger(logpkg.WithLevel(logpkg.FatalLevel))
}

func newTestPipeline(t *testing.T, fake *ledgertest.Ledger, quota int) *Pipeline {
	t.Helper()
	logger := testLogger()
	p := New(Options{
		Ledger:           fake,
		Tracker:          health.New(5*time.Second, logger),
		Logger:           logger,
		QueueCapacity:    50,
		DispatchInterval: time.Second,
		DailyQuota:       quota,
		QuotaWindow:      24 * time.Hour,
		CallTimeout:      time.Second,
		ErrorThrottle:    5 * time.Second,
	})
	t.Cleanup(p.Stop)
	return p
}

func TestBurstBoundedByQueueCapacity(t *testing.T) {
	fake := ledgertest.New()
	p := newTestPipeline(t, fake, 1000)
	// 200 lines arrive in one burst; only the newest 50 stay queued and no
	// append is dispatched until the rate gate fires.
	for i := 0; i < 200; i++ {
		p.Feed([]byte(fmt.Sprintf("line-%d\n", i)))
	}
	if p.QueueLen() != 50 {
		t.Fatalf("queue depth: want 50, got %d", p.QueueLen())
	}
	if fake.AppendCalls != 0 {
		t.Fatalf("no dispatch before the rate gate: %d", fake.AppendCalls)
	}
	// One slot fires: exactly one append, and it is the oldest surviving
	// line (150, after drop-oldest evicted 0..149).
	p.dispatchOne(context.Background())
	if fake.AppendCalls != 1 {
		t.Fatalf("want 1 append after one slot, got %d", fake.AppendCalls)
	}
	e, err := fake.ReadByIndex(context.Background(), 0)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if e.Message != "line-150" {
		t.Fatalf("dispatched line: %q", e.Message)
	}
}

func TestQuotaRefusalSkipsCostEstimation(t *testing.T) {
	fake := ledgertest.New()
	p := newTestPipeline(t, fake, 2)
	p.Feed([]byte("a\nb\nc\n"))
	ctx := context.Background()
	p.dispatchOne(ctx)
	p.dispatchOne(ctx)
	if fake.AppendCalls != 2 || fake.EstimateCalls != 2 {
		t.Fatalf("first two dispatches: appends=%d estimates=%d", fake.AppendCalls, fake.EstimateCalls)
	}
	// Third attempt is refused by the quota before any ledger call.
	p.dispatchOne(ctx)
	if fake.EstimateCalls != 2 {
		t.Fatalf("refused dispatch must not estimate cost: %d", fake.EstimateCalls)
	}
	if fake.AppendCalls != 2 {
		t.Fatalf("refused dispatch must not append: %d", fake.AppendCalls)
	}
	// The refused line stays queued rather than being destroyed.
	if p.QueueLen() != 1 {
		t.Fatalf("refused line should remain queued: %d", p.QueueLen())
	}
}

func TestQuotaWindowElapses(t *testing.T) {
	fake := ledgertest.New()
	p := newTestPipeline(t, fake, 1)
	clock := time.Unix(1_700_000_000, 0)
	p.now = func() time.Time { return clock }

	p.Feed([]byte("a\nb\n"))
	ctx := context.Background()
	p.dispatchOne(ctx)
	p.dispatchOne(ctx)
	if fake.AppendCalls != 1 {
		t.Fatalf("quota of one: %d appends", fake.AppendCalls)
	}
	clock = clock.Add(25 * time.Hour)
	p.dispatchOne(ctx)
	if fake.AppendCalls != 2 {
		t.Fatalf("new window should admit again: %d appends", fake.AppendCalls)
	}
}

func TestFailedAppendNotRetried(t *testing.T) {
	fake := ledgertest.New()
	p := newTestPipeline(t, fake, 1000)
	fake.AppendErr = ledger.ErrUnreachable
	p.Feed([]byte("doomed\n"))
	p.dispatchOne(context.Background())
	if fake.AppendCalls != 1 {
		t.Fatalf("append attempts: %d", fake.AppendCalls)
	}
	// The line is gone: no re-enqueue, no retry on the next slot.
	if p.QueueLen() != 0 {
		t.Fatalf("failed line must not be re-enqueued: %d", p.QueueLen())
	}
	p.dispatchOne(context.Background())
	if fake.AppendCalls != 1 {
		t.Fatalf("no retry expected: %d", fake.AppendCalls)
	}
	if p.QuotaUsed() != 0 {
		t.Fatalf("failed append must not consume quota: %d", p.QuotaUsed())
	}
}

func TestStopClearsQueueAndRejectsFeed(t *testing.T) {
	fake := ledgertest.New()
	p := newTestPipeline(t, fake, 1000)
	p.Feed([]byte("a\nb\n"))
	p.Stop()
	p.Stop() // idempotent
	if p.QueueLen() != 0 {
		t.Fatalf("queue not cleared: %d", p.QueueLen())
	}
	p.Feed([]byte("late\n"))
	if p.QueueLen() != 0 {
		t.Fatalf("feed after stop must be rejected: %d", p.QueueLen())
	}
}

func TestRunDispatchesOnSchedule(t *testing.T) {
	fake := ledgertest.New()
	logger := testLogger()
	p := New(Options{
		Ledger:           fake,
		Tracker:          health.New(time.Second, logger),
		Logger:           logger,
		QueueCapacity:    10,
		DispatchInterval: 10 * time.Millisecond,
		DailyQuota:       1000,
		QuotaWindow:      24 * time.Hour,
		CallTimeout:      time.Second,
		ErrorThrottle:    time.Second,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() { p.Run(ctx); close(done) }()

	p.Feed([]byte("scheduled\n"))
	deadline := time.Now().Add(2 * time.Second)
	for fake.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if fake.Len() != 1 {
		t.Fatalf("line not dispatched by run loop")
	}

	p.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("run loop did not exit after stop")
	}
}

func TestZeroDispatchIntervalDefaults(t *testing.T) {
	fake := ledgertest.New()
	logger := testLogger()
	p := New(Options{
		Ledger:           fake,
		Tracker:          health.New(time.Second, logger),
		Logger:           logger,
		QueueCapacity:    10,
		DispatchInterval: 0,
		DailyQuota:       1000,
		QuotaWindow:      24 * time.Hour,
		CallTimeout:      time.Second,
		ErrorThrottle:    time.Second,
	})
	if p.interval != time.Second {
		t.Fatalf("interval should default: %v", p.interval)
	}
	// Run must start its ticker without panicking on a zero option.
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { p.Run(ctx); close(done) }()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("run loop did not exit after cancel")
	}
}

func TestStopExcludesConcurrentFeed(t *testing.T) {
	fake := ledgertest.New()
	p := newTestPipeline(t, fake, 1000)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.Feed([]byte(fmt.Sprintf("w%d-%d\n", n, j)))
			}
		}(i)
	}
	p.Stop()
	wg.Wait()
	// Once Stop has returned the queue stays empty no matter how the
	// feeders interleaved with it.
	if p.QueueLen() != 0 {
		t.Fatalf("lines enqueued after stop: %d", p.QueueLen())
	}
}

func TestFlushPartialQueuesTrailingLine(t *testing.T) {
	fake := ledgertest.New()
	p := newTestPipeline(t, fake, 1000)
	p.Feed([]byte("complete\npartial"))
	if p.QueueLen() != 1 {
		t.Fatalf("only the complete line should be queued: %d", p.QueueLen())
	}
	p.FlushPartial()
	if p.QueueLen() != 2 {
		t.Fatalf("partial line should flush on end-of-stream: %d", p.QueueLen())
	}
}
