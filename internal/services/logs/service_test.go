package logsvc

import (
	"context"
	"errors"
	"testing"

	cfgpkg "github.com/rahulshendre/secure-logchain/internal/config"
	"github.com/rahulshendre/secure-logchain/internal/runtime"
	pebblestore "github.com/rahulshendre/secure-logchain/internal/storage/pebble"
	logpkg "github.com/rahulshendre/secure-logchain/pkg/log"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := cfgpkg.Default()
	rt, err := runtime.Open(runtime.Options{
		DataDir: t.TempDir(),
		Fsync:   pebblestore.FsyncModeNever,
		Config:  cfg,
		Logger:  logpkg.NewLogger(logpkg.WithLevel(logpkg.FatalLevel)),
	})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	return New(rt)
}

func TestSubmitAssignsDenseIndices(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		r, err := svc.Submit(ctx, "hello")
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if r.Index != uint64(i) {
			t.Fatalf("index: want %d, got %d", i, r.Index)
		}
		if r.ConfirmationID == "" {
			t.Fatalf("missing confirmation id")
		}
	}
}

func TestSubmitRejectsBlankInput(t *testing.T) {
	svc := newTestService(t)
	for _, in := range []string{"", "   ", "\t\n"} {
		if _, err := svc.Submit(context.Background(), in); !errors.Is(err, ErrMalformedInput) {
			t.Fatalf("input %q: want ErrMalformedInput, got %v", in, err)
		}
	}
}

func TestLatestOnEmptyLedger(t *testing.T) {
	svc := newTestService(t)
	tail, err := svc.Latest(context.Background(), 10)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if tail.Total != 0 || len(tail.Entries) != 0 {
		t.Fatalf("empty ledger tail: total=%d entries=%d", tail.Total, len(tail.Entries))
	}
}

func TestLatestReturnsNewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	msgs := []string{"one", "two", "three", "four", "five"}
	for _, m := range msgs {
		if _, err := svc.Submit(ctx, m); err != nil {
			t.Fatalf("submit %q: %v", m, err)
		}
	}
	tail, err := svc.Latest(ctx, 3)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if tail.Total != 5 {
		t.Fatalf("total: want 5, got %d", tail.Total)
	}
	want := []string{"five", "four", "three"}
	if len(tail.Entries) != len(want) {
		t.Fatalf("entries: %d", len(tail.Entries))
	}
	for i, m := range want {
		if tail.Entries[i].Message != m {
			t.Fatalf("entry %d: want %q, got %q", i, m, tail.Entries[i].Message)
		}
	}
}

func TestLatestDefaultsCount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Submit(ctx, "only"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	tail, err := svc.Latest(ctx, 0)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(tail.Entries) != 1 || tail.Entries[0].Message != "only" {
		t.Fatalf("default-count tail: %+v", tail)
	}
}

func TestHealth(t *testing.T) {
	svc := newTestService(t)
	if err := svc.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}
