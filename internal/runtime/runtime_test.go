package runtime

import (
	"context"
	"testing"

	cfgpkg "github.com/rahulshendre/secure-logchain/internal/config"
	"github.com/rahulshendre/secure-logchain/internal/ledger"
	pebblestore "github.com/rahulshendre/secure-logchain/internal/storage/pebble"
	logpkg "github.com/rahulshendre/secure-logchain/pkg/log"
)

func testLogger() logpkg.Logger {
	return logpkg.NewLogger(logpkg.WithLevel(logpkg.FatalLevel))
}

func TestOpenLocalAndClose(t *testing.T) {
	rt, err := Open(Options{
		DataDir: t.TempDir(),
		Fsync:   pebblestore.FsyncModeNever,
		Config:  cfgpkg.Default(),
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if rt.Ledger() == nil || rt.Pipeline() == nil || rt.Tracker() == nil || rt.Locator() == nil || rt.Tail() == nil {
		t.Fatalf("component not wired")
	}
	if rt.Registry() == nil {
		t.Fatalf("metrics registry not wired")
	}
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestOpenLocalAppendReadBack(t *testing.T) {
	rt, err := Open(Options{
		DataDir: t.TempDir(),
		Fsync:   pebblestore.FsyncModeNever,
		Config:  cfgpkg.Default(),
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	ctx := context.Background()
	r, err := rt.Ledger().Append(ctx, "wired")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	e, err := rt.Ledger().ReadByIndex(ctx, r.Index)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if e.Message != "wired" {
		t.Fatalf("message: %q", e.Message)
	}
}

func TestOpenRemoteUsesHTTPLedger(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.LedgerURL = "http://127.0.0.1:19999"
	rt, err := Open(Options{Config: cfg, Logger: testLogger()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	// No local store to check; remote health follows the tracker, which
	// starts out assuming reachability.
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("remote health before any failure: %v", err)
	}
	rt.Tracker().ObserveFailure(ledger.ErrUnreachable)
	if err := rt.CheckHealth(context.Background()); err == nil {
		t.Fatalf("health should fail once the tracker marks the ledger unreachable")
	}
}
