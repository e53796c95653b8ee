package serverrun

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	cfgpkg "github.com/rahulshendre/secure-logchain/internal/config"
	"github.com/rahulshendre/secure-logchain/internal/runtime"
	httpserver "github.com/rahulshendre/secure-logchain/internal/server/http"
	logsvc "github.com/rahulshendre/secure-logchain/internal/services/logs"
	pebblestore "github.com/rahulshendre/secure-logchain/internal/storage/pebble"
	logpkg "github.com/rahulshendre/secure-logchain/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

// small wrapper to allow testing; replaced by os.Getenv at build time
var getenv = func(key string) string { return os.Getenv(key) }

// stdin is the ingestion source when Options.IngestStdin is set. It must be
// closable so shutdown can unblock the feeder's pending Read.
var stdin io.ReadCloser = os.Stdin

type Options struct {
	DataDir       string
	HTTPAddr      string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	// IngestStdin feeds the process's standard input into the pipeline,
	// line by line, until end-of-stream.
	IngestStdin bool
}

// Run starts the HTTP server and the ingestion pipeline and blocks until ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context. We layer
	// a local signal context over the provided one.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &logpkg.Config{
		Level:  getenvDefault("LOGCHAIN_LOG_LEVEL", "info"),
		Format: getenvDefault("LOGCHAIN_LOG_FORMAT", "text"),
	}
	procLogger, err := logpkg.ApplyConfig(cfg)
	if err != nil {
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(cfg.Level); e == nil {
			lvl = l
		}
		procLogger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}

	// Redirect stdlib logs (e.g., Pebble) to our logger
	logpkg.RedirectStdLog(procLogger)

	if opts.HTTPAddr == "" {
		opts.HTTPAddr = opts.Config.HTTPAddr
	}
	if opts.DataDir == "" {
		opts.DataDir = opts.Config.DataDir
	}
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	storeDir := filepath.Join(opts.DataDir, "store")
	rt, err := runtime.Open(runtime.Options{
		DataDir:       storeDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Config:        opts.Config,
		Logger:        procLogger,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	procLogger.Info("Starting logchain server",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("ledger_url", opts.Config.LedgerURL),
		logpkg.Str("level", cfg.Level),
		logpkg.Str("format", cfg.Format),
		logpkg.Bool("ingest_stdin", opts.IngestStdin),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		rt.Pipeline().Run(sctx)
	}()

	if opts.IngestStdin {
		wg.Add(1)
		go func() {
			defer wg.Done()
			feedFrom(sctx, rt, procLogger)
		}()
	}

	svc := logsvc.NewWithLogger(rt, procLogger)
	hsrv := httpserver.NewWithService(rt, svc, procLogger)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
			procLogger.Error("http server error", logpkg.Err(err))
		}
	}()

	<-sctx.Done()
	// Shut the server down before the runtime so in-flight handlers don't
	// race a closing store. Closing stdin unblocks the feeder's pending
	// Read; without it wg.Wait would hang on the feed goroutine.
	hsrv.Close()
	if opts.IngestStdin {
		_ = stdin.Close()
	}
	rt.Pipeline().Stop()
	wg.Wait()
	return nil
}

// feedFrom copies stdin into the pipeline in chunks until end-of-stream or
// shutdown, then flushes any trailing partial line.
func feedFrom(ctx context.Context, rt *runtime.Runtime, logger logpkg.Logger) {
	buf := make([]byte, 32*1024)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := stdin.Read(buf)
		if n > 0 {
			rt.Pipeline().Feed(buf[:n])
		}
		if err != nil {
			// A closed stdin is the normal shutdown path, not a fault.
			if err != io.EOF && !errors.Is(err, os.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
				logger.Warn("stdin ingest stopped", logpkg.Err(err))
			}
			rt.Pipeline().FlushPartial()
			return
		}
	}
}
