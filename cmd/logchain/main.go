package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	clientcmd "github.com/rahulshendre/secure-logchain/internal/cmd/client"
	serverrun "github.com/rahulshendre/secure-logchain/internal/cmd/server"
	cfgpkg "github.com/rahulshendre/secure-logchain/internal/config"
	pebblestore "github.com/rahulshendre/secure-logchain/internal/storage/pebble"
	logpkg "github.com/rahulshendre/secure-logchain/pkg/log"
)

func main() {
	// Respect LOGCHAIN_LOG_LEVEL for both CLI and server start output.
	level := os.Getenv("LOGCHAIN_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
	)

	// Redirect standard library logs (used by Pebble) to our logger
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "logchain",
		Short: "logchain runtime CLI",
		Long:  "logchain is a single-binary telemetry log service. This CLI manages the server and basic operations.",
	}

	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start logchain server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			httpAddr, _ := cmd.Flags().GetString("http")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			fsyncIntervalMs, _ := cmd.Flags().GetInt("fsync-interval-ms")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			configPath, _ := cmd.Flags().GetString("config")
			ledgerURL, _ := cmd.Flags().GetString("ledger-url")
			ingestStdin, _ := cmd.Flags().GetBool("ingest-stdin")

			mode := pebblestore.FsyncModeAlways
			switch fsyncMode {
			case "never":
				mode = pebblestore.FsyncModeNever
			case "interval":
				mode = pebblestore.FsyncModeInterval
			case "always":
				mode = pebblestore.FsyncModeAlways
			default:
				return fmt.Errorf("invalid --fsync; use always|interval|never")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg := cfgpkg.Default()
			if configPath != "" {
				loaded, err := cfgpkg.Load(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded
			}
			cfgpkg.FromEnv(&cfg)
			if ledgerURL != "" {
				cfg.LedgerURL = ledgerURL
			}
			if logLevel != "" {
				_ = os.Setenv("LOGCHAIN_LOG_LEVEL", logLevel)
			}
			if logFormat != "" {
				_ = os.Setenv("LOGCHAIN_LOG_FORMAT", logFormat)
			}
			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:       dataDir,
				HTTPAddr:      httpAddr,
				Fsync:         mode,
				FsyncInterval: time.Duration(fsyncIntervalMs) * time.Millisecond,
				Config:        cfg,
				IngestStdin:   ingestStdin,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("http", ":8080", "HTTP listen address")
	serverStartCmd.Flags().String("fsync", "always", "Fsync mode: always|interval|never")
	serverStartCmd.Flags().Int("fsync-interval-ms", 5, "When --fsync=interval, group-commit window in ms (default 5)")
	serverStartCmd.Flags().String("log-level", os.Getenv("LOGCHAIN_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("LOGCHAIN_LOG_FORMAT"), "Log format: text|json (default text)")
	serverStartCmd.Flags().String("config", "", "Config file path (json or yaml)")
	serverStartCmd.Flags().String("ledger-url", os.Getenv("LOGCHAIN_LEDGER_URL"), "Remote ledger base URL (empty = local store)")
	serverStartCmd.Flags().Bool("ingest-stdin", false, "Feed stdin lines into the ingestion pipeline")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// client commands against a running instance
	rootCmd.AddCommand(clientcmd.NewLogCommand(apiURL))
	rootCmd.AddCommand(clientcmd.NewHealthCommand(apiURL))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("LOGCHAIN_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
