package config

import (
	"os"
	"strconv"
)

// FromEnv overlays LOGCHAIN_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("LOGCHAIN_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("LOGCHAIN_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LOGCHAIN_PRODUCER"); v != "" {
		cfg.Producer = v
	}
	if v := os.Getenv("LOGCHAIN_LEDGER_URL"); v != "" {
		cfg.LedgerURL = v
	}
	setInt(&cfg.CallTimeoutMs, "LOGCHAIN_CALL_TIMEOUT_MS")
	setInt(&cfg.Ingest.QueueCapacity, "LOGCHAIN_QUEUE_CAPACITY")
	setInt(&cfg.Ingest.DispatchIntervalMs, "LOGCHAIN_DISPATCH_INTERVAL_MS")
	setInt(&cfg.Ingest.DailyQuota, "LOGCHAIN_DAILY_QUOTA")
	setInt(&cfg.Ingest.QuotaWindowHours, "LOGCHAIN_QUOTA_WINDOW_HOURS")
	setInt(&cfg.Ingest.ErrorThrottleMs, "LOGCHAIN_ERROR_THROTTLE_MS")
	setUint64(&cfg.Locate.ProbeCeiling, "LOGCHAIN_PROBE_CEILING")
	setUint64(&cfg.Locate.ProbeStride, "LOGCHAIN_PROBE_STRIDE")
	setInt(&cfg.Locate.DefaultTailSize, "LOGCHAIN_TAIL_SIZE")
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setUint64(dst *uint64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}
