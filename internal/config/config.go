package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// HTTPAddr is the listen address for the HTTP API.
	HTTPAddr string `json:"httpAddr" yaml:"httpAddr"`
	// DataDir holds the local ledger store. Empty means the OS default.
	DataDir string `json:"dataDir" yaml:"dataDir"`
	// Producer is the identity stamped on every appended entry.
	Producer string `json:"producer" yaml:"producer"`
	// LedgerURL, when set, points at a remote ledger HTTP API instead of the
	// local store.
	LedgerURL string `json:"ledgerUrl" yaml:"ledgerUrl"`
	// CallTimeoutMs bounds every individual ledger call (read, cost estimate,
	// append). Distinct from the dispatch interval.
	CallTimeoutMs int `json:"callTimeoutMs" yaml:"callTimeoutMs"`

	Ingest IngestConfig `json:"ingest" yaml:"ingest"`
	Locate LocateConfig `json:"locate" yaml:"locate"`
}

// IngestConfig tunes the ingestion pipeline.
type IngestConfig struct {
	// QueueCapacity is the maximum number of pending lines held before the
	// oldest is evicted.
	QueueCapacity int `json:"queueCapacity" yaml:"queueCapacity"`
	// DispatchIntervalMs is the minimum spacing between two appends.
	DispatchIntervalMs int `json:"dispatchIntervalMs" yaml:"dispatchIntervalMs"`
	// DailyQuota caps successful appends per quota window.
	DailyQuota int `json:"dailyQuota" yaml:"dailyQuota"`
	// QuotaWindowHours is the rolling window length for the quota.
	QuotaWindowHours int `json:"quotaWindowHours" yaml:"quotaWindowHours"`
	// ErrorThrottleMs spaces out error notifications while the ledger is
	// unreachable.
	ErrorThrottleMs int `json:"errorThrottleMs" yaml:"errorThrottleMs"`
}

// LocateConfig tunes index discovery and tail retrieval.
type LocateConfig struct {
	// ProbeCeiling is the index the coarse probe starts from.
	ProbeCeiling uint64 `json:"probeCeiling" yaml:"probeCeiling"`
	// ProbeStride is the backward step between coarse probes.
	ProbeStride uint64 `json:"probeStride" yaml:"probeStride"`
	// DefaultTailSize is the entry count returned when the caller does not ask
	// for a specific n.
	DefaultTailSize int `json:"defaultTailSize" yaml:"defaultTailSize"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		HTTPAddr:      ":8080",
		Producer:      "logchain",
		CallTimeoutMs: 10_000,
		Ingest: IngestConfig{
			QueueCapacity:      50,
			DispatchIntervalMs: 1000,
			DailyQuota:         1000,
			QuotaWindowHours:   24,
			ErrorThrottleMs:    5000,
		},
		Locate: LocateConfig{
			ProbeCeiling:    10_000,
			ProbeStride:     500,
			DefaultTailSize: 100,
		},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// CallTimeout returns the per-call ledger timeout as a duration.
func (c Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutMs) * time.Millisecond
}

// DispatchInterval returns the rate-gate interval as a duration.
func (c IngestConfig) DispatchInterval() time.Duration {
	return time.Duration(c.DispatchIntervalMs) * time.Millisecond
}

// QuotaWindow returns the quota window length as a duration.
func (c IngestConfig) QuotaWindow() time.Duration {
	return time.Duration(c.QuotaWindowHours) * time.Hour
}

// ErrorThrottle returns the notification throttle interval as a duration.
func (c IngestConfig) ErrorThrottle() time.Duration {
	return time.Duration(c.ErrorThrottleMs) * time.Millisecond
}
