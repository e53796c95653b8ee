// Package config loads logchain configuration from defaults, an optional
// JSON or YAML file, and LOGCHAIN_* environment variable overlays, in that
// order of precedence.
package config
