// Package config loads, normalizes, and validates janitor configuration.
//
// The TOML document carries the retention thresholds (keep lists, idle days,
// seed ratio and seed time), the Plex and qBittorrent connection details, the
// Discord webhook, and the ambient logging and scheduling knobs. Load applies
// repository defaults, decodes the file, normalizes paths and environment
// fallbacks, and rejects documents that omit required fields.
//
// The resulting *Config is read-only for the duration of a run; callers pass
// it explicitly instead of consulting package state.
package config
