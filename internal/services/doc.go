// Package services defines shared utilities consumed by the external service
// clients (Plex, qBittorrent) and the run orchestration.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and evaluation phases for logging.
//   - Structured error markers plus the Wrap helper, and Classify, which maps
//     a failure to a short label and an operator hint.
package services
