// Package metrics exposes janitor run metrics in the Prometheus format.
//
// Metrics:
//   - janitor_runs_total{result}: completed runs by outcome
//   - janitor_run_duration_seconds: wall time of each run
//   - janitor_media_deleted_total{kind}: movies and episodes removed
//   - janitor_torrents_deleted_total{reason}: torrents removed, by threshold
//   - janitor_freed_bytes_total: free space gained from torrent removals
//   - janitor_last_run_timestamp_seconds: unix time of the last finished run
//
// Dry-run removals are not counted as deletions. The collector owns a private
// registry; Handler serves it for the daemon's /metrics endpoint.
package metrics
