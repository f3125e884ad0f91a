// Package janitor wires configuration, service clients and the retention
// evaluators into a single run.
//
// A run takes an exclusive file lock, tags its logs with a fresh run ID,
// evaluates media to completion and then torrents, records metrics and
// returns a Summary. A torrent evaluator abort is a handled outcome; a media
// delete failure fails the run and skips torrent evaluation.
package janitor
