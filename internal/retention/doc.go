// Package retention decides which watched media and which seeded torrents are
// due for removal, and carries out or simulates the removal.
//
// Two evaluators share a Policy built once from configuration:
//   - MediaEvaluator walks library sections and deletes movies and episodes
//     whose last view is older than the idle threshold, honoring keep lists.
//   - TorrentEvaluator deletes torrents that reached the ratio or seed-time
//     threshold and reports the free-space change after each removal.
//
// Both evaluators depend only on small capability interfaces (MediaServer,
// TorrentClient, Notifier) so they can be exercised against fakes. Every
// evaluated item produces a Decision; the collected Report feeds the plan
// command, run metrics and the run summary log line.
package retention
