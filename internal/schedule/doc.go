// Package schedule triggers janitor runs from a cron expression.
//
// Runs never overlap: a trigger that fires while the previous run is still in
// progress is skipped and logged. Stop waits for an in-flight run to finish.
package schedule
