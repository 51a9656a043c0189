// Package purge runs the background worker that deletes expired schema
// checks on a cron schedule, keeping the schema_checks table from growing
// without bound. Scheduling uses robfig/cron/v3; each run is dispatched
// through pkg/async.SafeGo for panic recovery and a hard timeout, the same
// discipline applied to all background work in this codebase.
package purge
