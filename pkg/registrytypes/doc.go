// Package registrytypes defines the core data model of the schema registry:
// targets, schema log entries, schema versions, contracts, schema changes,
// schema checks and their approvals. These are plain value types; the
// behavior that operates on them lives in pkg/inspector, pkg/checks,
// pkg/models and pkg/publisher.
package registrytypes
