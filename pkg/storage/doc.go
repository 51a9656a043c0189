// Package storage provides pluggable persistence backends for the schema
// registry.
//
// # Overview
//
// This package defines the storage abstraction layer, enabling multiple
// backend implementations (PostgreSQL for the relational registry state,
// the local filesystem or S3 for content-addressable SDL text) while
// providing a unified interface for pkg/publisher. It manages schema
// checks, schema versions and their log entries, contracts, and schema
// change approvals.
//
// # Architecture
//
// The storage layer uses interface segregation to compose focused capabilities:
//
//   - SchemaCheckStore: persisted outcomes of schemaCheck calls and rejected publishes
//   - SchemaVersionStore: the append-only version history of a target
//   - SchemaChangeApprovalStore: manual approvals of otherwise-blocking breaking changes
//   - ContractStore: contract definitions and their per-version composed artifacts
//   - SDLStore: content-addressable storage for raw SDL text, keyed by SHA-256
//   - HealthChecker: backend health monitoring
//
// These interfaces compose into the unified Storage interface pkg/publisher depends on.
//
// # Timeouts
//
// Always use a context with a timeout for production code:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//	version, err := store.GetSchemaVersion(ctx, id)
//
// # File Organization
//
//   - interfaces.go: Storage interface definitions and Config
//   - filesystem.go: FileSystemSDLStore, a local-dev SDLStore implementation
//   - postgres/: PostgreSQL implementation of the full Storage interface
//
// # Related Packages
//
//   - pkg/publisher: the sole consumer of storage.Storage
//   - pkg/models: reads schema versions via the context pkg/publisher assembles
//   - pkg/inspector: compares SDL fetched through SDLStore
package storage
