package storage

import (
	"context"
	"time"

	"github.com/platinummonkey/schemahub/pkg/registrytypes"
	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

// SchemaCheckStore persists the outcome of every schemaCheck call and every
// rejected publish, regardless of whether it advanced the target.
type SchemaCheckStore interface {
	CreateSchemaCheck(ctx context.Context, check *registrytypes.SchemaCheck) error
	GetSchemaCheck(ctx context.Context, id string) (*registrytypes.SchemaCheck, error)
	ApproveFailedSchemaCheck(ctx context.Context, id, approvedBy string) error
	// PurgeExpiredSchemaChecks deletes checks whose ExpiresAt has passed as
	// of now and returns the number of rows removed.
	PurgeExpiredSchemaChecks(ctx context.Context, now time.Time) (int64, error)
}

// SchemaVersionStore persists the append-only version history of a target.
type SchemaVersionStore interface {
	// CreateSchemaVersion inserts a new immutable version and its active log
	// entries in one transaction. actionFn, if non-nil, runs inside the same
	// transaction after the insert succeeds but before commit — the hook a
	// caller uses to enqueue a notification record atomically with the write.
	CreateSchemaVersion(ctx context.Context, version *registrytypes.SchemaVersion, entries []registrytypes.SchemaLogEntry, actionFn func(ctx context.Context) error) error
	GetSchemaVersion(ctx context.Context, id string) (*registrytypes.SchemaVersion, error)
	// GetLatestSchemas resolves a target's active log set into its current
	// subgraph services, alongside the schema version that produced it (nil
	// if the target has never been published to).
	GetLatestSchemas(ctx context.Context, targetID string) ([]schemadoc.Service, *registrytypes.SchemaVersion, error)
	GetMaybeLatestVersion(ctx context.Context, targetID string) (*registrytypes.SchemaVersion, error)
	GetMaybeLatestValidVersion(ctx context.Context, targetID string) (*registrytypes.SchemaVersion, error)
	// GetSchemasForVersion resolves an arbitrary version's active log entry
	// set into subgraph services, for callers that already hold a specific
	// version (e.g. the comparison baseline is "latest" rather than
	// "latest-composable").
	GetSchemasForVersion(ctx context.Context, version *registrytypes.SchemaVersion) ([]schemadoc.Service, error)
	// GetLogEntriesByIDs fetches the full log entry rows for a set of ids,
	// preserving their original identity — used when a new version must
	// carry forward entries it did not itself create.
	GetLogEntriesByIDs(ctx context.Context, ids []string) ([]registrytypes.SchemaLogEntry, error)
	// UpdateSchemaVersionStatus flips a past version's composability flag,
	// the implementation of the admin-only updateVersionStatus operation.
	UpdateSchemaVersionStatus(ctx context.Context, versionID string, valid bool) error
}

// SchemaChangeApprovalStore persists manual approvals of otherwise-blocking
// breaking changes, scoped to a client-supplied context id.
type SchemaChangeApprovalStore interface {
	GetApprovedSchemaChangesForContextID(ctx context.Context, targetID, contextID string) (map[string]registrytypes.SchemaChangeApproval, error)
	ApproveSchemaChange(ctx context.Context, approval registrytypes.SchemaChangeApproval) error
}

// ContractStore persists contract definitions and their per-version composed artifacts.
type ContractStore interface {
	CreateContract(ctx context.Context, contract *registrytypes.Contract) error
	GetContractsForTarget(ctx context.Context, targetID string) ([]registrytypes.Contract, error)
	GetLastValidSchemaVersionContract(ctx context.Context, contractID string) (*registrytypes.SchemaVersionContract, error)
	CreateSchemaVersionContract(ctx context.Context, svc *registrytypes.SchemaVersionContract) error
}

// SDLStore is the content-addressable store for raw SDL text, keyed by the
// SHA-256 hash of its content so identical schemas are stored once.
type SDLStore interface {
	PutSDL(ctx context.Context, sdl string) (hash string, err error)
	GetSDL(ctx context.Context, hash string) (string, error)
}

// ArtifactStore publishes the named CDN artifacts a publish/delete produces,
// keyed artifact/{targetId}[/contracts/{contractName}]/{type} — unlike
// SDLStore this is keyed by name, not content hash, since a target's latest
// artifact must be resolvable without knowing its schema version.
type ArtifactStore interface {
	PutArtifact(ctx context.Context, key string, content []byte, contentType string) error
}

// HealthChecker reports whether the storage backend's dependencies are reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Storage is the canonical storage interface for the registry domain,
// composed of narrow, independently-testable segments.
type Storage interface {
	SchemaCheckStore
	SchemaVersionStore
	SchemaChangeApprovalStore
	ContractStore
	SDLStore
	ArtifactStore
	HealthChecker
}

// Config configures the storage backend.
type Config struct {
	Type string // "filesystem", "postgres"

	FilesystemRoot string

	PostgresURL      string
	PostgresReplicaURLs string
	PostgresMaxConns int
	PostgresMinConns int
	PostgresTimeout  time.Duration

	S3Endpoint       string
	S3Region         string
	S3Bucket         string
	S3AccessKey      string
	S3SecretKey      string
	S3UsePathStyle   bool
	S3ForcePathStyle bool

	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	CacheEnabled bool
	CacheTTL     map[string]time.Duration
	L1CacheSize  int64
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Type:             "filesystem",
		FilesystemRoot:   "/tmp/schemahub",
		PostgresMaxConns: 20,
		PostgresMinConns: 2,
		PostgresTimeout:  10 * time.Second,
		RedisDB:          0,
		RedisMaxRetries:  3,
		RedisPoolSize:    10,
		CacheEnabled:     true,
		L1CacheSize:      10 * 1024 * 1024,
		CacheTTL: map[string]time.Duration{
			"schema_version": 1 * time.Hour,
			"latest":         1 * time.Minute,
			"sdl":            24 * time.Hour,
		},
	}
}
