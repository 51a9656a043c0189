package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/schemahub/pkg/registrytypes"
	"github.com/platinummonkey/schemahub/pkg/schemadoc"
	"github.com/platinummonkey/schemahub/pkg/storage"
)

var tracer = otel.Tracer("schemahub/storage/postgres")

// PostgresStorage implements storage.Storage using PostgreSQL + S3 + Redis.
type PostgresStorage struct {
	connManager *ConnectionManager
	db          *sql.DB // convenience alias for connManager.Primary()
	s3Client    *S3Client
	redisClient *RedisClient
	config      storage.Config
}

// NewPostgresStorage creates a new PostgreSQL-backed storage.
func NewPostgresStorage(config storage.Config) (*PostgresStorage, error) {
	connConfig := ConnectionConfig{
		PrimaryURL:  config.PostgresURL,
		ReplicaURLs: ParseReplicaURLs(config.PostgresReplicaURLs),
		MaxConns:    config.PostgresMaxConns,
		MinConns:    config.PostgresMinConns,
		Timeout:     config.PostgresTimeout,
		MaxLifetime: 1 * time.Hour,
		MaxIdleTime: 10 * time.Minute,
	}

	connManager, err := NewConnectionManager(connConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}

	db := connManager.Primary()

	var s3Client *S3Client
	if config.S3Endpoint != "" {
		s3Client, err = NewS3Client(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
	}

	var redisClient *RedisClient
	if config.CacheEnabled && config.RedisURL != "" {
		redisClient, err = NewRedisClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
	}

	return &PostgresStorage{
		connManager: connManager,
		db:          db,
		s3Client:    s3Client,
		redisClient: redisClient,
		config:      config,
	}, nil
}

// CreateSchemaCheck inserts a schema check record. Checks are created on
// every schemaCheck call and on every rejected publish, so this always
// runs regardless of outcome.
func (s *PostgresStorage) CreateSchemaCheck(ctx context.Context, check *registrytypes.SchemaCheck) error {
	ctx, span := tracer.Start(ctx, "CreateSchemaCheck",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "INSERT"),
			attribute.String("db.table", "schema_checks"),
			attribute.String("target.id", check.TargetID),
		),
	)
	defer span.End()

	if check.ID == "" {
		check.ID = uuid.NewString()
	}
	if check.CreatedAt.IsZero() {
		check.CreatedAt = time.Now()
	}

	breaking, err := json.Marshal(check.BreakingChanges)
	if err != nil {
		return fmt.Errorf("failed to marshal breaking changes: %w", err)
	}
	safe, err := json.Marshal(check.SafeChanges)
	if err != nil {
		return fmt.Errorf("failed to marshal safe changes: %w", err)
	}
	compErrs, err := json.Marshal(check.CompositionErrors)
	if err != nil {
		return fmt.Errorf("failed to marshal composition errors: %w", err)
	}
	meta, err := json.Marshal(check.IntegrationMetadata)
	if err != nil {
		return fmt.Errorf("failed to marshal integration metadata: %w", err)
	}

	query := `
		INSERT INTO schema_checks (
			id, target_id, schema_sdl, schema_version_id, is_success,
			breaking_changes, safe_changes, policy_warnings, policy_errors,
			composition_errors, composite_schema_sdl, supergraph_sdl, context_id,
			created_at, expires_at, integration_metadata, is_manually_approved, approved_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err = s.db.ExecContext(ctx, query,
		check.ID, check.TargetID, check.SchemaSDL, check.SchemaVersionID, check.IsSuccess,
		breaking, safe, pq.Array(check.PolicyWarnings), pq.Array(check.PolicyErrors),
		compErrs, check.CompositeSchemaSDL, check.SupergraphSDL, check.ContextID,
		check.CreatedAt, check.ExpiresAt, meta, check.IsManuallyApproved, check.ApprovedBy,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create schema check")
		return fmt.Errorf("failed to create schema check: %w", err)
	}

	span.SetStatus(codes.Ok, "schema check created")
	return nil
}

// GetSchemaCheck retrieves a schema check by id.
func (s *PostgresStorage) GetSchemaCheck(ctx context.Context, id string) (*registrytypes.SchemaCheck, error) {
	ctx, span := tracer.Start(ctx, "GetSchemaCheck",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.table", "schema_checks"),
		),
	)
	defer span.End()

	query := `
		SELECT id, target_id, schema_sdl, schema_version_id, is_success,
			breaking_changes, safe_changes, policy_warnings, policy_errors,
			composition_errors, composite_schema_sdl, supergraph_sdl, context_id,
			created_at, expires_at, integration_metadata, is_manually_approved, approved_by
		FROM schema_checks WHERE id = $1
	`

	var check registrytypes.SchemaCheck
	var breaking, safe, compErrs, meta []byte
	var policyWarnings, policyErrors pq.StringArray

	row := s.db.QueryRowContext(ctx, query, id)
	err := row.Scan(
		&check.ID, &check.TargetID, &check.SchemaSDL, &check.SchemaVersionID, &check.IsSuccess,
		&breaking, &safe, &policyWarnings, &policyErrors,
		&compErrs, &check.CompositeSchemaSDL, &check.SupergraphSDL, &check.ContextID,
		&check.CreatedAt, &check.ExpiresAt, &meta, &check.IsManuallyApproved, &check.ApprovedBy,
	)
	if err == sql.ErrNoRows {
		span.SetStatus(codes.Error, "schema check not found")
		return nil, fmt.Errorf("schema check not found: %s", id)
	} else if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get schema check")
		return nil, fmt.Errorf("failed to get schema check: %w", err)
	}

	check.PolicyWarnings = []string(policyWarnings)
	check.PolicyErrors = []string(policyErrors)
	if err := json.Unmarshal(breaking, &check.BreakingChanges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal breaking changes: %w", err)
	}
	if err := json.Unmarshal(safe, &check.SafeChanges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal safe changes: %w", err)
	}
	if err := json.Unmarshal(compErrs, &check.CompositionErrors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal composition errors: %w", err)
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &check.IntegrationMetadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal integration metadata: %w", err)
		}
	}

	span.SetStatus(codes.Ok, "schema check retrieved")
	return &check, nil
}

// ApproveFailedSchemaCheck marks a previously-failed check as manually approved.
func (s *PostgresStorage) ApproveFailedSchemaCheck(ctx context.Context, id, approvedBy string) error {
	ctx, span := tracer.Start(ctx, "ApproveFailedSchemaCheck",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "UPDATE"),
			attribute.String("db.table", "schema_checks"),
		),
	)
	defer span.End()

	query := `UPDATE schema_checks SET is_manually_approved = true, approved_by = $2 WHERE id = $1 AND is_success = false`
	res, err := s.db.ExecContext(ctx, query, id, approvedBy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to approve schema check")
		return fmt.Errorf("failed to approve schema check: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		span.SetStatus(codes.Error, "schema check not found or already succeeded")
		return fmt.Errorf("schema check not found or already succeeded: %s", id)
	}

	span.SetStatus(codes.Ok, "schema check approved")
	return nil
}

// PurgeExpiredSchemaChecks deletes checks whose retention window has passed.
func (s *PostgresStorage) PurgeExpiredSchemaChecks(ctx context.Context, now time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "PurgeExpiredSchemaChecks",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "DELETE"),
			attribute.String("db.table", "schema_checks"),
		),
	)
	defer span.End()

	res, err := s.db.ExecContext(ctx, `DELETE FROM schema_checks WHERE expires_at <= $1`, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to purge expired schema checks")
		return 0, fmt.Errorf("failed to purge expired schema checks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	span.SetAttributes(attribute.Int64("purge.count", n))
	span.SetStatus(codes.Ok, "expired schema checks purged")
	return n, nil
}

// CreateSchemaVersion inserts a new version and its active log entries in a
// single transaction. If actionFn is non-nil it runs inside the same
// transaction after the insert, before commit, so a caller can enqueue a
// notification record atomically with the write.
func (s *PostgresStorage) CreateSchemaVersion(ctx context.Context, v *registrytypes.SchemaVersion, entries []registrytypes.SchemaLogEntry, actionFn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "CreateSchemaVersion",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "INSERT"),
			attribute.String("db.table", "schema_versions"),
			attribute.String("target.id", v.TargetID),
			attribute.Int("log_entries.count", len(entries)),
		),
	)
	defer span.End()

	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to start transaction")
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	compErrs, err := json.Marshal(v.SchemaCompositionErrors)
	if err != nil {
		return fmt.Errorf("failed to marshal composition errors: %w", err)
	}

	// entries holds only the log rows this call introduces (typically the
	// single new PUSH/DELETE entry); v.ActiveLogEntryIDs is the caller's
	// already-computed full active set (new entry plus every inherited
	// entry from other services) and must be written as-is — overwriting
	// it with ids derived from entries alone would drop every other
	// service's active log entry for a composite target.
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO schema_log (id, target_id, kind, service_name, sdl, service_url, metadata, author, commit, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO NOTHING
		`, e.ID, e.TargetID, e.Kind, e.ServiceName, e.SDL, e.ServiceURL, e.Metadata, e.Author, e.Commit, e.CreatedAt)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to insert schema log entry")
			return fmt.Errorf("failed to insert schema log entry: %w", err)
		}
	}
	activeIDs := append([]string(nil), v.ActiveLogEntryIDs...)
	sort.Strings(activeIDs)
	v.ActiveLogEntryIDs = activeIDs

	_, err = tx.ExecContext(ctx, `
		INSERT INTO schema_versions (
			id, target_id, created_at, is_composable, previous_schema_version_id,
			base_schema, composite_schema_sdl, supergraph_sdl, tags,
			schema_composition_errors, active_log_entry_ids
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, v.ID, v.TargetID, v.CreatedAt, v.IsComposable, v.PreviousSchemaVersionID,
		v.BaseSchema, v.CompositeSchemaSDL, v.SupergraphSDL, pq.Array(v.Tags),
		compErrs, pq.Array(v.ActiveLogEntryIDs))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert schema version")
		return fmt.Errorf("failed to insert schema version: %w", err)
	}

	for _, id := range activeIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO schema_version_to_log (schema_version_id, schema_log_entry_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING
		`, v.ID, id)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to link schema log entry")
			return fmt.Errorf("failed to link schema log entry %s: %w", id, err)
		}
	}

	if actionFn != nil {
		if err := actionFn(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "action hook failed")
			return fmt.Errorf("schema version action hook failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if s.redisClient != nil {
		s.redisClient.InvalidateLatest(ctx, v.TargetID)
		s.redisClient.SetSchemaVersion(ctx, v)
	}

	span.SetStatus(codes.Ok, "schema version created")
	return nil
}

// GetSchemaVersion retrieves a version by id.
func (s *PostgresStorage) GetSchemaVersion(ctx context.Context, id string) (*registrytypes.SchemaVersion, error) {
	ctx, span := tracer.Start(ctx, "GetSchemaVersion",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.table", "schema_versions"),
		),
	)
	defer span.End()

	if s.redisClient != nil {
		if v, err := s.redisClient.GetSchemaVersion(ctx, id); err == nil && v != nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			span.SetStatus(codes.Ok, "schema version retrieved from cache")
			return v, nil
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	v, err := s.scanSchemaVersion(ctx, `
		SELECT id, target_id, created_at, is_composable, previous_schema_version_id,
			base_schema, composite_schema_sdl, supergraph_sdl, tags,
			schema_composition_errors, active_log_entry_ids
		FROM schema_versions WHERE id = $1
	`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get schema version")
		return nil, err
	}

	if s.redisClient != nil {
		s.redisClient.SetSchemaVersion(ctx, v)
	}

	span.SetStatus(codes.Ok, "schema version retrieved")
	return v, nil
}

// GetMaybeLatestVersion returns the most recently created version for a
// target, or nil if the target has never been published to.
func (s *PostgresStorage) GetMaybeLatestVersion(ctx context.Context, targetID string) (*registrytypes.SchemaVersion, error) {
	ctx, span := tracer.Start(ctx, "GetMaybeLatestVersion",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.table", "schema_versions"),
			attribute.String("target.id", targetID),
		),
	)
	defer span.End()

	v, err := s.scanSchemaVersion(ctx, `
		SELECT id, target_id, created_at, is_composable, previous_schema_version_id,
			base_schema, composite_schema_sdl, supergraph_sdl, tags,
			schema_composition_errors, active_log_entry_ids
		FROM schema_versions WHERE target_id = $1 ORDER BY created_at DESC LIMIT 1
	`, targetID)
	if err == sql.ErrNoRows {
		span.SetStatus(codes.Ok, "no versions for target")
		return nil, nil
	} else if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get latest version")
		return nil, err
	}

	span.SetStatus(codes.Ok, "latest version retrieved")
	return v, nil
}

// GetMaybeLatestValidVersion returns the most recent composable version for
// a target, the version Check/Publish diff against.
func (s *PostgresStorage) GetMaybeLatestValidVersion(ctx context.Context, targetID string) (*registrytypes.SchemaVersion, error) {
	ctx, span := tracer.Start(ctx, "GetMaybeLatestValidVersion",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.table", "schema_versions"),
			attribute.String("target.id", targetID),
		),
	)
	defer span.End()

	v, err := s.scanSchemaVersion(ctx, `
		SELECT id, target_id, created_at, is_composable, previous_schema_version_id,
			base_schema, composite_schema_sdl, supergraph_sdl, tags,
			schema_composition_errors, active_log_entry_ids
		FROM schema_versions WHERE target_id = $1 AND is_composable = true
		ORDER BY created_at DESC LIMIT 1
	`, targetID)
	if err == sql.ErrNoRows {
		span.SetStatus(codes.Ok, "no valid versions for target")
		return nil, nil
	} else if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get latest valid version")
		return nil, err
	}

	span.SetStatus(codes.Ok, "latest valid version retrieved")
	return v, nil
}

// GetLatestSchemas resolves a target's active log entries into the subgraph
// services backing its current composable version.
func (s *PostgresStorage) GetLatestSchemas(ctx context.Context, targetID string) ([]schemadoc.Service, *registrytypes.SchemaVersion, error) {
	ctx, span := tracer.Start(ctx, "GetLatestSchemas",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.table", "schema_log"),
			attribute.String("target.id", targetID),
		),
	)
	defer span.End()

	v, err := s.GetMaybeLatestValidVersion(ctx, targetID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve latest valid version")
		return nil, nil, err
	}
	if v == nil {
		span.SetStatus(codes.Ok, "target has no published schema")
		return nil, nil, nil
	}

	services, err := s.GetSchemasForVersion(ctx, v)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve services for version")
		return nil, nil, err
	}

	span.SetStatus(codes.Ok, "latest schemas retrieved")
	return services, v, nil
}

// GetSchemasForVersion resolves one version's active log entries into the
// subgraph services it was composed from.
func (s *PostgresStorage) GetSchemasForVersion(ctx context.Context, v *registrytypes.SchemaVersion) ([]schemadoc.Service, error) {
	ctx, span := tracer.Start(ctx, "GetSchemasForVersion",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.table", "schema_log"),
			attribute.String("schema_version.id", v.ID),
		),
	)
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT service_name, sdl, service_url FROM schema_log
		WHERE id = ANY($1) AND kind = 'PUSH'
	`, pq.Array(v.ActiveLogEntryIDs))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query schema log")
		return nil, fmt.Errorf("failed to query schema log: %w", err)
	}
	defer rows.Close()

	var services []schemadoc.Service
	for rows.Next() {
		var svc schemadoc.Service
		if err := rows.Scan(&svc.Name, &svc.SDL, &svc.URL); err != nil {
			return nil, fmt.Errorf("failed to scan schema log row: %w", err)
		}
		services = append(services, svc)
	}

	span.SetStatus(codes.Ok, "schemas for version retrieved")
	return services, nil
}

// GetLogEntriesByIDs fetches full schema_log rows (including their stable
// id and kind), for callers that need to carry an entry's identity forward
// into a new version's active set rather than just its rendered content.
func (s *PostgresStorage) GetLogEntriesByIDs(ctx context.Context, ids []string) ([]registrytypes.SchemaLogEntry, error) {
	ctx, span := tracer.Start(ctx, "GetLogEntriesByIDs",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.table", "schema_log"),
		),
	)
	defer span.End()

	if len(ids) == 0 {
		span.SetStatus(codes.Ok, "no ids requested")
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target_id, kind, service_name, sdl, service_url, metadata, author, commit, created_at
		FROM schema_log
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query schema log")
		return nil, fmt.Errorf("failed to query schema log: %w", err)
	}
	defer rows.Close()

	var entries []registrytypes.SchemaLogEntry
	for rows.Next() {
		var e registrytypes.SchemaLogEntry
		if err := rows.Scan(&e.ID, &e.TargetID, &e.Kind, &e.ServiceName, &e.SDL, &e.ServiceURL, &e.Metadata, &e.Author, &e.Commit, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan schema log row: %w", err)
		}
		entries = append(entries, e)
	}

	span.SetStatus(codes.Ok, "log entries retrieved")
	return entries, nil
}

// UpdateSchemaVersionStatus flips a past version's composability flag. The
// caller (pkg/api's updateVersionStatus handler) republishes CDN artifacts
// via publisher.RepublishArtifacts when the flipped version becomes the new
// latest-composable version.
func (s *PostgresStorage) UpdateSchemaVersionStatus(ctx context.Context, versionID string, valid bool) error {
	ctx, span := tracer.Start(ctx, "UpdateSchemaVersionStatus",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "UPDATE"),
			attribute.String("db.table", "schema_versions"),
			attribute.String("version.id", versionID),
		),
	)
	defer span.End()

	res, err := s.db.ExecContext(ctx, `
		UPDATE schema_versions SET is_composable = $2 WHERE id = $1
	`, versionID, valid)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update schema version status")
		return fmt.Errorf("failed to update schema version status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		span.SetStatus(codes.Error, "schema version not found")
		return sql.ErrNoRows
	}

	span.SetStatus(codes.Ok, "schema version status updated")
	return nil
}

func (s *PostgresStorage) scanSchemaVersion(ctx context.Context, query string, args ...interface{}) (*registrytypes.SchemaVersion, error) {
	var v registrytypes.SchemaVersion
	var compErrs []byte
	var tags, activeIDs pq.StringArray

	row := s.db.QueryRowContext(ctx, query, args...)
	err := row.Scan(
		&v.ID, &v.TargetID, &v.CreatedAt, &v.IsComposable, &v.PreviousSchemaVersionID,
		&v.BaseSchema, &v.CompositeSchemaSDL, &v.SupergraphSDL, &tags,
		&compErrs, &activeIDs,
	)
	if err != nil {
		return nil, err
	}
	v.Tags = []string(tags)
	v.ActiveLogEntryIDs = []string(activeIDs)
	if len(compErrs) > 0 {
		if err := json.Unmarshal(compErrs, &v.SchemaCompositionErrors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal composition errors: %w", err)
		}
	}
	return &v, nil
}

// GetApprovedSchemaChangesForContextID returns approvals previously recorded
// for this target under this context id, keyed by schema change id.
func (s *PostgresStorage) GetApprovedSchemaChangesForContextID(ctx context.Context, targetID, contextID string) (map[string]registrytypes.SchemaChangeApproval, error) {
	ctx, span := tracer.Start(ctx, "GetApprovedSchemaChangesForContextID",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.table", "schema_change_approvals"),
			attribute.String("target.id", targetID),
			attribute.String("context.id", contextID),
		),
	)
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT target_id, context_id, schema_change_id, snapshot, approved_by, approved_at
		FROM schema_change_approvals WHERE target_id = $1 AND context_id = $2
	`, targetID, contextID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query schema change approvals")
		return nil, fmt.Errorf("failed to query schema change approvals: %w", err)
	}
	defer rows.Close()

	out := make(map[string]registrytypes.SchemaChangeApproval)
	for rows.Next() {
		var a registrytypes.SchemaChangeApproval
		var snapshot []byte
		if err := rows.Scan(&a.TargetID, &a.ContextID, &a.SchemaChangeID, &snapshot, &a.ApprovedBy, &a.ApprovedAt); err != nil {
			return nil, fmt.Errorf("failed to scan schema change approval: %w", err)
		}
		if err := json.Unmarshal(snapshot, &a.Snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal change snapshot: %w", err)
		}
		out[a.SchemaChangeID] = a
	}

	span.SetStatus(codes.Ok, "schema change approvals retrieved")
	return out, nil
}

// ApproveSchemaChange records a manual approval of a breaking change.
func (s *PostgresStorage) ApproveSchemaChange(ctx context.Context, approval registrytypes.SchemaChangeApproval) error {
	ctx, span := tracer.Start(ctx, "ApproveSchemaChange",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "INSERT"),
			attribute.String("db.table", "schema_change_approvals"),
		),
	)
	defer span.End()

	snapshot, err := json.Marshal(approval.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal change snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO schema_change_approvals (target_id, context_id, schema_change_id, snapshot, approved_by, approved_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (target_id, context_id, schema_change_id) DO UPDATE
			SET approved_by = EXCLUDED.approved_by, approved_at = EXCLUDED.approved_at
	`, approval.TargetID, approval.ContextID, approval.SchemaChangeID, snapshot, approval.ApprovedBy, approval.ApprovedAt)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to record schema change approval")
		return fmt.Errorf("failed to record schema change approval: %w", err)
	}

	span.SetStatus(codes.Ok, "schema change approval recorded")
	return nil
}

// CreateContract inserts a new contract definition.
func (s *PostgresStorage) CreateContract(ctx context.Context, c *registrytypes.Contract) error {
	ctx, span := tracer.Start(ctx, "CreateContract",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "INSERT"),
			attribute.String("db.table", "contracts"),
			attribute.String("contract.name", c.Name),
		),
	)
	defer span.End()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts (id, target_id, name, include_tags, exclude_tags, remove_unreachable_types, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.TargetID, c.Name, pq.Array(c.IncludeTags), pq.Array(c.ExcludeTags), c.RemoveUnreachableTypesFromPublicAPISchema, c.CreatedAt)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create contract")
		return fmt.Errorf("failed to create contract: %w", err)
	}

	span.SetStatus(codes.Ok, "contract created")
	return nil
}

// GetContractsForTarget lists all contracts owned by a target.
func (s *PostgresStorage) GetContractsForTarget(ctx context.Context, targetID string) ([]registrytypes.Contract, error) {
	ctx, span := tracer.Start(ctx, "GetContractsForTarget",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.table", "contracts"),
			attribute.String("target.id", targetID),
		),
	)
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target_id, name, include_tags, exclude_tags, remove_unreachable_types, created_at
		FROM contracts WHERE target_id = $1 ORDER BY created_at ASC
	`, targetID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query contracts")
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var out []registrytypes.Contract
	for rows.Next() {
		var c registrytypes.Contract
		var include, exclude pq.StringArray
		if err := rows.Scan(&c.ID, &c.TargetID, &c.Name, &include, &exclude, &c.RemoveUnreachableTypesFromPublicAPISchema, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		c.IncludeTags = []string(include)
		c.ExcludeTags = []string(exclude)
		out = append(out, c)
	}

	span.SetStatus(codes.Ok, "contracts retrieved")
	return out, nil
}

// GetLastValidSchemaVersionContract returns the most recent composable
// per-contract artifact, the one a new contract check/publish chains from.
func (s *PostgresStorage) GetLastValidSchemaVersionContract(ctx context.Context, contractID string) (*registrytypes.SchemaVersionContract, error) {
	ctx, span := tracer.Start(ctx, "GetLastValidSchemaVersionContract",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.table", "schema_version_contracts"),
			attribute.String("contract.id", contractID),
		),
	)
	defer span.End()

	var svc registrytypes.SchemaVersionContract
	var compErrs []byte
	row := s.db.QueryRowContext(ctx, `
		SELECT id, schema_version_id, contract_id, composite_schema_sdl, supergraph_sdl,
			is_composable, schema_composition_errors, last_schema_version_contract_id
		FROM schema_version_contracts
		WHERE contract_id = $1 AND is_composable = true
		ORDER BY id DESC LIMIT 1
	`, contractID)
	err := row.Scan(&svc.ID, &svc.SchemaVersionID, &svc.ContractID, &svc.CompositeSchemaSDL, &svc.SupergraphSDL,
		&svc.IsComposable, &compErrs, &svc.LastSchemaVersionContractID)
	if err == sql.ErrNoRows {
		span.SetStatus(codes.Ok, "no valid schema version contract yet")
		return nil, nil
	} else if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get schema version contract")
		return nil, fmt.Errorf("failed to get schema version contract: %w", err)
	}
	if len(compErrs) > 0 {
		if err := json.Unmarshal(compErrs, &svc.SchemaCompositionErrors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal composition errors: %w", err)
		}
	}

	span.SetStatus(codes.Ok, "schema version contract retrieved")
	return &svc, nil
}

// CreateSchemaVersionContract records one contract's composed artifact for a
// schema version.
func (s *PostgresStorage) CreateSchemaVersionContract(ctx context.Context, svc *registrytypes.SchemaVersionContract) error {
	ctx, span := tracer.Start(ctx, "CreateSchemaVersionContract",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "INSERT"),
			attribute.String("db.table", "schema_version_contracts"),
			attribute.String("contract.id", svc.ContractID),
		),
	)
	defer span.End()

	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}

	compErrs, err := json.Marshal(svc.SchemaCompositionErrors)
	if err != nil {
		return fmt.Errorf("failed to marshal composition errors: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO schema_version_contracts (
			id, schema_version_id, contract_id, composite_schema_sdl, supergraph_sdl,
			is_composable, schema_composition_errors, last_schema_version_contract_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, svc.ID, svc.SchemaVersionID, svc.ContractID, svc.CompositeSchemaSDL, svc.SupergraphSDL,
		svc.IsComposable, compErrs, svc.LastSchemaVersionContractID)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create schema version contract")
		return fmt.Errorf("failed to create schema version contract: %w", err)
	}

	span.SetStatus(codes.Ok, "schema version contract created")
	return nil
}

// PutSDL uploads SDL to the content-addressable store and returns its hash.
func (s *PostgresStorage) PutSDL(ctx context.Context, sdl string) (string, error) {
	ctx, span := tracer.Start(ctx, "PutSDL",
		trace.WithAttributes(attribute.String("storage.backend", "s3")),
	)
	defer span.End()

	if s.s3Client == nil {
		span.SetStatus(codes.Error, "s3 client not initialized")
		return "", fmt.Errorf("s3 client not initialized")
	}

	hash, err := s.s3Client.PutSDLWithHash(ctx, sdl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to put sdl")
		return "", err
	}

	span.SetStatus(codes.Ok, "sdl stored")
	return hash, nil
}

// GetSDL retrieves SDL text by its content hash.
func (s *PostgresStorage) GetSDL(ctx context.Context, hash string) (string, error) {
	ctx, span := tracer.Start(ctx, "GetSDL",
		trace.WithAttributes(attribute.String("storage.backend", "s3")),
	)
	defer span.End()

	if s.s3Client == nil {
		span.SetStatus(codes.Error, "s3 client not initialized")
		return "", fmt.Errorf("s3 client not initialized")
	}

	sdl, err := s.s3Client.GetSDLByHash(ctx, hash)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get sdl")
		return "", err
	}

	span.SetStatus(codes.Ok, "sdl retrieved")
	return sdl, nil
}

// PutArtifact uploads a named CDN artifact, keyed by the caller-supplied
// artifact/{targetId}[/contracts/{contractName}]/{type} path rather than by
// content hash, so it always overwrites the previous artifact at that key.
func (s *PostgresStorage) PutArtifact(ctx context.Context, key string, content []byte, contentType string) error {
	ctx, span := tracer.Start(ctx, "PutArtifact",
		trace.WithAttributes(attribute.String("storage.backend", "s3"), attribute.String("artifact.key", key)),
	)
	defer span.End()

	if s.s3Client == nil {
		span.SetStatus(codes.Error, "s3 client not initialized")
		return fmt.Errorf("s3 client not initialized")
	}

	if err := s.s3Client.PutObject(ctx, key, bytes.NewReader(content), contentType); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to put artifact")
		return err
	}

	span.SetStatus(codes.Ok, "artifact stored")
	return nil
}

// HealthCheck verifies the database, and if configured, S3 and Redis are reachable.
func (s *PostgresStorage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres health check failed: %w", err)
	}
	if s.s3Client != nil {
		if err := s.s3Client.HealthCheck(ctx); err != nil {
			return err
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}
	return nil
}

// InvalidateCache drops cached entries matching the given key patterns.
func (s *PostgresStorage) InvalidateCache(ctx context.Context, patterns ...string) error {
	if s.redisClient == nil {
		return nil
	}
	return s.redisClient.InvalidatePatterns(ctx, patterns...)
}

// GetDB returns the primary database connection, for health checks and tests.
func (s *PostgresStorage) GetDB() *sql.DB {
	return s.db
}

// GetRedis returns the Redis client, nil if caching is disabled.
func (s *PostgresStorage) GetRedis() *RedisClient {
	return s.redisClient
}

// GetConnectionManager returns the underlying connection manager.
func (s *PostgresStorage) GetConnectionManager() *ConnectionManager {
	return s.connManager
}

func (s *PostgresStorage) primary() *sql.DB {
	return s.connManager.Primary()
}

func (s *PostgresStorage) replica() *sql.DB {
	return s.connManager.Replica()
}

// Close closes all connections.
func (s *PostgresStorage) Close() error {
	if s.db != nil {
		s.db.Close()
	}
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	return nil
}

// Verify that PostgresStorage implements storage.Storage at compile time.
var _ storage.Storage = (*PostgresStorage)(nil)
