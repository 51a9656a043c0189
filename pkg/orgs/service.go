package orgs

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/google/uuid"
	"github.com/platinummonkey/schemahub/pkg/registrytypes"
)

var tracer = otel.Tracer("schemahub/orgs")

// Service manages the organization/project/target hierarchy.
type Service interface {
	CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*registrytypes.Organization, error)
	GetOrganization(ctx context.Context, id string) (*registrytypes.Organization, error)

	CreateProject(ctx context.Context, req CreateProjectRequest) (*registrytypes.Project, error)
	GetProject(ctx context.Context, id string) (*registrytypes.Project, error)
	UpdateProjectRegistryModel(ctx context.Context, req UpdateProjectRegistryModelRequest) error
	EnableExternalSchemaComposition(ctx context.Context, req EnableExternalSchemaCompositionRequest) error
	UpdateNativeFederation(ctx context.Context, req UpdateNativeFederationRequest) error

	CreateTarget(ctx context.Context, req CreateTargetRequest) (*registrytypes.Target, error)
	GetTarget(ctx context.Context, id string) (*registrytypes.Target, error)
}

// PostgresService is the Postgres-backed implementation of Service.
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService wires a Service against an existing connection pool.
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

func (s *PostgresService) CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*registrytypes.Organization, error) {
	ctx, span := tracer.Start(ctx, "CreateOrganization", trace.WithAttributes(
		attribute.String("db.table", "organizations"),
		attribute.String("org.slug", req.Slug),
	))
	defer span.End()

	org := &registrytypes.Organization{ID: uuid.NewString(), Slug: req.Slug, Name: req.Name}
	const query = `
		INSERT INTO organizations (id, slug, name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	if err := s.db.QueryRowContext(ctx, query, org.ID, org.Slug, org.Name).Scan(&org.CreatedAt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create organization")
		return nil, fmt.Errorf("create organization: %w", err)
	}
	return org, nil
}

func (s *PostgresService) GetOrganization(ctx context.Context, id string) (*registrytypes.Organization, error) {
	ctx, span := tracer.Start(ctx, "GetOrganization", trace.WithAttributes(attribute.String("org.id", id)))
	defer span.End()

	const query = `SELECT id, slug, name, created_at FROM organizations WHERE id = $1`
	org := &registrytypes.Organization{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(&org.ID, &org.Slug, &org.Name, &org.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return org, nil
}

func (s *PostgresService) CreateProject(ctx context.Context, req CreateProjectRequest) (*registrytypes.Project, error) {
	ctx, span := tracer.Start(ctx, "CreateProject", trace.WithAttributes(
		attribute.String("project.slug", req.Slug),
		attribute.String("project.type", string(req.Type)),
	))
	defer span.End()

	proj := &registrytypes.Project{
		ID:                  uuid.NewString(),
		OrganizationID:      req.OrganizationID,
		Slug:                req.Slug,
		Name:                req.Name,
		Type:                req.Type,
		LegacyRegistryModel: req.LegacyRegistryModel,
	}
	const query = `
		INSERT INTO projects (id, organization_id, slug, name, type, legacy_registry_model)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		proj.ID, proj.OrganizationID, proj.Slug, proj.Name, proj.Type, proj.LegacyRegistryModel,
	).Scan(&proj.CreatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create project")
		return nil, fmt.Errorf("create project: %w", err)
	}
	return proj, nil
}

func (s *PostgresService) GetProject(ctx context.Context, id string) (*registrytypes.Project, error) {
	_, span := tracer.Start(ctx, "GetProject", trace.WithAttributes(attribute.String("project.id", id)))
	defer span.End()

	const query = `
		SELECT id, organization_id, slug, name, type, legacy_registry_model,
		       COALESCE(external_composition_url, ''), COALESCE(external_composition_secret, ''),
		       native_federation, created_at
		FROM projects WHERE id = $1
	`
	p := &registrytypes.Project{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.OrganizationID, &p.Slug, &p.Name, &p.Type, &p.LegacyRegistryModel,
		&p.ExternalCompositionURL, &p.ExternalCompositionSecret, &p.NativeFederation, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *PostgresService) UpdateProjectRegistryModel(ctx context.Context, req UpdateProjectRegistryModelRequest) error {
	_, span := tracer.Start(ctx, "UpdateProjectRegistryModel")
	defer span.End()

	const query = `UPDATE projects SET legacy_registry_model = $2 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, req.ProjectID, req.Legacy)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("update registry model: %w", err)
	}
	return checkRowsAffected(res)
}

func (s *PostgresService) EnableExternalSchemaComposition(ctx context.Context, req EnableExternalSchemaCompositionRequest) error {
	_, span := tracer.Start(ctx, "EnableExternalSchemaComposition")
	defer span.End()

	const query = `UPDATE projects SET external_composition_url = $2, external_composition_secret = $3 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, req.ProjectID, req.Endpoint, req.Secret)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("enable external composition: %w", err)
	}
	return checkRowsAffected(res)
}

func (s *PostgresService) UpdateNativeFederation(ctx context.Context, req UpdateNativeFederationRequest) error {
	_, span := tracer.Start(ctx, "UpdateNativeFederation")
	defer span.End()

	const query = `UPDATE projects SET native_federation = $2 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, req.ProjectID, req.Native)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("update native federation: %w", err)
	}
	return checkRowsAffected(res)
}

func (s *PostgresService) CreateTarget(ctx context.Context, req CreateTargetRequest) (*registrytypes.Target, error) {
	_, span := tracer.Start(ctx, "CreateTarget", trace.WithAttributes(attribute.String("target.slug", req.Slug)))
	defer span.End()

	t := &registrytypes.Target{ID: uuid.NewString(), ProjectID: req.ProjectID, Slug: req.Slug, Name: req.Name}
	const query = `
		INSERT INTO targets (id, project_id, slug, name)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	if err := s.db.QueryRowContext(ctx, query, t.ID, t.ProjectID, t.Slug, t.Name).Scan(&t.CreatedAt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create target")
		return nil, fmt.Errorf("create target: %w", err)
	}
	return t, nil
}

func (s *PostgresService) GetTarget(ctx context.Context, id string) (*registrytypes.Target, error) {
	_, span := tracer.Start(ctx, "GetTarget", trace.WithAttributes(attribute.String("target.id", id)))
	defer span.End()

	const query = `
		SELECT id, project_id, slug, name, validation_window_hours, compare_to_previous_composable_version, created_at
		FROM targets WHERE id = $1
	`
	t := &registrytypes.Target{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.ProjectID, &t.Slug, &t.Name, &t.ValidationWindowHours, &t.CompareToPreviousComposableVersion, &t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get target: %w", err)
	}
	return t, nil
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
