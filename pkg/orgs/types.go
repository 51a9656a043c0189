package orgs

import (
	"errors"

	"github.com/platinummonkey/schemahub/pkg/registrytypes"
)

// ErrNotFound is returned by Service lookups when the requested
// organization, project or target does not exist.
var ErrNotFound = errors.New("orgs: not found")

// CreateOrganizationRequest describes a new organization to provision.
type CreateOrganizationRequest struct {
	Slug string
	Name string
}

// CreateProjectRequest describes a new project under an organization.
type CreateProjectRequest struct {
	OrganizationID string
	Slug           string
	Name           string
	Type           registrytypes.ProjectType
	LegacyRegistryModel bool
}

// CreateTargetRequest describes a new target under a project.
type CreateTargetRequest struct {
	ProjectID string
	Slug      string
	Name      string
}

// UpdateProjectRegistryModelRequest is the input to updateProjectRegistryModel:
// flips a project between modern and legacy dispatch for every target
// underneath it.
type UpdateProjectRegistryModelRequest struct {
	ProjectID string
	Legacy    bool
}

// EnableExternalSchemaCompositionRequest is the input to
// enableExternalSchemaComposition: points composition for this project at a
// user-controlled HTTP endpoint, HMAC-signed with Secret.
type EnableExternalSchemaCompositionRequest struct {
	ProjectID string
	Endpoint  string
	Secret    string
}

// UpdateNativeFederationRequest is the input to updateNativeFederation:
// toggles in-process native composition vs. the legacy remote composer for
// a federation project.
type UpdateNativeFederationRequest struct {
	ProjectID string
	Native    bool
}
