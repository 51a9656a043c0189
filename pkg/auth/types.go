package auth

import "context"

// Role represents organization-level roles. Role assignment, token issuance
// and membership storage are owned by the external tenant-access-control
// collaborator; this package only carries the vocabulary the registry
// pipeline itself needs to reason about (e.g. "is this an admin-only
// operation like updateVersionStatus").
type Role string

const (
	RoleAdmin     Role = "admin"     // Full access, including admin-only operations.
	RoleDeveloper Role = "developer" // Can check/publish/delete schemas.
	RoleViewer    Role = "viewer"    // Read-only access.
)

// AuthContext holds the outcome of an authorization decision made by the
// external collaborator, carried through the pipeline via context.Context.
type AuthContext struct {
	UserID         string
	OrganizationID string
	Role           Role
}

// HasRole reports whether the context's role matches or exceeds the
// requested role for admin-gated operations.
func (ac *AuthContext) HasRole(role Role) bool {
	if ac == nil {
		return false
	}
	if ac.Role == RoleAdmin {
		return true
	}
	return ac.Role == role
}

// Authorizer is the delegation point to the external auth collaborator.
// The pipeline calls Authorize before entering the check/publish/delete
// pipeline and never implements user or token storage itself.
type Authorizer interface {
	// Authorize returns an AuthContext if the caller may perform action on
	// targetID, or an error (never a zero-value context) otherwise.
	Authorize(ctx context.Context, targetID string, action Action) (*AuthContext, error)
}

// Action enumerates the operations an Authorizer is asked to gate.
type Action string

const (
	ActionSchemaCheck   Action = "schema:check"
	ActionSchemaPublish Action = "schema:publish"
	ActionSchemaDelete  Action = "schema:delete"
	ActionAdmin         Action = "schema:admin" // updateVersionStatus and other admin-only operations.
)
