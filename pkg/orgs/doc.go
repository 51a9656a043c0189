// Package orgs provides the multi-tenant hierarchy for the schema registry:
// organizations own projects, projects own targets. A project fixes the
// registry model (single vs. federation vs. stitching, modern vs. legacy)
// that pkg/models dispatches on for every target underneath it.
//
// # Hierarchy
//
//	Organization
//	  └─ Project (type: single | federation | stitching, legacy flag)
//	       └─ Target (the unit of version-streaming)
//
// Billing, quota enforcement, membership and invitations are handled by an
// external collaborator in this deployment and are not modeled here.
//
// # Related Packages
//
//   - pkg/registrytypes: Target, SchemaVersion and the rest of the version
//     state machine that lives under a Target.
//   - pkg/auth: the Role type and Authorizer delegation point.
package orgs
