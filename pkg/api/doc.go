// Package api provides the HTTP entrypoint for the schema registry: the
// check/publish/delete pipeline and the org/project/target configuration
// surface, exposed as a gorilla/mux-routed server.
//
// # Overview
//
// Server wires pkg/publisher (the authoritative check/publish/delete
// pipeline), pkg/orgs (tenant hierarchy), and pkg/storage (direct reads for
// the admin-only approve/updateVersionStatus/createContract operations)
// behind HTTP handlers. Tenant resolution — loading the organization,
// project, and target named in the URL — happens once per request in
// pkg/middleware.TenantContextMiddleware, not per handler.
//
// # Routes
//
//	POST /api/v1/organizations                                                          - createOrganization
//	POST /api/v1/organizations/{org_id}/projects                                         - createProject
//	POST /api/v1/organizations/{org_id}/projects/{project_id}/targets                    - createTarget
//	PUT  /api/v1/organizations/{org_id}/projects/{project_id}/registry-model             - updateProjectRegistryModel
//	PUT  /api/v1/organizations/{org_id}/projects/{project_id}/external-composition       - enableExternalSchemaComposition
//	PUT  /api/v1/organizations/{org_id}/projects/{project_id}/native-federation          - updateNativeFederation
//	POST /api/v1/targets/{target_id}/check                                               - schemaCheck
//	POST /api/v1/targets/{target_id}/publish                                             - schemaPublish
//	POST /api/v1/targets/{target_id}/delete                                              - schemaDelete
//	POST /api/v1/targets/{target_id}/contracts                                           - createContract
//	POST /api/v1/targets/{target_id}/checks/{check_id}/approve                           - approveFailedSchemaCheck (admin)
//	PUT  /api/v1/targets/{target_id}/versions/{version_id}/status                        - updateVersionStatus (admin)
//
// # Authorization
//
// schemaCheck/Publish/Delete authorize inline inside pkg/publisher — one
// auth.Action per operation — so the HTTP layer does not duplicate that
// decision. The two admin-only operations that bypass the publisher
// (approveFailedSchemaCheck, updateVersionStatus) call the Authorizer
// directly against auth.ActionAdmin.
//
// # Related Packages
//
//   - pkg/publisher: the check/publish/delete pipeline
//   - pkg/orgs: organization/project/target hierarchy
//   - pkg/middleware: tenant resolution and rate limiting
//   - pkg/storage: persistence for checks, versions, and contracts
package api
