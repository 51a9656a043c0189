// Package auth carries the minimal authorization vocabulary the registry
// pipeline needs to gate its operations. It deliberately stops short of
// implementing authentication: user accounts, API tokens, and tenant role
// storage belong to an external collaborator.
//
// # Authorization Flow
//
// The publisher calls an Authorizer before entering the check/publish/
// delete pipeline:
//
//	authCtx, err := authorizer.Authorize(ctx, targetID, auth.ActionSchemaPublish)
//	if err != nil {
//		return err // pipeline is never entered
//	}
//
// admin-only operations (updateVersionStatus) additionally check the
// resulting role:
//
//	if !authCtx.HasRole(auth.RoleAdmin) {
//		return ErrForbidden
//	}
//
// # Related Packages
//
//   - pkg/middleware: wires an Authorizer implementation into the HTTP stack.
//   - pkg/orgs: the organization/project/target hierarchy Authorize resolves against.
package auth
