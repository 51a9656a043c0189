package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/schemahub/pkg/contextkeys"
	"github.com/platinummonkey/schemahub/pkg/orgs"
	"github.com/platinummonkey/schemahub/pkg/registrytypes"
)

// TenantContextMiddleware resolves the organization/project/target
// hierarchy named by the request's URL variables ("org_id", "project_id",
// "target_id") and adds whichever of them are present to the request
// context, most specific first. A path with no tenant variables passes
// through unchanged — not every route is target-scoped.
func TenantContextMiddleware(svc orgs.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			ctx := r.Context()

			if orgID, ok := vars["org_id"]; ok {
				org, err := svc.GetOrganization(ctx, orgID)
				if err != nil {
					http.Error(w, "organization not found", http.StatusNotFound)
					return
				}
				ctx = contextkeys.WithOrg(ctx, org)
			}

			if targetID, ok := vars["target_id"]; ok {
				target, err := svc.GetTarget(ctx, targetID)
				if err != nil {
					http.Error(w, "target not found", http.StatusNotFound)
					return
				}
				ctx = contextkeys.WithTarget(ctx, target)

				project, err := svc.GetProject(ctx, target.ProjectID)
				if err != nil {
					http.Error(w, "project not found", http.StatusNotFound)
					return
				}
				ctx = contextkeys.WithProject(ctx, project)
			} else if projectID, ok := vars["project_id"]; ok {
				project, err := svc.GetProject(ctx, projectID)
				if err != nil {
					http.Error(w, "project not found", http.StatusNotFound)
					return
				}
				ctx = contextkeys.WithProject(ctx, project)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOrganization extracts the resolved organization from request context
func GetOrganization(ctx context.Context) *registrytypes.Organization {
	org, _ := ctx.Value(contextkeys.OrgKey).(*registrytypes.Organization)
	return org
}

// GetProject extracts the resolved project from request context
func GetProject(ctx context.Context) *registrytypes.Project {
	project, _ := ctx.Value(contextkeys.ProjectKey).(*registrytypes.Project)
	return project
}

// GetTarget extracts the resolved target from request context
func GetTarget(ctx context.Context) *registrytypes.Target {
	target, _ := ctx.Value(contextkeys.TargetKey).(*registrytypes.Target)
	return target
}
