package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/platinummonkey/schemahub/pkg/auth"
	"github.com/platinummonkey/schemahub/pkg/httputil"
	"github.com/platinummonkey/schemahub/pkg/lock"
	"github.com/platinummonkey/schemahub/pkg/middleware"
	"github.com/platinummonkey/schemahub/pkg/publisher"
)

// schemaCheck handles POST /api/v1/targets/{target_id}/check.
func (s *Server) schemaCheck(w http.ResponseWriter, r *http.Request) {
	targetID := middleware.GetTarget(r.Context())
	if targetID == nil {
		httputil.WriteNotFoundError(w, "target not found")
		return
	}

	var body checkRequestBody
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	if !httputil.RequireNonEmpty(w, body.ServiceName, "service_name") {
		return
	}

	result, err := s.publisher.Check(r.Context(), publisher.CheckRequest{
		TargetID:            targetID.ID,
		ServiceName:         body.ServiceName,
		IncomingSDL:         body.SDL,
		ContextID:           body.ContextID,
		IntegrationMetadata: body.IntegrationMetadata,
	})
	if !writePipelineError(w, err) {
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// schemaPublish handles POST /api/v1/targets/{target_id}/publish.
func (s *Server) schemaPublish(w http.ResponseWriter, r *http.Request) {
	targetID := middleware.GetTarget(r.Context())
	if targetID == nil {
		httputil.WriteNotFoundError(w, "target not found")
		return
	}

	var body publishRequestBody
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	if !httputil.RequireNonEmpty(w, body.ServiceName, "service_name") {
		return
	}

	result, err := s.publisher.Publish(r.Context(), publisher.PublishRequest{
		TargetID:                          targetID.ID,
		ServiceName:                       body.ServiceName,
		IncomingSDL:                       body.SDL,
		ServiceURL:                        body.ServiceURL,
		Metadata:                          body.Metadata,
		ContextID:                         body.ContextID,
		IntegrationMetadata:               body.IntegrationMetadata,
		CompareToLatest:                   body.CompareToLatest,
		Author:                            body.Author,
		Commit:                            body.Commit,
		Force:                             body.Force,
		ExperimentalAcceptBreakingChanges: body.ExperimentalAcceptBreakingChanges,
	})
	if !writePipelineError(w, err) {
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// schemaDelete handles POST /api/v1/targets/{target_id}/delete.
func (s *Server) schemaDelete(w http.ResponseWriter, r *http.Request) {
	targetID := middleware.GetTarget(r.Context())
	if targetID == nil {
		httputil.WriteNotFoundError(w, "target not found")
		return
	}

	var body deleteRequestBody
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	if !httputil.RequireNonEmpty(w, body.ServiceName, "service_name") {
		return
	}

	result, err := s.publisher.Delete(r.Context(), publisher.DeleteRequest{
		TargetID:            targetID.ID,
		ServiceName:         body.ServiceName,
		ContextID:           body.ContextID,
		IntegrationMetadata: body.IntegrationMetadata,
		DryRun:              body.DryRun,
	})
	if !writePipelineError(w, err) {
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// approveFailedSchemaCheck handles
// POST /api/v1/targets/{target_id}/checks/{check_id}/approve. Admin-only:
// promotes a failing check's breaking changes into approvals scoped to its
// context id.
func (s *Server) approveFailedSchemaCheck(w http.ResponseWriter, r *http.Request) {
	targetID := middleware.GetTarget(r.Context())
	if targetID == nil {
		httputil.WriteNotFoundError(w, "target not found")
		return
	}
	authCtx, err := s.authorizer.Authorize(r.Context(), targetID.ID, auth.ActionAdmin)
	if err != nil || !authCtx.HasRole(auth.RoleAdmin) {
		httputil.WriteForbidden(w, "admin role required")
		return
	}

	checkID, ok := httputil.ParsePathStringOrError(w, r, "check_id")
	if !ok {
		return
	}
	var body approveCheckRequestBody
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	if !httputil.RequireNonEmpty(w, body.ApprovedBy, "approved_by") {
		return
	}

	if err := s.storage.ApproveFailedSchemaCheck(r.Context(), checkID, body.ApprovedBy); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

// updateVersionStatus handles
// PUT /api/v1/targets/{target_id}/versions/{version_id}/status. Admin-only:
// flips a past version's composability flag.
func (s *Server) updateVersionStatus(w http.ResponseWriter, r *http.Request) {
	targetID := middleware.GetTarget(r.Context())
	if targetID == nil {
		httputil.WriteNotFoundError(w, "target not found")
		return
	}
	authCtx, err := s.authorizer.Authorize(r.Context(), targetID.ID, auth.ActionAdmin)
	if err != nil || !authCtx.HasRole(auth.RoleAdmin) {
		httputil.WriteForbidden(w, "admin role required")
		return
	}

	versionID, ok := httputil.ParsePathStringOrError(w, r, "version_id")
	if !ok {
		return
	}
	var body updateVersionStatusRequestBody
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}

	if err := s.storage.UpdateSchemaVersionStatus(r.Context(), versionID, body.Valid); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if body.Valid {
		if err := s.republishIfLatestComposable(r.Context(), targetID.ID, versionID); err != nil {
			httputil.WriteInternalError(w, err)
			return
		}
	}

	httputil.WriteNoContent(w)
}

// republishIfLatestComposable implements updateVersionStatus's CDN
// side-effect: a version flipped to valid only republishes artifacts when it
// is now the target's latest-composable version, not on every flip.
func (s *Server) republishIfLatestComposable(ctx context.Context, targetID, versionID string) error {
	latest, err := s.storage.GetMaybeLatestValidVersion(ctx, targetID)
	if err != nil {
		return err
	}
	if latest == nil || latest.ID != versionID {
		return nil
	}
	return publisher.RepublishArtifacts(ctx, s.storage, targetID, latest)
}

// writePipelineError maps a publisher pipeline error to an HTTP response
// and reports whether the caller should continue writing a success body.
func writePipelineError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, lock.ErrNotAcquired) {
		httputil.WriteConflict(w, "target is locked by a concurrent operation")
		return false
	}
	httputil.WriteInternalError(w, err)
	return false
}
