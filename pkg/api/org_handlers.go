package api

import (
	"net/http"

	"github.com/platinummonkey/schemahub/pkg/httputil"
	"github.com/platinummonkey/schemahub/pkg/middleware"
	"github.com/platinummonkey/schemahub/pkg/orgs"
	"github.com/platinummonkey/schemahub/pkg/registrytypes"
)

// createOrganization handles POST /api/v1/organizations.
func (s *Server) createOrganization(w http.ResponseWriter, r *http.Request) {
	var body createOrganizationRequestBody
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	if !httputil.RequireNonEmpty(w, body.Slug, "slug") {
		return
	}

	org, err := s.orgs.CreateOrganization(r.Context(), orgs.CreateOrganizationRequest{
		Slug: body.Slug,
		Name: body.Name,
	})
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteCreated(w, org)
}

// createProject handles POST /api/v1/organizations/{org_id}/projects.
func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	org := middleware.GetOrganization(r.Context())
	if org == nil {
		httputil.WriteNotFoundError(w, "organization not found")
		return
	}

	var body createProjectRequestBody
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	if !httputil.RequireNonEmpty(w, body.Slug, "slug") {
		return
	}

	project, err := s.orgs.CreateProject(r.Context(), orgs.CreateProjectRequest{
		OrganizationID:      org.ID,
		Slug:                body.Slug,
		Name:                body.Name,
		Type:                registrytypes.ProjectType(body.Type),
		LegacyRegistryModel: body.LegacyRegistryModel,
	})
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteCreated(w, project)
}

// createTarget handles
// POST /api/v1/organizations/{org_id}/projects/{project_id}/targets.
func (s *Server) createTarget(w http.ResponseWriter, r *http.Request) {
	projectID, ok := httputil.ParsePathStringOrError(w, r, "project_id")
	if !ok {
		return
	}

	var body createTargetRequestBody
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	if !httputil.RequireNonEmpty(w, body.Slug, "slug") {
		return
	}

	target, err := s.orgs.CreateTarget(r.Context(), orgs.CreateTargetRequest{
		ProjectID: projectID,
		Slug:      body.Slug,
		Name:      body.Name,
	})
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteCreated(w, target)
}

// updateProjectRegistryModel handles
// PUT /api/v1/organizations/{org_id}/projects/{project_id}/registry-model.
func (s *Server) updateProjectRegistryModel(w http.ResponseWriter, r *http.Request) {
	projectID, ok := httputil.ParsePathStringOrError(w, r, "project_id")
	if !ok {
		return
	}
	var body updateProjectRegistryModelRequestBody
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}

	if err := s.orgs.UpdateProjectRegistryModel(r.Context(), orgs.UpdateProjectRegistryModelRequest{
		ProjectID: projectID,
		Legacy:    body.Legacy,
	}); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

// enableExternalSchemaComposition handles
// PUT /api/v1/organizations/{org_id}/projects/{project_id}/external-composition.
func (s *Server) enableExternalSchemaComposition(w http.ResponseWriter, r *http.Request) {
	projectID, ok := httputil.ParsePathStringOrError(w, r, "project_id")
	if !ok {
		return
	}
	var body enableExternalSchemaCompositionRequestBody
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	if !httputil.RequireNonEmpty(w, body.Endpoint, "endpoint") {
		return
	}

	if err := s.orgs.EnableExternalSchemaComposition(r.Context(), orgs.EnableExternalSchemaCompositionRequest{
		ProjectID: projectID,
		Endpoint:  body.Endpoint,
		Secret:    body.Secret,
	}); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

// updateNativeFederation handles
// PUT /api/v1/organizations/{org_id}/projects/{project_id}/native-federation.
func (s *Server) updateNativeFederation(w http.ResponseWriter, r *http.Request) {
	projectID, ok := httputil.ParsePathStringOrError(w, r, "project_id")
	if !ok {
		return
	}
	var body updateNativeFederationRequestBody
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}

	if err := s.orgs.UpdateNativeFederation(r.Context(), orgs.UpdateNativeFederationRequest{
		ProjectID: projectID,
		Native:    body.Native,
	}); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

// createContract handles POST /api/v1/targets/{target_id}/contracts.
func (s *Server) createContract(w http.ResponseWriter, r *http.Request) {
	targetID, ok := httputil.ParsePathStringOrError(w, r, "target_id")
	if !ok {
		return
	}

	var body createContractRequestBody
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	if !httputil.RequireNonEmpty(w, body.Name, "name") {
		return
	}

	contract := &registrytypes.Contract{
		ID:                                         "",
		TargetID:                                    targetID,
		Name:                                        body.Name,
		IncludeTags:                                 body.IncludeTags,
		ExcludeTags:                                 body.ExcludeTags,
		RemoveUnreachableTypesFromPublicAPISchema: body.RemoveUnreachableTypesFromPublicAPISchema,
	}
	if err := s.storage.CreateContract(r.Context(), contract); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteCreated(w, contract)
}

