package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/schemahub/pkg/auth"
	"github.com/platinummonkey/schemahub/pkg/middleware"
	"github.com/platinummonkey/schemahub/pkg/orgs"
	"github.com/platinummonkey/schemahub/pkg/publisher"
	"github.com/platinummonkey/schemahub/pkg/storage"
)

// Server is the HTTP entrypoint for the registry: it wires the publisher
// pipeline (check/publish/delete) and the org/project/target configuration
// surface behind gorilla/mux, with tenant resolution and authorization
// applied as middleware rather than duplicated per handler.
type Server struct {
	publisher  *publisher.Publisher
	orgs       orgs.Service
	storage    storage.Storage
	authorizer auth.Authorizer
	router     *mux.Router
}

// NewServerWithoutRoutes builds a Server without registering any routes,
// for tests that only need direct handler access.
func NewServerWithoutRoutes(pub *publisher.Publisher, orgSvc orgs.Service, store storage.Storage, authorizer auth.Authorizer) *Server {
	return &Server{
		publisher:  pub,
		orgs:       orgSvc,
		storage:    store,
		authorizer: authorizer,
	}
}

// NewServer builds a Server and registers the full route table.
func NewServer(pub *publisher.Publisher, orgSvc orgs.Service, store storage.Storage, authorizer auth.Authorizer) *Server {
	s := NewServerWithoutRoutes(pub, orgSvc, store, authorizer)
	s.router = mux.NewRouter()
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	tenant := middleware.TenantContextMiddleware(s.orgs)

	s.router.HandleFunc("/api/v1/organizations", s.createOrganization).Methods(http.MethodPost)

	orgAPI := s.router.PathPrefix("/api/v1/organizations").Subrouter()
	orgAPI.Use(tenant)
	orgAPI.HandleFunc("/{org_id}/projects", s.createProject).Methods(http.MethodPost)
	orgAPI.HandleFunc("/{org_id}/projects/{project_id}/registry-model", s.updateProjectRegistryModel).Methods(http.MethodPut)
	orgAPI.HandleFunc("/{org_id}/projects/{project_id}/external-composition", s.enableExternalSchemaComposition).Methods(http.MethodPut)
	orgAPI.HandleFunc("/{org_id}/projects/{project_id}/native-federation", s.updateNativeFederation).Methods(http.MethodPut)
	orgAPI.HandleFunc("/{org_id}/projects/{project_id}/targets", s.createTarget).Methods(http.MethodPost)

	// Check/publish/delete authorize internally via publisher.Publisher, one
	// Action per operation, so no blanket AuthMiddleware is applied here —
	// a single fixed Action could not cover all three routes correctly.
	// approveFailedSchemaCheck/updateVersionStatus/createContract authorize
	// inline against auth.ActionAdmin since they bypass the publisher.
	target := s.router.PathPrefix("/api/v1/targets/{target_id}").Subrouter()
	target.Use(tenant)
	target.HandleFunc("/check", s.schemaCheck).Methods(http.MethodPost)
	target.HandleFunc("/publish", s.schemaPublish).Methods(http.MethodPost)
	target.HandleFunc("/delete", s.schemaDelete).Methods(http.MethodPost)
	target.HandleFunc("/contracts", s.createContract).Methods(http.MethodPost)
	target.HandleFunc("/checks/{check_id}/approve", s.approveFailedSchemaCheck).Methods(http.MethodPost)
	target.HandleFunc("/versions/{version_id}/status", s.updateVersionStatus).Methods(http.MethodPut)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
