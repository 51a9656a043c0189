package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/schemahub/pkg/idempotency"
	"github.com/platinummonkey/schemahub/pkg/lock"
	"github.com/platinummonkey/schemahub/pkg/policy"
	"github.com/platinummonkey/schemahub/pkg/publisher"
	"github.com/platinummonkey/schemahub/pkg/registrytypes"
)

func newTestServer(t *testing.T) (*Server, *memStorage, *fakeOrgs) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := newMemStorage()
	orgSvc := newFakeOrgs()

	idem, err := idempotency.New(client, idempotency.DefaultWindow)
	require.NoError(t, err)

	pub := publisher.New(publisher.Deps{
		Store:        store,
		Locker:       lock.New(client, 5*time.Second),
		Idempotency:  idem,
		Authorizer:   allowAllAuthorizer{},
		PolicyEngine: policy.NewLocalEngine(),
		Orgs:         orgSvc,
	})

	s := NewServer(pub, orgSvc, store, allowAllAuthorizer{})
	return s, store, orgSvc
}

func TestServer_SchemaCheck(t *testing.T) {
	s, _, orgSvc := newTestServer(t)
	orgSvc.seedSingleTarget("target-1", "project-1")

	body, _ := json.Marshal(checkRequestBody{
		ServiceName: "users",
		SDL:         `type Query { hello: String }`,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/targets/target-1/check", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_SchemaCheck_UnknownTarget(t *testing.T) {
	s, _, _ := newTestServer(t)

	body, _ := json.Marshal(checkRequestBody{ServiceName: "users", SDL: "type Query { hello: String }"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/targets/missing/check", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_SchemaPublishThenDelete(t *testing.T) {
	s, _, orgSvc := newTestServer(t)
	orgSvc.seedSingleTarget("target-2", "project-2")

	pubBody, _ := json.Marshal(publishRequestBody{
		ServiceName: "users",
		SDL:         `type Query { hello: String }`,
		ServiceURL:  "http://users/graphql",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/targets/target-2/publish", bytes.NewReader(pubBody))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	delBody, _ := json.Marshal(deleteRequestBody{ServiceName: "users", DryRun: true})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/targets/target-2/delete", bytes.NewReader(delBody))
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_CreateOrganizationAndProject(t *testing.T) {
	s, _, _ := newTestServer(t)

	orgBody, _ := json.Marshal(createOrganizationRequestBody{Slug: "acme", Name: "Acme"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/organizations", bytes.NewReader(orgBody))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var org struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &org))
	require.NotEmpty(t, org.ID)

	projBody, _ := json.Marshal(createProjectRequestBody{Slug: "widgets", Name: "Widgets", Type: "single"})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/organizations/"+org.ID+"/projects", bytes.NewReader(projBody))
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestServer_ApproveFailedSchemaCheck(t *testing.T) {
	s, store, orgSvc := newTestServer(t)
	orgSvc.seedSingleTarget("target-3", "project-3")
	store.checks["check-1"] = &registrytypes.SchemaCheck{ID: "check-1", TargetID: "target-3"}

	body, _ := json.Marshal(approveCheckRequestBody{ApprovedBy: "alice"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/targets/target-3/checks/check-1/approve", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, store.checks["check-1"].IsManuallyApproved)
	require.Equal(t, "alice", store.checks["check-1"].ApprovedBy)
}

func TestServer_UpdateVersionStatus(t *testing.T) {
	s, store, orgSvc := newTestServer(t)
	orgSvc.seedSingleTarget("target-4", "project-4")
	store.versions["version-1"] = &registrytypes.SchemaVersion{ID: "version-1", TargetID: "target-4", IsComposable: false}

	body, _ := json.Marshal(updateVersionStatusRequestBody{Valid: true})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/targets/target-4/versions/version-1/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, store.versions["version-1"].IsComposable)
}

func TestServer_UpdateVersionStatusRepublishesArtifactsWhenNowLatestComposable(t *testing.T) {
	s, store, orgSvc := newTestServer(t)
	orgSvc.seedSingleTarget("target-9", "project-9")

	sdl := "type Query { hello: String }"
	store.logEntries["log-1"] = registrytypes.SchemaLogEntry{ID: "log-1", TargetID: "target-9", ServiceName: "default", SDL: sdl, ServiceURL: "http://svc"}
	store.versions["version-9"] = &registrytypes.SchemaVersion{
		ID: "version-9", TargetID: "target-9", IsComposable: false,
		CompositeSchemaSDL: &sdl, ActiveLogEntryIDs: []string{"log-1"},
	}
	store.versionOrder = append(store.versionOrder, "version-9")

	body, _ := json.Marshal(updateVersionStatusRequestBody{Valid: true})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/targets/target-9/versions/version-9/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, []byte(sdl), store.artifacts["artifact/target-9/sdl"])
	require.Contains(t, store.artifacts, "artifact/target-9/services")
}
