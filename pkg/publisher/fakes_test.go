package publisher

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/schemahub/pkg/auth"
	"github.com/platinummonkey/schemahub/pkg/orgs"
	"github.com/platinummonkey/schemahub/pkg/registrytypes"
	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

// memStorage is an in-memory storage.Storage fake, enough to exercise the
// publisher pipeline without a database.
type memStorage struct {
	mu               sync.Mutex
	checks           map[string]*registrytypes.SchemaCheck
	versions         map[string]*registrytypes.SchemaVersion
	versionOrder     []string // per target, created order
	logEntries       map[string]registrytypes.SchemaLogEntry
	contracts        map[string][]registrytypes.Contract
	approvals        map[string]map[string]registrytypes.SchemaChangeApproval
	artifacts        map[string][]byte
	versionContracts []registrytypes.SchemaVersionContract
}

func newMemStorage() *memStorage {
	return &memStorage{
		checks:     map[string]*registrytypes.SchemaCheck{},
		versions:   map[string]*registrytypes.SchemaVersion{},
		logEntries: map[string]registrytypes.SchemaLogEntry{},
		contracts:  map[string][]registrytypes.Contract{},
		approvals:  map[string]map[string]registrytypes.SchemaChangeApproval{},
		artifacts:  map[string][]byte{},
	}
}

func (m *memStorage) CreateSchemaCheck(ctx context.Context, check *registrytypes.SchemaCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[check.ID] = check
	return nil
}

func (m *memStorage) GetSchemaCheck(ctx context.Context, id string) (*registrytypes.SchemaCheck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checks[id], nil
}

func (m *memStorage) ApproveFailedSchemaCheck(ctx context.Context, id, approvedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.checks[id]; ok {
		c.IsManuallyApproved = true
		c.ApprovedBy = approvedBy
	}
	return nil
}

func (m *memStorage) PurgeExpiredSchemaChecks(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (m *memStorage) CreateSchemaVersion(ctx context.Context, version *registrytypes.SchemaVersion, entries []registrytypes.SchemaLogEntry, actionFn func(ctx context.Context) error) error {
	m.mu.Lock()
	version.CreatedAt = time.Now()
	for _, e := range entries {
		m.logEntries[e.ID] = e
	}
	m.versions[version.ID] = version
	m.versionOrder = append(m.versionOrder, version.ID)
	m.mu.Unlock()

	if actionFn != nil {
		if err := actionFn(ctx); err != nil {
			m.mu.Lock()
			delete(m.versions, version.ID)
			m.mu.Unlock()
			return err
		}
	}
	return nil
}

func (m *memStorage) GetSchemaVersion(ctx context.Context, id string) (*registrytypes.SchemaVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[id], nil
}

func (m *memStorage) GetLatestSchemas(ctx context.Context, targetID string) ([]schemadoc.Service, *registrytypes.SchemaVersion, error) {
	v, err := m.GetMaybeLatestValidVersion(ctx, targetID)
	if err != nil || v == nil {
		return nil, v, err
	}
	services, err := m.GetSchemasForVersion(ctx, v)
	return services, v, err
}

func (m *memStorage) latestForTarget(targetID string, onlyComposable bool) *registrytypes.SchemaVersion {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *registrytypes.SchemaVersion
	for i := len(m.versionOrder) - 1; i >= 0; i-- {
		v := m.versions[m.versionOrder[i]]
		if v.TargetID != targetID {
			continue
		}
		if onlyComposable && !v.IsComposable {
			continue
		}
		latest = v
		break
	}
	return latest
}

func (m *memStorage) GetMaybeLatestVersion(ctx context.Context, targetID string) (*registrytypes.SchemaVersion, error) {
	return m.latestForTarget(targetID, false), nil
}

func (m *memStorage) GetMaybeLatestValidVersion(ctx context.Context, targetID string) (*registrytypes.SchemaVersion, error) {
	return m.latestForTarget(targetID, true), nil
}

func (m *memStorage) GetSchemasForVersion(ctx context.Context, version *registrytypes.SchemaVersion) ([]schemadoc.Service, error) {
	entries, err := m.GetLogEntriesByIDs(ctx, version.ActiveLogEntryIDs)
	if err != nil {
		return nil, err
	}
	out := make([]schemadoc.Service, 0, len(entries))
	for _, e := range entries {
		out = append(out, schemadoc.Service{Name: e.ServiceName, SDL: e.SDL, URL: e.ServiceURL})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStorage) GetLogEntriesByIDs(ctx context.Context, ids []string) ([]registrytypes.SchemaLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]registrytypes.SchemaLogEntry, 0, len(ids))
	for _, id := range ids {
		if e, ok := m.logEntries[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStorage) UpdateSchemaVersionStatus(ctx context.Context, versionID string, valid bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.versions[versionID]
	if !ok {
		return fmt.Errorf("memStorage: version %s not found", versionID)
	}
	v.IsComposable = valid
	return nil
}

func (m *memStorage) GetApprovedSchemaChangesForContextID(ctx context.Context, targetID, contextID string) (map[string]registrytypes.SchemaChangeApproval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.approvals[targetID+"#"+contextID], nil
}

func (m *memStorage) ApproveSchemaChange(ctx context.Context, approval registrytypes.SchemaChangeApproval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := approval.TargetID + "#" + approval.ContextID
	if m.approvals[key] == nil {
		m.approvals[key] = map[string]registrytypes.SchemaChangeApproval{}
	}
	m.approvals[key][approval.SchemaChangeID] = approval
	return nil
}

func (m *memStorage) CreateContract(ctx context.Context, contract *registrytypes.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts[contract.TargetID] = append(m.contracts[contract.TargetID], *contract)
	return nil
}

func (m *memStorage) GetContractsForTarget(ctx context.Context, targetID string) ([]registrytypes.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contracts[targetID], nil
}

func (m *memStorage) GetLastValidSchemaVersionContract(ctx context.Context, contractID string) (*registrytypes.SchemaVersionContract, error) {
	return nil, nil
}

func (m *memStorage) CreateSchemaVersionContract(ctx context.Context, svc *registrytypes.SchemaVersionContract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versionContracts = append(m.versionContracts, *svc)
	return nil
}

func (m *memStorage) PutArtifact(ctx context.Context, key string, content []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := append([]byte(nil), content...)
	m.artifacts[key] = cp
	return nil
}

func (m *memStorage) PutSDL(ctx context.Context, sdl string) (string, error) {
	return uuid.NewString(), nil
}

func (m *memStorage) GetSDL(ctx context.Context, hash string) (string, error) {
	return "", nil
}

func (m *memStorage) HealthCheck(ctx context.Context) error {
	return nil
}

// fakeOrgs is an in-memory orgs.Service fake.
type fakeOrgs struct {
	targets  map[string]registrytypes.Target
	projects map[string]registrytypes.Project
}

func newFakeOrgs() *fakeOrgs {
	return &fakeOrgs{
		targets:  map[string]registrytypes.Target{},
		projects: map[string]registrytypes.Project{},
	}
}

func (f *fakeOrgs) CreateOrganization(ctx context.Context, req orgs.CreateOrganizationRequest) (*registrytypes.Organization, error) {
	return nil, nil
}
func (f *fakeOrgs) GetOrganization(ctx context.Context, id string) (*registrytypes.Organization, error) {
	return nil, nil
}
func (f *fakeOrgs) CreateProject(ctx context.Context, req orgs.CreateProjectRequest) (*registrytypes.Project, error) {
	return nil, nil
}
func (f *fakeOrgs) GetProject(ctx context.Context, id string) (*registrytypes.Project, error) {
	p := f.projects[id]
	return &p, nil
}
func (f *fakeOrgs) UpdateProjectRegistryModel(ctx context.Context, req orgs.UpdateProjectRegistryModelRequest) error {
	return nil
}
func (f *fakeOrgs) EnableExternalSchemaComposition(ctx context.Context, req orgs.EnableExternalSchemaCompositionRequest) error {
	return nil
}
func (f *fakeOrgs) UpdateNativeFederation(ctx context.Context, req orgs.UpdateNativeFederationRequest) error {
	return nil
}
func (f *fakeOrgs) CreateTarget(ctx context.Context, req orgs.CreateTargetRequest) (*registrytypes.Target, error) {
	return nil, nil
}
func (f *fakeOrgs) GetTarget(ctx context.Context, id string) (*registrytypes.Target, error) {
	t := f.targets[id]
	return &t, nil
}

// allowAllAuthorizer grants every request.
type allowAllAuthorizer struct{}

func (allowAllAuthorizer) Authorize(ctx context.Context, targetID string, action auth.Action) (*auth.AuthContext, error) {
	return &auth.AuthContext{UserID: "test-user", Role: auth.RoleAdmin}, nil
}
