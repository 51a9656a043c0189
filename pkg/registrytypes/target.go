package registrytypes

import "time"

// ProjectType selects which Project Model family applies to a target's owning project.
type ProjectType string

const (
	ProjectTypeSingle    ProjectType = "single"
	ProjectTypeFederation ProjectType = "federation"
	ProjectTypeStitching ProjectType = "stitching"
)

// IsComposite reports whether a project type composes multiple subgraph schemas.
func (t ProjectType) IsComposite() bool {
	return t == ProjectTypeFederation || t == ProjectTypeStitching
}

// Organization is the top of the tenancy hierarchy.
type Organization struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Project groups targets under a single organization and owns the registry model.
type Project struct {
	ID                       string      `json:"id"`
	OrganizationID           string      `json:"organization_id"`
	Slug                     string      `json:"slug"`
	Name                     string      `json:"name"`
	Type                     ProjectType `json:"type"`
	LegacyRegistryModel      bool        `json:"legacy_registry_model"`
	ExternalCompositionURL   string      `json:"external_composition_url,omitempty"`
	ExternalCompositionSecret string     `json:"-"`
	NativeFederation         bool        `json:"native_federation"`
	CreatedAt                time.Time   `json:"created_at"`
}

// ExternalCompositionEnabled reports whether publish/check should delegate
// composition to the configured external HTTP composer.
func (p *Project) ExternalCompositionEnabled() bool {
	return p.ExternalCompositionURL != ""
}

// Target is the unit of version-streaming, identified by (organization, project, target).
type Target struct {
	ID                                string    `json:"id"`
	ProjectID                         string    `json:"project_id"`
	Slug                              string    `json:"slug"`
	Name                              string    `json:"name"`
	ValidationWindowHours             int       `json:"validation_window_hours"`
	CompareToPreviousComposableVersion bool     `json:"compare_to_previous_composable_version"`
	CreatedAt                         time.Time `json:"created_at"`
}

// LogEntryKind discriminates the two Schema Log Entry variants.
type LogEntryKind string

const (
	LogEntryPush   LogEntryKind = "PUSH"
	LogEntryDelete LogEntryKind = "DELETE"
)

// SchemaLogEntry is an immutable, append-only record of one user action
// against a target. PUSH entries carry the new SDL; DELETE entries only
// name the service being removed.
type SchemaLogEntry struct {
	ID          string       `json:"id"`
	TargetID    string       `json:"target_id"`
	Kind        LogEntryKind `json:"kind"`
	ServiceName string       `json:"service_name"`
	SDL         string       `json:"sdl,omitempty"`
	ServiceURL  string       `json:"service_url,omitempty"`
	Metadata    string       `json:"metadata,omitempty"`
	Author      string       `json:"author,omitempty"`
	Commit      string       `json:"commit,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ActiveLogSet computes the active log entries of a version: the entries
// inherited from the previous version, with DELETE removing a service_name
// and PUSH replacing any prior entry with the same service_name. Order is
// not significant; callers that need determinism should sort by ServiceName.
func ActiveLogSet(previous []SchemaLogEntry, incoming SchemaLogEntry) []SchemaLogEntry {
	byService := make(map[string]SchemaLogEntry, len(previous)+1)
	for _, e := range previous {
		byService[e.ServiceName] = e
	}
	if incoming.Kind == LogEntryDelete {
		delete(byService, incoming.ServiceName)
	} else {
		byService[incoming.ServiceName] = incoming
	}
	out := make([]SchemaLogEntry, 0, len(byService))
	for _, e := range byService {
		out = append(out, e)
	}
	return out
}
