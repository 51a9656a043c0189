package registrytypes

import "time"

// SchemaVersion is an immutable snapshot of a target at a point in time.
type SchemaVersion struct {
	ID                       string     `json:"id"`
	TargetID                 string     `json:"target_id"`
	CreatedAt                time.Time  `json:"created_at"`
	IsComposable             bool       `json:"is_composable"`
	PreviousSchemaVersionID  *string    `json:"previous_schema_version_id,omitempty"`
	BaseSchema               string     `json:"base_schema,omitempty"`
	CompositeSchemaSDL       *string    `json:"composite_schema_sdl,omitempty"`
	SupergraphSDL            *string    `json:"supergraph_sdl,omitempty"`
	Tags                     []string   `json:"tags,omitempty"`
	SchemaCompositionErrors  []CompositionError `json:"schema_composition_errors,omitempty"`
	ActiveLogEntryIDs        []string   `json:"active_log_entry_ids"`
}

// CompositionError mirrors the orchestrator's {message, source} error shape.
type CompositionError struct {
	Message string       `json:"message"`
	Source  ErrorSource  `json:"source"`
}

// ErrorSource distinguishes GraphQL-syntax errors from composition-semantic errors.
type ErrorSource string

const (
	ErrorSourceGraphQL     ErrorSource = "graphql"
	ErrorSourceComposition ErrorSource = "composition"
)

// Valid reports whether the version's fields are internally consistent:
// if CompositeSchemaSDL is nil, SupergraphSDL must also be nil and
// SchemaCompositionErrors must be non-empty.
func (v *SchemaVersion) Valid() bool {
	if v.CompositeSchemaSDL == nil {
		return v.SupergraphSDL == nil && len(v.SchemaCompositionErrors) > 0
	}
	return true
}

// Contract is a named, immutable filter owned by a target.
type Contract struct {
	ID                                       string    `json:"id"`
	TargetID                                 string    `json:"target_id"`
	Name                                     string    `json:"name"`
	IncludeTags                              []string  `json:"include_tags,omitempty"`
	ExcludeTags                              []string  `json:"exclude_tags,omitempty"`
	RemoveUnreachableTypesFromPublicAPISchema bool     `json:"remove_unreachable_types_from_public_api_schema"`
	CreatedAt                                time.Time `json:"created_at"`
}

// SchemaVersionContract is the per-contract composed artifact for one
// composable schema version, chained to the previous successful version
// for the same contract via LastSchemaVersionContractID.
type SchemaVersionContract struct {
	ID                           string             `json:"id"`
	SchemaVersionID              string             `json:"schema_version_id"`
	ContractID                   string             `json:"contract_id"`
	CompositeSchemaSDL           *string            `json:"composite_schema_sdl,omitempty"`
	SupergraphSDL                *string            `json:"supergraph_sdl,omitempty"`
	IsComposable                 bool               `json:"is_composable"`
	SchemaCompositionErrors      []CompositionError `json:"schema_composition_errors,omitempty"`
	LastSchemaVersionContractID  *string            `json:"last_schema_version_contract_id,omitempty"`
}
