package registrytypes

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Severity classifies the impact of a SchemaChange.
type Severity string

const (
	SeverityBreaking  Severity = "BREAKING"
	SeverityDangerous Severity = "DANGEROUS"
	SeveritySafe      Severity = "SAFE"
)

// ChangeType enumerates the structural change kinds produced by the inspector.
type ChangeType string

const (
	ChangeFieldTypeChanged         ChangeType = "FIELD_TYPE_CHANGED"
	ChangeFieldRemoved             ChangeType = "FIELD_REMOVED"
	ChangeFieldAdded              ChangeType = "FIELD_ADDED"
	ChangeTypeRemoved              ChangeType = "TYPE_REMOVED"
	ChangeTypeAdded                ChangeType = "TYPE_ADDED"
	ChangeArgumentRemoved          ChangeType = "ARGUMENT_REMOVED"
	ChangeArgumentAdded            ChangeType = "ARGUMENT_ADDED"
	ChangeDirectiveRemoved         ChangeType = "DIRECTIVE_REMOVED"
	ChangeEnumValueRemoved         ChangeType = "ENUM_VALUE_REMOVED"
	ChangeEnumValueAdded           ChangeType = "ENUM_VALUE_ADDED"
	ChangeDescriptionChanged       ChangeType = "DESCRIPTION_CHANGED"
	ChangeRegistryServiceURLChanged ChangeType = "REGISTRY_SERVICE_URL_CHANGED"
)

// SchemaChange is a value record describing one structural difference between
// two schema documents. ID is a deterministic hash of (Type, Meta) so that
// the same logical change always produces the same identity, which lets
// approvals (keyed by this ID) survive across repeated checks.
type SchemaChange struct {
	ID                  string         `json:"id"`
	Type                ChangeType     `json:"type"`
	Severity            Severity       `json:"severity"`
	Meta                map[string]any `json:"meta,omitempty"`
	IsSafeBasedOnUsage  bool           `json:"is_safe_based_on_usage"`
	Path                string         `json:"path,omitempty"`
}

// NewSchemaChange constructs a SchemaChange and computes its deterministic ID.
func NewSchemaChange(t ChangeType, severity Severity, path string, meta map[string]any) SchemaChange {
	c := SchemaChange{Type: t, Severity: severity, Path: path, Meta: meta}
	c.ID = computeChangeID(t, meta)
	return c
}

// computeChangeID hashes the change type plus a canonical (sorted-key) JSON
// encoding of meta, so that field ordering in meta never affects the ID.
func computeChangeID(t ChangeType, meta map[string]any) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make([]any, 0, len(keys)*2+1)
	ordered = append(ordered, string(t))
	for _, k := range keys {
		ordered = append(ordered, k, meta[k])
	}
	b, _ := json.Marshal(ordered)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])[:32]
}

// IsBreaking reports whether the change is Breaking severity and not marked
// safe by usage analysis — i.e. whether it should block a check by default.
func (c SchemaChange) IsBreaking() bool {
	return c.Severity == SeverityBreaking && !c.IsSafeBasedOnUsage
}

// SchemaChangeApproval records that a user approved a previously-failing
// breaking change, scoped to a context id, so future checks with the same
// context id treat the same change id as non-blocking.
type SchemaChangeApproval struct {
	TargetID        string       `json:"target_id"`
	ContextID       string       `json:"context_id"`
	SchemaChangeID  string       `json:"schema_change_id"`
	Snapshot        SchemaChange `json:"schema_change_snapshot"`
	ApprovedBy      string       `json:"approved_by"`
	ApprovedAt      string       `json:"approved_at"`
}
