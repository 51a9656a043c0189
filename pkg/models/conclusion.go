package models

import (
	"github.com/platinummonkey/schemahub/pkg/orchestrator"
	"github.com/platinummonkey/schemahub/pkg/registrytypes"
)

// CheckConclusionKind is the outcome tag of a check operation.
type CheckConclusionKind string

const (
	CheckSuccess CheckConclusionKind = "Success"
	CheckFailure CheckConclusionKind = "Failure"
)

// CheckState is the state payload of a Success conclusion.
type CheckState struct {
	Composition           *orchestrator.Result
	SchemaChanges          []registrytypes.SchemaChange
	SchemaPolicyWarnings   []string
}

// CheckConclusion is the result of Model.Check.
type CheckConclusion struct {
	Kind             CheckConclusionKind
	State            *CheckState // present iff Kind == CheckSuccess
	FailureReasons   []string    // per-stage reasons, present iff Kind == CheckFailure
	ContractResults  []ContractCheckResult
}

// ContractCheckResult isolates the per-contract outcome within a composite
// check: a contract's own composition failure or unapproved breaking change
// (diffed against its own last-valid snapshot) never fails the other
// contracts or the primary check result.
type ContractCheckResult struct {
	ContractID      string
	IsSuccessful    bool
	Reason          string
	BreakingChanges []registrytypes.SchemaChange
}

// RejectReason enumerates the specific codes a Reject conclusion carries;
// a rejection is reported with a specific code and never retried.
type RejectReason string

const (
	RejectMissingServiceName        RejectReason = "MissingServiceName"
	RejectMissingServiceURL         RejectReason = "MissingServiceURL"
	RejectMetadataParsingFailure    RejectReason = "MetadataParsingFailure"
	RejectCompositionFailure        RejectReason = "CompositionFailure"
	// RejectBreakingChangesNotApproved is legacy-model-only: a modern model
	// never rejects on breaking changes alone, and a legacy model only
	// rejects when neither Force nor ExperimentalAcceptBreakingChanges was
	// set on the request.
	RejectBreakingChangesNotApproved RejectReason = "BreakingChangesNotApproved"
)

// IgnoreReason enumerates the Ignore conclusion codes.
type IgnoreReason string

const (
	IgnoreNoChanges IgnoreReason = "NoChanges"
)

// PublishConclusionKind is the outcome tag of a publish operation.
type PublishConclusionKind string

const (
	PublishAccepted PublishConclusionKind = "Publish"
	PublishIgnored  PublishConclusionKind = "Ignore"
	PublishRejected PublishConclusionKind = "Reject"
)

// PublishState is the state payload of a Publish conclusion.
type PublishState struct {
	Composable        bool
	Changes           []registrytypes.SchemaChange
	BreakingChanges    []registrytypes.SchemaChange
	CompositionErrors []registrytypes.CompositionError
	Supergraph        string
	FullSchemaSDL     string
	Tags              []string
	Contracts         []orchestrator.ContractResult
	Initial           bool
}

// PublishConclusion is the result of Model.Publish.
type PublishConclusion struct {
	Kind         PublishConclusionKind
	State        *PublishState // present iff Kind == PublishAccepted
	RejectReason RejectReason  // present iff Kind == PublishRejected
	IgnoreReason IgnoreReason  // present iff Kind == PublishIgnored
}

// DeleteConclusionKind is the outcome tag of a delete operation.
type DeleteConclusionKind string

const (
	DeleteAccepted DeleteConclusionKind = "Accept"
	DeleteRejected DeleteConclusionKind = "Reject"
)

// DeleteState is the state payload of an Accept conclusion.
type DeleteState struct {
	Composable        bool
	FullSchemaSDL     string
	Changes           []registrytypes.SchemaChange
	BreakingChanges    []registrytypes.SchemaChange
	CompositionErrors []registrytypes.CompositionError
	Supergraph        string
	Tags              []string
}

// DeleteConclusion is the result of Model.Delete.
type DeleteConclusion struct {
	Kind         DeleteConclusionKind
	State        *DeleteState
	RejectReason RejectReason
}
