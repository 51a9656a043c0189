// Package orchestrator defines the pluggable composition backend and its
// Single/Federation/Stitching/External variants. Exactly one of these is
// selected per project, resolved from the project's type and composition
// configuration.
package orchestrator

import (
	"context"
	"errors"

	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

var (
	// ErrUnavailable is returned on transport errors talking to a remote
	// composer (native-local composition never returns it). Callers retry
	// ErrUnavailable failures; they never retry validation errors.
	ErrUnavailable = errors.New("orchestrator: unavailable")
)

// ContractInput requests a filtered composition alongside the primary one.
type ContractInput struct {
	ID     string
	Filter ContractFilter
}

// ContractFilter mirrors registrytypes.Contract's filter fields without
// importing the storage-facing type, keeping this package collaborator-only.
type ContractFilter struct {
	IncludeTags                              []string
	ExcludeTags                              []string
	RemoveUnreachableTypesFromPublicAPISchema bool
}

// Options configures one composeAndValidate call.
type Options struct {
	External  *ExternalConfig // non-nil delegates composition to a signed HTTP endpoint.
	Native    bool            // use the in-process native composer vs. the legacy remote composer.
	Contracts []ContractInput
}

// ExternalConfig names the user-controlled HTTP composer endpoint and the
// secret used to HMAC-sign requests to it.
type ExternalConfig struct {
	Endpoint string
	Secret   string
}

// CompositionErrorSource distinguishes GraphQL-syntax errors from
// composition-semantic errors, mirroring registrytypes.ErrorSource.
type CompositionErrorSource string

const (
	SourceGraphQL     CompositionErrorSource = "graphql"
	SourceComposition CompositionErrorSource = "composition"
)

// CompositionError is one entry of Result.Errors.
type CompositionError struct {
	Message string
	Source  CompositionErrorSource
}

// ContractResult is the filtered composition output for one requested contract.
type ContractResult struct {
	ID         string
	SDL        string
	Supergraph string
	Errors     []CompositionError
}

// Result is the output of composeAndValidate. Composition may return both a
// non-empty Errors list and a non-empty SDL simultaneously (the legacy
// "errors + sdl" case): callers must preserve both fields verbatim rather
// than collapsing one into the other.
type Result struct {
	SDL        string
	Supergraph string
	Tags       []string
	Errors     []CompositionError
	Contracts  []ContractResult
}

// HasErrors reports whether composition failed.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// ErrorsBySource partitions Errors into graphql-source and composition-source buckets.
func (r *Result) ErrorsBySource() (graphqlErrs, compositionErrs []CompositionError) {
	for _, e := range r.Errors {
		if e.Source == SourceGraphQL {
			graphqlErrs = append(graphqlErrs, e)
		} else {
			compositionErrs = append(compositionErrs, e)
		}
	}
	return
}

// Orchestrator composes N subgraph schemas into one supergraph SDL.
type Orchestrator interface {
	ComposeAndValidate(ctx context.Context, schemas []schemadoc.Service, opts Options) (*Result, error)
}

// Kind identifies which Orchestrator variant a project is configured for.
type Kind string

const (
	KindSingle      Kind = "single"
	KindFederation  Kind = "federation"
	KindStitching   Kind = "stitching"
)

// Select returns the Orchestrator variant for a project, delegating to an
// external HTTP composer when external is non-nil regardless of kind.
func Select(kind Kind, external *ExternalConfig) Orchestrator {
	if external != nil {
		return NewExternal(external)
	}
	switch kind {
	case KindFederation:
		return NewFederation()
	case KindStitching:
		return NewStitching()
	default:
		return NewSingle()
	}
}
