package orchestrator

import (
	"context"

	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

// stitchingOrchestrator composes subgraphs by plain type/field-name merging,
// without requiring federation entity-key directives. It is the older,
// simpler composite model still supported for legacy projects.
type stitchingOrchestrator struct{}

// NewStitching returns the Orchestrator for stitching (composite, non-federated) projects.
func NewStitching() Orchestrator {
	return &stitchingOrchestrator{}
}

func (o *stitchingOrchestrator) ComposeAndValidate(ctx context.Context, schemas []schemadoc.Service, opts Options) (*Result, error) {
	if len(schemas) == 0 {
		return &Result{Errors: []CompositionError{{Message: "no subgraphs provided", Source: SourceComposition}}}, nil
	}
	merge := mergeServices(schemas, false)
	result := &Result{SDL: merge.sdl, Tags: merge.tags, Errors: merge.errors}
	if len(opts.Contracts) > 0 {
		result.Contracts = composeContracts(merge, opts.Contracts)
	}
	return result, nil
}
