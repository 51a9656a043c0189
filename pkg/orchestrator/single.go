package orchestrator

import (
	"context"

	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

// singleOrchestrator composes a project with exactly one schema: composition
// degenerates to parsing and passing the SDL through unchanged.
type singleOrchestrator struct{}

// NewSingle returns the Orchestrator for single-schema projects.
func NewSingle() Orchestrator {
	return &singleOrchestrator{}
}

func (o *singleOrchestrator) ComposeAndValidate(ctx context.Context, schemas []schemadoc.Service, _ Options) (*Result, error) {
	if len(schemas) == 0 {
		return &Result{Errors: []CompositionError{{Message: "no schema provided", Source: SourceComposition}}}, nil
	}
	svc := schemas[0]
	if _, err := schemadoc.Parse(svc.Name, svc.SDL); err != nil {
		return &Result{Errors: []CompositionError{{Message: err.Error(), Source: SourceGraphQL}}}, nil
	}
	return &Result{SDL: svc.SDL}, nil
}
