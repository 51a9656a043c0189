package checks

import (
	"context"

	"github.com/platinummonkey/schemahub/pkg/orchestrator"
	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

// CompositionResult is the outcome of the composition primitive.
type CompositionResult struct {
	*orchestrator.Result
}

// Composition runs the orchestrator and succeeds iff it returns no errors.
// Transport failures (orchestrator.ErrUnavailable) propagate as a Go error,
// distinct from a Failed outcome, since transport errors are retried by the
// caller while validation failures are not.
func Composition(ctx context.Context, o orchestrator.Orchestrator, schemas []schemadoc.Service, opts orchestrator.Options) (Outcome[CompositionResult], error) {
	result, err := o.ComposeAndValidate(ctx, schemas, opts)
	if err != nil {
		return Outcome[CompositionResult]{}, err
	}
	if result.HasErrors() {
		// Composition may return errors and a non-null SDL together (the
		// legacy "errors + sdl" case); callers need that SDL and the error
		// list to populate fullSchemaSdl/compositionErrors on a rejected
		// publish, so the failed outcome still carries the full result.
		return Outcome[CompositionResult]{
			Status: StatusFailed,
			Result: CompositionResult{Result: result},
			Reason: formatCompositionErrors(result),
		}, nil
	}
	return Completed(CompositionResult{Result: result}), nil
}

func formatCompositionErrors(result *orchestrator.Result) string {
	if len(result.Errors) == 0 {
		return ""
	}
	msg := result.Errors[0].Message
	for _, e := range result.Errors[1:] {
		msg += "; " + e.Message
	}
	return msg
}
