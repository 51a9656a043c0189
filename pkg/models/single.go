package models

import (
	"context"

	"github.com/platinummonkey/schemahub/pkg/checks"
	"github.com/platinummonkey/schemahub/pkg/inspector"
	"github.com/platinummonkey/schemahub/pkg/orchestrator"
	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

// singleModel is the modern single-schema variant.
type singleModel struct{}

func (singleModel) Check(ctx context.Context, mc Context, in CheckInput) (CheckConclusion, error) {
	incoming := []schemadoc.Service{renderIncoming("default", in.IncomingSDL, "")}

	sumOutcome, err := checks.Checksum(mc.BaseSchema, incoming, checksumOf(mc.PreviousSDL))
	if err != nil {
		return CheckConclusion{}, err
	}
	if sumOutcome.Result.Unchanged {
		return CheckConclusion{Kind: CheckSuccess, State: &CheckState{}}, nil
	}

	var compOutcome checks.Outcome[checks.CompositionResult]
	var diffOutcome checks.Outcome[checks.DiffResult]
	var polOutcome checks.Outcome[checks.PolicyResult]

	runErr := checks.RunConcurrently(ctx,
		func(ctx context.Context) error {
			o, e := checks.Composition(ctx, mc.Orchestrator, incoming, orchestrator.Options{})
			compOutcome = o
			return e
		},
		func(ctx context.Context) error {
			composedSDL := in.IncomingSDL
			o, e := checks.Diff(ctx, mc.Comparator, mc.PreviousSDL, composedSDL, mc.ApprovedChanges, inspector.Options{TargetID: mc.Target.ID, ValidationWindowHours: mc.Target.ValidationWindowHours})
			diffOutcome = o
			return e
		},
		func(ctx context.Context) error {
			o, e := checks.PolicyCheck(ctx, mc.PolicyEngine, schemadoc.Service{Name: "default", SDL: in.IncomingSDL})
			polOutcome = o
			return e
		},
	)
	if runErr != nil {
		return CheckConclusion{}, runErr
	}

	if compOutcome.IsFailed() || diffOutcome.IsFailed() || polOutcome.IsFailed() {
		return CheckConclusion{Kind: CheckFailure, FailureReasons: collectReasons(compOutcome.Reason, diffOutcome.Reason, polOutcome.Reason)}, nil
	}

	return CheckConclusion{
		Kind: CheckSuccess,
		State: &CheckState{
			Composition:         compOutcome.Result.Result,
			SchemaChanges:        append(diffOutcome.Result.Breaking, diffOutcome.Result.Safe...),
			SchemaPolicyWarnings: polOutcome.Result.Warnings,
		},
	}, nil
}

func (m singleModel) Publish(ctx context.Context, mc Context, in PublishInput) (PublishConclusion, error) {
	incoming := []schemadoc.Service{renderIncoming("default", in.IncomingSDL, "")}

	sumOutcome, err := checks.Checksum(mc.BaseSchema, incoming, checksumOf(mc.PreviousSDL))
	if err != nil {
		return PublishConclusion{}, err
	}
	if sumOutcome.Result.Unchanged {
		return PublishConclusion{Kind: PublishIgnored, IgnoreReason: IgnoreNoChanges}, nil
	}

	compOutcome, err := checks.Composition(ctx, mc.Orchestrator, incoming, orchestrator.Options{})
	if err != nil {
		return PublishConclusion{}, err
	}

	diffOutcome, err := checks.Diff(ctx, mc.Comparator, mc.PreviousSDL, in.IncomingSDL, mc.ApprovedChanges,
		inspector.Options{TargetID: mc.Target.ID, ValidationWindowHours: mc.Target.ValidationWindowHours})
	if err != nil {
		return PublishConclusion{}, err
	}

	if compOutcome.IsFailed() && in.CompareToLatest {
		return PublishConclusion{Kind: PublishRejected, RejectReason: RejectCompositionFailure}, nil
	}

	return PublishConclusion{
		Kind: PublishAccepted,
		State: &PublishState{
			Composable:        !compOutcome.IsFailed(),
			Changes:           append(diffOutcome.Result.Breaking, diffOutcome.Result.Safe...),
			BreakingChanges:   diffOutcome.Result.Breaking,
			FullSchemaSDL:     compOutcome.Result.Result.SDL,
			CompositionErrors: convertCompositionErrors(compOutcome.Result.Result.Errors),
			Initial:           mc.PreviousSDL == "",
		},
	}, nil
}

func (m singleModel) Delete(ctx context.Context, mc Context, in DeleteInput) (DeleteConclusion, error) {
	// Deleting the only schema of a single-schema target empties it.
	compOutcome, err := checks.Composition(ctx, mc.Orchestrator, nil, orchestrator.Options{})
	if err != nil {
		return DeleteConclusion{}, err
	}
	return DeleteConclusion{
		Kind: DeleteAccepted,
		State: &DeleteState{
			Composable:        !compOutcome.IsFailed(),
			FullSchemaSDL:     compOutcome.Result.Result.SDL,
			CompositionErrors: convertCompositionErrors(compOutcome.Result.Result.Errors),
		},
	}, nil
}

func collectReasons(reasons ...string) []string {
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

func checksumOf(sdl string) string {
	if sdl == "" {
		return ""
	}
	canon, err := schemadoc.Canonicalize("", []schemadoc.Service{{Name: "default", SDL: sdl}})
	if err != nil {
		return ""
	}
	return schemadoc.Checksum(canon)
}
