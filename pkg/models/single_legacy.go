package models

import (
	"context"

	"github.com/platinummonkey/schemahub/pkg/checks"
	"github.com/platinummonkey/schemahub/pkg/inspector"
	"github.com/platinummonkey/schemahub/pkg/orchestrator"
	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

// singleLegacyModel is the legacy single-schema variant: skips policy checks
// and accepts breaking changes when the caller sets Force or
// ExperimentalAcceptBreakingChanges, mirroring the pre-contracts registry
// behavior kept around for targets that opted out of the modern model.
type singleLegacyModel struct{}

func (singleLegacyModel) Check(ctx context.Context, mc Context, in CheckInput) (CheckConclusion, error) {
	incoming := []schemadoc.Service{renderIncoming("default", in.IncomingSDL, "")}

	sumOutcome, err := checks.Checksum(mc.BaseSchema, incoming, checksumOf(mc.PreviousSDL))
	if err != nil {
		return CheckConclusion{}, err
	}
	if sumOutcome.Result.Unchanged {
		return CheckConclusion{Kind: CheckSuccess, State: &CheckState{}}, nil
	}

	compOutcome, err := checks.Composition(ctx, mc.Orchestrator, incoming, orchestrator.Options{})
	if err != nil {
		return CheckConclusion{}, err
	}
	diffOutcome, err := checks.Diff(ctx, mc.Comparator, mc.PreviousSDL, in.IncomingSDL, mc.ApprovedChanges,
		inspector.Options{TargetID: mc.Target.ID, ValidationWindowHours: mc.Target.ValidationWindowHours})
	if err != nil {
		return CheckConclusion{}, err
	}

	if compOutcome.IsFailed() {
		return CheckConclusion{Kind: CheckFailure, FailureReasons: collectReasons(compOutcome.Reason)}, nil
	}
	// Legacy targets never fail a check on breaking changes alone; diff
	// failures only withhold the schemaChanges annotation.
	state := &CheckState{
		Composition: compOutcome.Result.Result,
	}
	if !diffOutcome.IsFailed() {
		state.SchemaChanges = append(diffOutcome.Result.Breaking, diffOutcome.Result.Safe...)
	}

	return CheckConclusion{Kind: CheckSuccess, State: state}, nil
}

func (singleLegacyModel) Publish(ctx context.Context, mc Context, in PublishInput) (PublishConclusion, error) {
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

	// Legacy model rejects on composition failure unconditionally, and on an
	// unapproved breaking change unless the caller set Force or
	// ExperimentalAcceptBreakingChanges.
	if compOutcome.IsFailed() {
		return PublishConclusion{Kind: PublishRejected, RejectReason: RejectCompositionFailure}, nil
	}
	if diffOutcome.IsFailed() && !(in.Force || in.ExperimentalAcceptBreakingChanges) {
		return PublishConclusion{Kind: PublishRejected, RejectReason: RejectBreakingChangesNotApproved}, nil
	}

	state := &PublishState{
		Composable:      true,
		FullSchemaSDL:   compOutcome.Result.Result.SDL,
		Changes:         append(diffOutcome.Result.Breaking, diffOutcome.Result.Safe...),
		BreakingChanges: diffOutcome.Result.Breaking,
		Initial:         mc.PreviousSDL == "",
	}

	return PublishConclusion{Kind: PublishAccepted, State: state}, nil
}

func (singleLegacyModel) Delete(ctx context.Context, mc Context, in DeleteInput) (DeleteConclusion, error) {
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
