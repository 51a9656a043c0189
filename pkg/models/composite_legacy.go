package models

import (
	"context"

	"github.com/platinummonkey/schemahub/pkg/checks"
	"github.com/platinummonkey/schemahub/pkg/inspector"
	"github.com/platinummonkey/schemahub/pkg/orchestrator"
)

// compositeLegacyModel is the legacy composite variant: skips policy checks,
// never issues per-contract results (legacy targets predate contracts), and
// accepts composition/breaking-change failures when the caller sets Force.
type compositeLegacyModel struct{}

func (compositeLegacyModel) Check(ctx context.Context, mc Context, in CheckInput) (CheckConclusion, error) {
	nameOutcome := checks.ServiceName(in.ServiceName)
	if nameOutcome.IsFailed() {
		return CheckConclusion{Kind: CheckFailure, FailureReasons: []string{nameOutcome.Reason}}, nil
	}

	incomingSvc := renderIncoming(in.ServiceName, in.IncomingSDL, "")
	schemas := replaceOrAppend(mc.PreviousServices, incomingSvc)

	sumOutcome, err := checks.Checksum(mc.BaseSchema, schemas, checksumOfServices(mc.PreviousServices))
	if err != nil {
		return CheckConclusion{}, err
	}
	if sumOutcome.Result.Unchanged {
		return CheckConclusion{Kind: CheckSuccess, State: &CheckState{}}, nil
	}

	compOutcome, err := checks.Composition(ctx, mc.Orchestrator, schemas, orchestrator.Options{})
	if err != nil {
		return CheckConclusion{}, err
	}
	diffOutcome, err := checks.Diff(ctx, mc.Comparator, canonicalSDL(mc.PreviousServices), canonicalSDL(schemas), mc.ApprovedChanges,
		inspector.Options{
			FilterOutFederationChanges: true,
			Before:                     mc.PreviousServices,
			After:                      schemas,
			TargetID:                   mc.Target.ID,
			ValidationWindowHours:      mc.Target.ValidationWindowHours,
		})
	if err != nil {
		return CheckConclusion{}, err
	}

	if compOutcome.IsFailed() {
		return CheckConclusion{Kind: CheckFailure, FailureReasons: collectReasons(compOutcome.Reason)}, nil
	}

	state := &CheckState{Composition: compOutcome.Result.Result}
	if !diffOutcome.IsFailed() {
		state.SchemaChanges = append(diffOutcome.Result.Breaking, diffOutcome.Result.Safe...)
	}
	return CheckConclusion{Kind: CheckSuccess, State: state}, nil
}

func (compositeLegacyModel) Publish(ctx context.Context, mc Context, in PublishInput) (PublishConclusion, error) {
	nameOutcome := checks.ServiceName(in.ServiceName)
	if nameOutcome.IsFailed() {
		return PublishConclusion{Kind: PublishRejected, RejectReason: RejectMissingServiceName}, nil
	}
	urlOutcome := checks.ServiceURL(in.ServiceURL, in.PreviousURL)
	if urlOutcome.IsFailed() {
		return PublishConclusion{Kind: PublishRejected, RejectReason: RejectMissingServiceURL}, nil
	}

	incomingSvc := renderIncoming(in.ServiceName, in.IncomingSDL, in.ServiceURL)
	schemas := replaceOrAppend(mc.PreviousServices, incomingSvc)

	sumOutcome, err := checks.Checksum(mc.BaseSchema, schemas, checksumOfServices(mc.PreviousServices))
	if err != nil {
		return PublishConclusion{}, err
	}
	if sumOutcome.Result.Unchanged {
		return PublishConclusion{Kind: PublishIgnored, IgnoreReason: IgnoreNoChanges}, nil
	}

	compOutcome, err := checks.Composition(ctx, mc.Orchestrator, schemas, orchestrator.Options{})
	if err != nil {
		return PublishConclusion{}, err
	}
	diffOutcome, err := checks.Diff(ctx, mc.Comparator, canonicalSDL(mc.PreviousServices), canonicalSDL(schemas), mc.ApprovedChanges,
		inspector.Options{
			FilterOutFederationChanges: true,
			Before:                     mc.PreviousServices,
			After:                      schemas,
			TargetID:                   mc.Target.ID,
			ValidationWindowHours:      mc.Target.ValidationWindowHours,
		})
	if err != nil {
		return PublishConclusion{}, err
	}

	if compOutcome.IsFailed() {
		return PublishConclusion{Kind: PublishRejected, RejectReason: RejectCompositionFailure}, nil
	}
	if diffOutcome.IsFailed() && !(in.Force || in.ExperimentalAcceptBreakingChanges) {
		return PublishConclusion{Kind: PublishRejected, RejectReason: RejectBreakingChangesNotApproved}, nil
	}

	state := &PublishState{
		Composable:      true,
		FullSchemaSDL:   compOutcome.Result.Result.SDL,
		Supergraph:      compOutcome.Result.Result.Supergraph,
		Tags:            compOutcome.Result.Result.Tags,
		Changes:         append(diffOutcome.Result.Breaking, diffOutcome.Result.Safe...),
		BreakingChanges: diffOutcome.Result.Breaking,
		Initial:         len(mc.PreviousServices) == 0,
	}
	return PublishConclusion{Kind: PublishAccepted, State: state}, nil
}

func (compositeLegacyModel) Delete(ctx context.Context, mc Context, in DeleteInput) (DeleteConclusion, error) {
	schemas := removeByName(mc.PreviousServices, in.ServiceName)

	compOutcome, err := checks.Composition(ctx, mc.Orchestrator, schemas, orchestrator.Options{})
	if err != nil {
		return DeleteConclusion{}, err
	}

	return DeleteConclusion{
		Kind: DeleteAccepted,
		State: &DeleteState{
			Composable:        !compOutcome.IsFailed(),
			FullSchemaSDL:     compOutcome.Result.Result.SDL,
			Supergraph:        compOutcome.Result.Result.Supergraph,
			Tags:              compOutcome.Result.Result.Tags,
			CompositionErrors: convertCompositionErrors(compOutcome.Result.Result.Errors),
		},
	}, nil
}
