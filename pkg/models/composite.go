package models

import (
	"context"

	"github.com/platinummonkey/schemahub/pkg/checks"
	"github.com/platinummonkey/schemahub/pkg/inspector"
	"github.com/platinummonkey/schemahub/pkg/orchestrator"
	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

// compositeModel is the modern federation/stitching variant: every change is
// composed against the full service set, checked against the baseline set of
// contracts independently, and any policy or checksum failure is surfaced
// per-service.
type compositeModel struct{}

func (compositeModel) Check(ctx context.Context, mc Context, in CheckInput) (CheckConclusion, error) {
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

	opts := orchestrator.Options{Contracts: contractInputs(mc.Contracts)}

	var compOutcome checks.Outcome[checks.CompositionResult]
	var diffOutcome checks.Outcome[checks.DiffResult]
	var polOutcome checks.Outcome[checks.PolicyResult]

	runErr := checks.RunConcurrently(ctx,
		func(ctx context.Context) error {
			o, e := checks.Composition(ctx, mc.Orchestrator, schemas, opts)
			compOutcome = o
			return e
		},
		func(ctx context.Context) error {
			o, e := checks.Diff(ctx, mc.Comparator, canonicalSDL(mc.PreviousServices), canonicalSDL(schemas), mc.ApprovedChanges,
				inspector.Options{
					FilterOutFederationChanges: true,
					Before:                     mc.PreviousServices,
					After:                      schemas,
					TargetID:                   mc.Target.ID,
					ValidationWindowHours:      mc.Target.ValidationWindowHours,
				})
			diffOutcome = o
			return e
		},
		func(ctx context.Context) error {
			o, e := checks.PolicyCheck(ctx, mc.PolicyEngine, schemadoc.Service{SDL: canonicalSDL(schemas)})
			polOutcome = o
			return e
		},
	)
	if runErr != nil {
		return CheckConclusion{}, runErr
	}

	contractResults := evaluateContractChecks(ctx, mc, schemas)

	if compOutcome.IsFailed() || diffOutcome.IsFailed() || polOutcome.IsFailed() {
		return CheckConclusion{
			Kind:            CheckFailure,
			FailureReasons:  collectReasons(compOutcome.Reason, diffOutcome.Reason, polOutcome.Reason),
			ContractResults: contractResults,
		}, nil
	}

	var composition *orchestrator.Result
	if !compOutcome.IsFailed() {
		composition = compOutcome.Result.Result
	}

	return CheckConclusion{
		Kind: CheckSuccess,
		State: &CheckState{
			Composition:          composition,
			SchemaChanges:        append(diffOutcome.Result.Breaking, diffOutcome.Result.Safe...),
			SchemaPolicyWarnings: polOutcome.Result.Warnings,
		},
		ContractResults: contractResults,
	}, nil
}

func (compositeModel) Publish(ctx context.Context, mc Context, in PublishInput) (PublishConclusion, error) {
	nameOutcome := checks.ServiceName(in.ServiceName)
	if nameOutcome.IsFailed() {
		return PublishConclusion{Kind: PublishRejected, RejectReason: RejectMissingServiceName}, nil
	}
	urlOutcome := checks.ServiceURL(in.ServiceURL, in.PreviousURL)
	if urlOutcome.IsFailed() {
		return PublishConclusion{Kind: PublishRejected, RejectReason: RejectMissingServiceURL}, nil
	}
	if metaOutcome := checks.Metadata(in.Metadata, in.PreviousMetadata); metaOutcome.IsFailed() {
		return PublishConclusion{Kind: PublishRejected, RejectReason: RejectMetadataParsingFailure}, nil
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

	opts := orchestrator.Options{Contracts: contractInputs(mc.Contracts)}
	compOutcome, err := checks.Composition(ctx, mc.Orchestrator, schemas, opts)
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
			Supergraph:        compOutcome.Result.Result.Supergraph,
			Tags:              compOutcome.Result.Result.Tags,
			Contracts:         compOutcome.Result.Result.Contracts,
			CompositionErrors: convertCompositionErrors(compOutcome.Result.Result.Errors),
			Initial:           len(mc.PreviousServices) == 0,
		},
	}, nil
}

func (compositeModel) Delete(ctx context.Context, mc Context, in DeleteInput) (DeleteConclusion, error) {
	schemas := removeByName(mc.PreviousServices, in.ServiceName)

	opts := orchestrator.Options{Contracts: contractInputs(mc.Contracts)}
	compOutcome, err := checks.Composition(ctx, mc.Orchestrator, schemas, opts)
	if err != nil {
		return DeleteConclusion{}, err
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
		return DeleteConclusion{}, err
	}

	return DeleteConclusion{
		Kind: DeleteAccepted,
		State: &DeleteState{
			Composable:        !compOutcome.IsFailed(),
			FullSchemaSDL:     compOutcome.Result.Result.SDL,
			Changes:           append(diffOutcome.Result.Breaking, diffOutcome.Result.Safe...),
			BreakingChanges:   diffOutcome.Result.Breaking,
			Supergraph:        compOutcome.Result.Result.Supergraph,
			Tags:              compOutcome.Result.Result.Tags,
			CompositionErrors: convertCompositionErrors(compOutcome.Result.Result.Errors),
		},
	}, nil
}

func contractInputs(contracts []ContractContext) []orchestrator.ContractInput {
	out := make([]orchestrator.ContractInput, 0, len(contracts))
	for _, c := range contracts {
		out = append(out, orchestrator.ContractInput{
			ID: c.Contract.ID,
			Filter: orchestrator.ContractFilter{
				IncludeTags:                              c.Contract.IncludeTags,
				ExcludeTags:                              c.Contract.ExcludeTags,
				RemoveUnreachableTypesFromPublicAPISchema: c.Contract.RemoveUnreachableTypesFromPublicAPISchema,
			},
		})
	}
	return out
}

// evaluateContractChecks composes and diffs the new schema against each
// contract's own filter and last-valid snapshot, isolating one contract's
// composition failure or unapproved breaking change from the others and
// from the primary check outcome.
func evaluateContractChecks(ctx context.Context, mc Context, schemas []schemadoc.Service) []ContractCheckResult {
	if len(mc.Contracts) == 0 {
		return nil
	}
	results := make([]ContractCheckResult, 0, len(mc.Contracts))
	for _, cc := range mc.Contracts {
		compOutcome, err := checks.Composition(ctx, mc.Orchestrator, schemas, orchestrator.Options{
			Contracts: []orchestrator.ContractInput{{
				ID: cc.Contract.ID,
				Filter: orchestrator.ContractFilter{
					IncludeTags:                              cc.Contract.IncludeTags,
					ExcludeTags:                              cc.Contract.ExcludeTags,
					RemoveUnreachableTypesFromPublicAPISchema: cc.Contract.RemoveUnreachableTypesFromPublicAPISchema,
				},
			}},
		})
		if err != nil {
			results = append(results, ContractCheckResult{ContractID: cc.Contract.ID, IsSuccessful: false, Reason: err.Error()})
			continue
		}
		if compOutcome.IsFailed() {
			results = append(results, ContractCheckResult{ContractID: cc.Contract.ID, IsSuccessful: false, Reason: compOutcome.Reason})
			continue
		}

		var contractSDL string
		if len(compOutcome.Result.Result.Contracts) > 0 {
			contractSDL = compOutcome.Result.Result.Contracts[0].SDL
		}
		var previousSDL string
		if cc.LastValidSVC != nil && cc.LastValidSVC.CompositeSchemaSDL != nil {
			previousSDL = *cc.LastValidSVC.CompositeSchemaSDL
		}

		diffOutcome, err := checks.Diff(ctx, mc.Comparator, previousSDL, contractSDL, mc.ApprovedChanges,
			inspector.Options{TargetID: mc.Target.ID, ValidationWindowHours: mc.Target.ValidationWindowHours})
		if err != nil {
			results = append(results, ContractCheckResult{ContractID: cc.Contract.ID, IsSuccessful: false, Reason: err.Error()})
			continue
		}
		if diffOutcome.IsFailed() {
			results = append(results, ContractCheckResult{
				ContractID:      cc.Contract.ID,
				IsSuccessful:    false,
				Reason:          diffOutcome.Reason,
				BreakingChanges: diffOutcome.Result.Breaking,
			})
			continue
		}

		results = append(results, ContractCheckResult{ContractID: cc.Contract.ID, IsSuccessful: true})
	}
	return results
}

func checksumOfServices(services []schemadoc.Service) string {
	canon := canonicalSDL(services)
	if canon == "" {
		return ""
	}
	return schemadoc.Checksum(canon)
}

func canonicalSDL(services []schemadoc.Service) string {
	if len(services) == 0 {
		return ""
	}
	canon, err := schemadoc.Canonicalize("", services)
	if err != nil {
		return ""
	}
	return canon
}
