package publisher

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/schemahub/pkg/inspector"
	"github.com/platinummonkey/schemahub/pkg/models"
	"github.com/platinummonkey/schemahub/pkg/orchestrator"
	"github.com/platinummonkey/schemahub/pkg/registrytypes"
	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

// loadedContext bundles the baseline state a Model needs, plus the pieces
// of it the caller (Check/Publish/Delete) consults directly.
type loadedContext struct {
	models.Context

	LatestVersion      *registrytypes.SchemaVersion
	LatestValidVersion *registrytypes.SchemaVersion
	ContextID          string

	// PreviousLogEntries are the baseline version's active log entries,
	// with their original ids preserved so a new version can carry forward
	// the ones it doesn't replace.
	PreviousLogEntries []registrytypes.SchemaLogEntry
}

// loadContext fetches target, project and the baseline state in parallel
// where the data dependencies allow it: target and project resolve
// sequentially (project needs target.ProjectID), but the version, approval
// and contract lookups only need targetID and run concurrently with that
// chain and each other.
func (p *Publisher) loadContext(ctx context.Context, targetID, contextID string, integrationMetadata map[string]any) (*loadedContext, error) {
	lc := &loadedContext{}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		target, err := p.orgsSvc.GetTarget(egCtx, targetID)
		if err != nil {
			return fmt.Errorf("publisher: load target: %w", err)
		}
		project, err := p.orgsSvc.GetProject(egCtx, target.ProjectID)
		if err != nil {
			return fmt.Errorf("publisher: load project: %w", err)
		}
		lc.Target = *target
		lc.Project = *project
		return nil
	})

	eg.Go(func() error {
		v, err := p.store.GetMaybeLatestVersion(egCtx, targetID)
		if err != nil {
			return fmt.Errorf("publisher: load latest version: %w", err)
		}
		lc.LatestVersion = v
		return nil
	})

	eg.Go(func() error {
		v, err := p.store.GetMaybeLatestValidVersion(egCtx, targetID)
		if err != nil {
			return fmt.Errorf("publisher: load latest valid version: %w", err)
		}
		lc.LatestValidVersion = v
		return nil
	})

	eg.Go(func() error {
		resolved, err := resolveContextID(contextID, integrationMetadata)
		if err != nil {
			return err
		}
		lc.ContextID = resolved
		return nil
	})

	eg.Go(func() error {
		contracts, err := p.store.GetContractsForTarget(egCtx, targetID)
		if err != nil {
			return fmt.Errorf("publisher: load contracts: %w", err)
		}
		contextsOut := make([]models.ContractContext, 0, len(contracts))
		for _, c := range contracts {
			svc, err := p.store.GetLastValidSchemaVersionContract(egCtx, c.ID)
			if err != nil {
				return fmt.Errorf("publisher: load last valid contract version %s: %w", c.ID, err)
			}
			contextsOut = append(contextsOut, models.ContractContext{Contract: c, LastValidSVC: svc})
		}
		lc.Contracts = contextsOut
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Approved changes is keyed by the resolved context id, so it must run
	// after that resolution completes.
	approvals, err := p.store.GetApprovedSchemaChangesForContextID(ctx, targetID, lc.ContextID)
	if err != nil {
		return nil, fmt.Errorf("publisher: load approved changes: %w", err)
	}
	lc.ApprovedChanges = approvals

	baseline := lc.LatestVersion
	if lc.Target.CompareToPreviousComposableVersion {
		baseline = lc.LatestValidVersion
	}
	if baseline != nil {
		entries, err := p.store.GetLogEntriesByIDs(ctx, baseline.ActiveLogEntryIDs)
		if err != nil {
			return nil, fmt.Errorf("publisher: resolve baseline log entries: %w", err)
		}
		lc.PreviousLogEntries = entries
		lc.PreviousServices = servicesFromLogEntries(entries)
		lc.BaseSchema = baseline.BaseSchema
		if baseline.CompositeSchemaSDL != nil {
			lc.PreviousSDL = *baseline.CompositeSchemaSDL
		}
	}

	lc.Orchestrator = orchestrator.Select(orchestratorKind(lc.Project.Type), externalConfig(lc.Project))
	lc.PolicyEngine = p.policyEngine
	lc.Comparator = inspector.New(p.oracle)

	return lc, nil
}

func orchestratorKind(t registrytypes.ProjectType) orchestrator.Kind {
	switch t {
	case registrytypes.ProjectTypeFederation:
		return orchestrator.KindFederation
	case registrytypes.ProjectTypeStitching:
		return orchestrator.KindStitching
	default:
		return orchestrator.KindSingle
	}
}

func externalConfig(project registrytypes.Project) *orchestrator.ExternalConfig {
	if !project.ExternalCompositionEnabled() {
		return nil
	}
	return &orchestrator.ExternalConfig{
		Endpoint: project.ExternalCompositionURL,
		Secret:   project.ExternalCompositionSecret,
	}
}

// servicesFromLogEntries renders a baseline's PUSH log entries into the
// subgraph service set a Model compares against. DELETE entries never
// survive into a version's active set (registrytypes.ActiveLogSet already
// resolved them away), so every entry here is a PUSH.
func servicesFromLogEntries(entries []registrytypes.SchemaLogEntry) []schemadoc.Service {
	out := make([]schemadoc.Service, 0, len(entries))
	for _, e := range entries {
		out = append(out, schemadoc.Service{Name: e.ServiceName, SDL: e.SDL, URL: e.ServiceURL})
	}
	return out
}
