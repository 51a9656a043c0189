package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/schemahub/pkg/auth"
	"github.com/platinummonkey/schemahub/pkg/models"
	"github.com/platinummonkey/schemahub/pkg/notifier"
	"github.com/platinummonkey/schemahub/pkg/registrytypes"
)

// Check runs a schemaCheck: authorize, load context, dispatch to the
// target's Model, persist the outcome as a SchemaCheck row. It never takes
// the per-target lock and never touches the idempotency cache — a check
// never advances the target, so there is nothing to serialize against.
func (p *Publisher) Check(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	if _, err := p.authz.Authorize(ctx, req.TargetID, auth.ActionSchemaCheck); err != nil {
		return nil, fmt.Errorf("publisher: authorize check: %w", err)
	}

	lc, err := p.loadContext(ctx, req.TargetID, req.ContextID, req.IntegrationMetadata)
	if err != nil {
		return nil, err
	}

	conclusion, err := models.Select(lc.Project).Check(ctx, lc.Context, models.CheckInput{
		IncomingSDL: req.IncomingSDL,
		ServiceName: req.ServiceName,
		ContextID:   lc.ContextID,
	})
	if err != nil {
		return nil, fmt.Errorf("publisher: run check: %w", err)
	}

	check := buildSchemaCheckRecord(lc, req, conclusion, p.retentionDays)
	if err := p.store.CreateSchemaCheck(ctx, check); err != nil {
		return nil, fmt.Errorf("publisher: persist check: %w", err)
	}

	if conclusion.Kind == models.CheckFailure {
		p.dispatch(ctx, &notifier.Event{
			Type: notifier.EventSchemaCheckFailed,
			Data: map[string]interface{}{
				"target_id": req.TargetID,
				"check_id":  check.ID,
				"reasons":   conclusion.FailureReasons,
			},
		})
	} else if hasBreakingChanges(conclusion.State) {
		p.dispatch(ctx, &notifier.Event{
			Type: notifier.EventBreakingChangeDetected,
			Data: map[string]interface{}{
				"target_id": req.TargetID,
				"check_id":  check.ID,
			},
		})
	}

	return &CheckResult{CheckID: check.ID, Conclusion: conclusion}, nil
}

func hasBreakingChanges(state *models.CheckState) bool {
	if state == nil {
		return false
	}
	for _, c := range state.SchemaChanges {
		if c.IsBreaking() {
			return true
		}
	}
	return false
}

func buildSchemaCheckRecord(lc *loadedContext, req CheckRequest, conclusion models.CheckConclusion, retentionDays int) *registrytypes.SchemaCheck {
	now := time.Now()
	check := &registrytypes.SchemaCheck{
		ID:                  uuid.NewString(),
		TargetID:            req.TargetID,
		SchemaSDL:           req.IncomingSDL,
		IsSuccess:           conclusion.Kind == models.CheckSuccess,
		ContextID:           lc.ContextID,
		CreatedAt:           now,
		ExpiresAt:           now.Add(time.Duration(retentionDays) * 24 * time.Hour),
		IntegrationMetadata: req.IntegrationMetadata,
	}
	if lc.LatestVersion != nil {
		id := lc.LatestVersion.ID
		check.SchemaVersionID = &id
	}
	if conclusion.State != nil {
		for _, c := range conclusion.State.SchemaChanges {
			if c.Severity == registrytypes.SeverityBreaking {
				check.BreakingChanges = append(check.BreakingChanges, c)
			} else {
				check.SafeChanges = append(check.SafeChanges, c)
			}
		}
		check.PolicyWarnings = conclusion.State.SchemaPolicyWarnings
		if conclusion.State.Composition != nil {
			sdl := conclusion.State.Composition.SDL
			check.CompositeSchemaSDL = &sdl
			supergraph := conclusion.State.Composition.Supergraph
			check.SupergraphSDL = &supergraph
		}
	}
	if conclusion.Kind == models.CheckFailure {
		check.PolicyErrors = conclusion.FailureReasons
	}
	return check
}
