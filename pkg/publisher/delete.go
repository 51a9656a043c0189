package publisher

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/platinummonkey/schemahub/pkg/auth"
	"github.com/platinummonkey/schemahub/pkg/models"
	"github.com/platinummonkey/schemahub/pkg/notifier"
	"github.com/platinummonkey/schemahub/pkg/registrytypes"
)

// Delete runs a schemaDelete: authorize, take the per-target lock, load
// context, dispatch to the target's Model, and persist an accepted result
// as a new version with a DELETE log entry. Delete has no idempotency
// window of its own — removing an already-removed service is a no-op
// composition the Model itself reaches deterministically.
func (p *Publisher) Delete(ctx context.Context, req DeleteRequest) (*DeleteResult, error) {
	if _, err := p.authz.Authorize(ctx, req.TargetID, auth.ActionSchemaDelete); err != nil {
		return nil, fmt.Errorf("publisher: authorize delete: %w", err)
	}

	var result *DeleteResult
	err := p.locker.WithLock(ctx, req.TargetID, func(ctx context.Context) error {
		lc, err := p.loadContext(ctx, req.TargetID, req.ContextID, req.IntegrationMetadata)
		if err != nil {
			return err
		}

		conclusion, err := models.Select(lc.Project).Delete(ctx, lc.Context, models.DeleteInput{ServiceName: req.ServiceName})
		if err != nil {
			return fmt.Errorf("publisher: run delete: %w", err)
		}

		if conclusion.Kind != models.DeleteAccepted || req.DryRun {
			result = &DeleteResult{Conclusion: conclusion}
			return nil
		}

		version, entries, activeEntries := buildDeletedVersion(lc, req, conclusion)
		var artifacts []artifact
		if conclusion.State.Composable {
			artifacts = buildArtifacts(req.TargetID, activeEntries, conclusion.State.FullSchemaSDL, conclusion.State.Supergraph, nil, nil)
		}
		if err := p.store.CreateSchemaVersion(ctx, version, entries, func(ctx context.Context) error {
			if err := putArtifacts(ctx, p.store, artifacts); err != nil {
				return err
			}
			p.notifyDelete(ctx, req.TargetID, version.ID, conclusion)
			return nil
		}); err != nil {
			return fmt.Errorf("publisher: persist version: %w", err)
		}

		result = &DeleteResult{VersionID: version.ID, Conclusion: conclusion}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Publisher) notifyDelete(ctx context.Context, targetID, versionID string, conclusion models.DeleteConclusion) {
	if conclusion.State == nil || (len(conclusion.State.Changes) == 0 && len(conclusion.State.CompositionErrors) == 0) {
		return
	}
	p.dispatch(ctx, &notifier.Event{
		Type: notifier.EventSchemaVersionDeleted,
		Data: map[string]interface{}{
			"target_id":  targetID,
			"version_id": versionID,
			"breaking":   len(conclusion.State.BreakingChanges) > 0,
		},
	})
}

// buildDeletedVersion mirrors buildPublishedVersion but advances the active
// log set with a DELETE entry, which ActiveLogSet resolves by removing the
// named service rather than replacing it.
func buildDeletedVersion(lc *loadedContext, req DeleteRequest, conclusion models.DeleteConclusion) (*registrytypes.SchemaVersion, []registrytypes.SchemaLogEntry, []registrytypes.SchemaLogEntry) {
	incoming := registrytypes.SchemaLogEntry{
		ID:          uuid.NewString(),
		TargetID:    req.TargetID,
		Kind:        registrytypes.LogEntryDelete,
		ServiceName: req.ServiceName,
	}

	activeEntries := registrytypes.ActiveLogSet(lc.PreviousLogEntries, incoming)

	ids := make([]string, 0, len(activeEntries))
	for _, e := range activeEntries {
		ids = append(ids, e.ID)
	}

	version := &registrytypes.SchemaVersion{
		ID:                uuid.NewString(),
		TargetID:          req.TargetID,
		BaseSchema:        lc.BaseSchema,
		ActiveLogEntryIDs: ids,
	}
	if lc.LatestVersion != nil {
		prevID := lc.LatestVersion.ID
		version.PreviousSchemaVersionID = &prevID
	}

	state := conclusion.State
	version.IsComposable = state.Composable
	if state.Composable {
		sdl := state.FullSchemaSDL
		version.CompositeSchemaSDL = &sdl
		supergraph := state.Supergraph
		version.SupergraphSDL = &supergraph
	} else {
		version.SchemaCompositionErrors = state.CompositionErrors
	}
	version.Tags = state.Tags

	return version, []registrytypes.SchemaLogEntry{incoming}, activeEntries
}
