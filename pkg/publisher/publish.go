package publisher

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/platinummonkey/schemahub/pkg/auth"
	"github.com/platinummonkey/schemahub/pkg/models"
	"github.com/platinummonkey/schemahub/pkg/notifier"
	"github.com/platinummonkey/schemahub/pkg/registrytypes"
	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

// Publish runs a schemaPublish: authorize, take the per-target lock,
// deduplicate against the idempotency window, load context, dispatch to
// the target's Model, and persist an accepted result transactionally.
func (p *Publisher) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	if _, err := p.authz.Authorize(ctx, req.TargetID, auth.ActionSchemaPublish); err != nil {
		return nil, fmt.Errorf("publisher: authorize publish: %w", err)
	}

	var result *PublishResult
	err := p.locker.WithLock(ctx, req.TargetID, func(ctx context.Context) error {
		checksum := requestChecksum(req.ServiceName, req.IncomingSDL, req.ServiceURL, req.Metadata)

		if p.idem != nil {
			seen, err := p.idem.SeenRecently(ctx, req.TargetID, checksum)
			if err != nil {
				return fmt.Errorf("publisher: idempotency check: %w", err)
			}
			if seen {
				result = &PublishResult{Conclusion: models.PublishConclusion{Kind: models.PublishIgnored, IgnoreReason: models.IgnoreNoChanges}}
				return nil
			}
		}

		lc, err := p.loadContext(ctx, req.TargetID, req.ContextID, req.IntegrationMetadata)
		if err != nil {
			return err
		}

		previousURL, previousMetadata := previousServiceEntry(lc.PreviousLogEntries, req.ServiceName)
		conclusion, err := models.Select(lc.Project).Publish(ctx, lc.Context, models.PublishInput{
			IncomingSDL:                       req.IncomingSDL,
			ServiceName:                       req.ServiceName,
			ServiceURL:                        req.ServiceURL,
			PreviousURL:                       previousURL,
			Metadata:                          req.Metadata,
			PreviousMetadata:                  previousMetadata,
			CompareToLatest:                   req.CompareToLatest,
			Author:                            req.Author,
			Commit:                            req.Commit,
			Force:                             req.Force,
			ExperimentalAcceptBreakingChanges: req.ExperimentalAcceptBreakingChanges,
		})
		if err != nil {
			return fmt.Errorf("publisher: run publish: %w", err)
		}

		if conclusion.Kind != models.PublishAccepted {
			result = &PublishResult{Conclusion: conclusion}
			return nil
		}

		version, entries, activeEntries := buildPublishedVersion(lc, req, conclusion)
		var artifacts []artifact
		if conclusion.State.Composable {
			artifacts = buildArtifacts(req.TargetID, activeEntries, conclusion.State.FullSchemaSDL, conclusion.State.Supergraph,
				conclusion.State.Contracts, contractNameByID(lc.Contracts))
		}
		if err := p.store.CreateSchemaVersion(ctx, version, entries, func(ctx context.Context) error {
			if err := putArtifacts(ctx, p.store, artifacts); err != nil {
				return err
			}
			if err := persistContractVersions(ctx, p.store, version.ID, conclusion.State.Contracts, lc.Contracts); err != nil {
				return err
			}
			p.notifyPublish(ctx, req.TargetID, version.ID, conclusion)
			return nil
		}); err != nil {
			return fmt.Errorf("publisher: persist version: %w", err)
		}

		result = &PublishResult{VersionID: version.ID, Conclusion: conclusion}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Publisher) notifyPublish(ctx context.Context, targetID, versionID string, conclusion models.PublishConclusion) {
	if conclusion.State == nil || (len(conclusion.State.Changes) == 0 && len(conclusion.State.CompositionErrors) == 0) {
		return
	}
	p.dispatch(ctx, &notifier.Event{
		Type: notifier.EventSchemaVersionPublished,
		Data: map[string]interface{}{
			"target_id":  targetID,
			"version_id": versionID,
			"breaking":   len(conclusion.State.BreakingChanges) > 0,
		},
	})
}

func previousServiceEntry(previous []registrytypes.SchemaLogEntry, serviceName string) (url, metadata string) {
	for _, e := range previous {
		if e.ServiceName == serviceName {
			return e.ServiceURL, e.Metadata
		}
	}
	return "", ""
}

func requestChecksum(serviceName, sdl, url, metadata string) string {
	return schemadoc.Checksum(serviceName + "\x00" + sdl + "\x00" + url + "\x00" + metadata)
}

// buildPublishedVersion constructs the new SchemaVersion row and the active
// log entry set it advances to, from an accepted PublishConclusion.
func buildPublishedVersion(lc *loadedContext, req PublishRequest, conclusion models.PublishConclusion) (*registrytypes.SchemaVersion, []registrytypes.SchemaLogEntry, []registrytypes.SchemaLogEntry) {
	incoming := registrytypes.SchemaLogEntry{
		ID:          uuid.NewString(),
		TargetID:    req.TargetID,
		Kind:        registrytypes.LogEntryPush,
		ServiceName: req.ServiceName,
		SDL:         req.IncomingSDL,
		ServiceURL:  req.ServiceURL,
		Metadata:    req.Metadata,
		Author:      req.Author,
		Commit:      req.Commit,
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

	// entries passed to CreateSchemaVersion are only the ones this call
	// introduces — inherited entries already exist in schema_log from the
	// version that first created them; ActiveLogEntryIDs above is what
	// links this version to all of them, new and inherited alike. activeEntries
	// is the full resolved set, returned separately for the artifact writer.
	return version, []registrytypes.SchemaLogEntry{incoming}, activeEntries
}
