package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/platinummonkey/schemahub/pkg/models"
	"github.com/platinummonkey/schemahub/pkg/orchestrator"
	"github.com/platinummonkey/schemahub/pkg/registrytypes"
	"github.com/platinummonkey/schemahub/pkg/storage"
)

// artifact is one object this package writes to the CDN object store, keyed
// artifact/{targetId}[/contracts/{contractName}]/{type}.
type artifact struct {
	key         string
	content     []byte
	contentType string
}

func artifactKey(targetID, contractName, kind string) string {
	if contractName == "" {
		return fmt.Sprintf("artifact/%s/%s", targetID, kind)
	}
	return fmt.Sprintf("artifact/%s/contracts/%s/%s", targetID, contractName, kind)
}

// artifactServiceEntry is one element of the "services" artifact: a JSON
// array of {name, sdl, url}.
type artifactServiceEntry struct {
	Name string `json:"name"`
	SDL  string `json:"sdl"`
	URL  string `json:"url,omitempty"`
}

// buildArtifacts assembles the CDN artifact set for one accepted, composable
// publish/delete: the composed sdl, the active services list, the
// supergraph (composite projects only), per-service metadata, and one
// sdl/supergraph pair per contract that composed cleanly.
func buildArtifacts(targetID string, entries []registrytypes.SchemaLogEntry, sdl, supergraph string, contracts []orchestrator.ContractResult, contractNames map[string]string) []artifact {
	sorted := append([]registrytypes.SchemaLogEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ServiceName < sorted[j].ServiceName })

	var out []artifact
	if sdl != "" {
		out = append(out, artifact{key: artifactKey(targetID, "", "sdl"), content: []byte(sdl), contentType: "application/graphql"})
	}
	if supergraph != "" {
		out = append(out, artifact{key: artifactKey(targetID, "", "supergraph"), content: []byte(supergraph), contentType: "application/graphql"})
	}

	services := make([]artifactServiceEntry, 0, len(sorted))
	metaParts := make([]json.RawMessage, 0, len(sorted))
	for _, e := range sorted {
		services = append(services, artifactServiceEntry{Name: e.ServiceName, SDL: e.SDL, URL: e.ServiceURL})
		metaParts = append(metaParts, rawMetadata(e.Metadata))
	}
	if b, err := json.Marshal(services); err == nil {
		out = append(out, artifact{key: artifactKey(targetID, "", "services"), content: b, contentType: "application/json"})
	}
	if metaBody, ok := buildMetadataArtifact(metaParts); ok {
		out = append(out, artifact{key: artifactKey(targetID, "", "metadata"), content: metaBody, contentType: "application/json"})
	}

	for _, cr := range contracts {
		if len(cr.Errors) > 0 {
			continue
		}
		name := contractNames[cr.ID]
		if name == "" {
			continue
		}
		if cr.SDL != "" {
			out = append(out, artifact{key: artifactKey(targetID, name, "sdl"), content: []byte(cr.SDL), contentType: "application/graphql"})
		}
		if cr.Supergraph != "" {
			out = append(out, artifact{key: artifactKey(targetID, name, "supergraph"), content: []byte(cr.Supergraph), contentType: "application/graphql"})
		}
	}
	return out
}

// rawMetadata renders a service's metadata string as JSON, wrapping a
// non-JSON value in a JSON string rather than dropping it.
func rawMetadata(metadata string) json.RawMessage {
	if metadata == "" {
		return json.RawMessage("null")
	}
	var v any
	if err := json.Unmarshal([]byte(metadata), &v); err != nil {
		b, _ := json.Marshal(metadata)
		return json.RawMessage(b)
	}
	return json.RawMessage(metadata)
}

// buildMetadataArtifact renders per-service metadata as a single JSON object
// for a single-service (single-project) target and a JSON array for a
// composite target with more than one active service.
func buildMetadataArtifact(parts []json.RawMessage) ([]byte, bool) {
	if len(parts) == 0 {
		return nil, false
	}
	if len(parts) == 1 {
		return parts[0], true
	}
	b, err := json.Marshal(parts)
	if err != nil {
		return nil, false
	}
	return b, true
}

// putArtifacts writes every artifact in the set to the object store,
// stopping at the first error so the enclosing transaction rolls back.
func putArtifacts(ctx context.Context, store storage.Storage, artifacts []artifact) error {
	for _, a := range artifacts {
		if err := store.PutArtifact(ctx, a.key, a.content, a.contentType); err != nil {
			return fmt.Errorf("publisher: put artifact %s: %w", a.key, err)
		}
	}
	return nil
}

// contractNameByID indexes a target's contracts by id, so a composition
// result (which only carries the contract id) can resolve the contractName
// path segment the artifact key needs.
func contractNameByID(contracts []models.ContractContext) map[string]string {
	out := make(map[string]string, len(contracts))
	for _, cc := range contracts {
		out[cc.Contract.ID] = cc.Contract.Name
	}
	return out
}

// persistContractVersions writes one schema_version_contract row per
// contract result, chaining LastSchemaVersionContractID so a contract's
// composed history can be walked the way schema_versions.previous_schema_version_id
// walks a target's.
func persistContractVersions(ctx context.Context, store storage.Storage, schemaVersionID string, results []orchestrator.ContractResult, contracts []models.ContractContext) error {
	if len(results) == 0 {
		return nil
	}
	byID := make(map[string]models.ContractContext, len(contracts))
	for _, cc := range contracts {
		byID[cc.Contract.ID] = cc
	}
	for _, cr := range results {
		cc, ok := byID[cr.ID]
		if !ok {
			continue
		}
		svc := &registrytypes.SchemaVersionContract{
			ID:                      uuid.NewString(),
			SchemaVersionID:         schemaVersionID,
			ContractID:              cr.ID,
			IsComposable:            len(cr.Errors) == 0,
			SchemaCompositionErrors: convertContractErrors(cr.Errors),
		}
		if svc.IsComposable {
			sdl := cr.SDL
			svc.CompositeSchemaSDL = &sdl
			supergraph := cr.Supergraph
			svc.SupergraphSDL = &supergraph
		}
		if cc.LastValidSVC != nil {
			prevID := cc.LastValidSVC.ID
			svc.LastSchemaVersionContractID = &prevID
		}
		if err := store.CreateSchemaVersionContract(ctx, svc); err != nil {
			return fmt.Errorf("publisher: persist schema version contract %s: %w", cr.ID, err)
		}
	}
	return nil
}

func convertContractErrors(errs []orchestrator.CompositionError) []registrytypes.CompositionError {
	if len(errs) == 0 {
		return nil
	}
	out := make([]registrytypes.CompositionError, 0, len(errs))
	for _, e := range errs {
		out = append(out, registrytypes.CompositionError{Message: e.Message, Source: registrytypes.ErrorSource(e.Source)})
	}
	return out
}

// RepublishArtifacts rebuilds and writes the base (non-contract) CDN
// artifact set for a schema version outside the normal publish/delete
// pipeline — the side effect updateVersionStatus triggers when the version
// it flips becomes the target's new latest-composable version. Per-contract
// artifacts are only refreshed by a new publish: there is no store lookup
// from a historical schema version back to the schema_version_contract rows
// it produced, so a status flip alone cannot rebuild them.
func RepublishArtifacts(ctx context.Context, store storage.Storage, targetID string, version *registrytypes.SchemaVersion) error {
	if version == nil || !version.IsComposable || version.CompositeSchemaSDL == nil {
		return nil
	}
	entries, err := store.GetLogEntriesByIDs(ctx, version.ActiveLogEntryIDs)
	if err != nil {
		return fmt.Errorf("publisher: load log entries for artifact republish: %w", err)
	}
	var supergraph string
	if version.SupergraphSDL != nil {
		supergraph = *version.SupergraphSDL
	}
	artifacts := buildArtifacts(targetID, entries, *version.CompositeSchemaSDL, supergraph, nil, nil)
	return putArtifacts(ctx, store, artifacts)
}
