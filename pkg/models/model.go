package models

import (
	"context"

	"github.com/platinummonkey/schemahub/pkg/inspector"
	"github.com/platinummonkey/schemahub/pkg/orchestrator"
	"github.com/platinummonkey/schemahub/pkg/policy"
	"github.com/platinummonkey/schemahub/pkg/registrytypes"
	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

// ContractContext pairs a contract with its previous valid (composable)
// schema-version-contract record, used as the diff baseline for that
// contract's independent check.
type ContractContext struct {
	Contract        registrytypes.Contract
	LastValidSVC    *registrytypes.SchemaVersionContract
}

// Context carries the baseline state and capability collaborators a Model
// needs to evaluate one request. The Schema Publisher assembles it from
// parallel context loads before dispatching to a Model.
type Context struct {
	Target  registrytypes.Target
	Project registrytypes.Project

	BaseSchema string

	// PreviousServices is the active log set of the comparison baseline,
	// selected per Target.CompareToPreviousComposableVersion (latest vs.
	// latest-composable).
	PreviousServices []schemadoc.Service
	PreviousSDL      string // previous baseline's composite SDL, for single-schema diffs.

	ApprovedChanges map[string]registrytypes.SchemaChangeApproval
	Contracts       []ContractContext

	Orchestrator orchestrator.Orchestrator
	PolicyEngine policy.PolicyEngine
	Comparator   *inspector.Comparator
}

// CheckInput is the normalized input to Model.Check.
type CheckInput struct {
	IncomingSDL string
	ServiceName string // required for composite models; ignored by single.
	ContextID   string
}

// PublishInput is the normalized input to Model.Publish.
type PublishInput struct {
	IncomingSDL    string
	ServiceName    string
	ServiceURL     string
	PreviousURL    string // URL of the previous log entry with the same service name, if any.
	Metadata       string
	PreviousMetadata string
	CompareToLatest bool
	Author         string
	Commit         string

	// Force and ExperimentalAcceptBreakingChanges are accepted on input but
	// deprecated; legacy models honor them, modern models ignore them. The
	// field is present on every variant and acted upon only by legacy ones
	// (see DESIGN.md).
	Force                           bool
	ExperimentalAcceptBreakingChanges bool
}

// DeleteInput is the normalized input to Model.Delete.
type DeleteInput struct {
	ServiceName string
}

// Model is the common operation surface shared by all four variants.
type Model interface {
	Check(ctx context.Context, mc Context, in CheckInput) (CheckConclusion, error)
	Publish(ctx context.Context, mc Context, in PublishInput) (PublishConclusion, error)
	Delete(ctx context.Context, mc Context, in DeleteInput) (DeleteConclusion, error)
}

// Select dispatches to the right Model variant by (project.Type, legacy flag).
func Select(project registrytypes.Project) Model {
	if project.Type.IsComposite() {
		if project.LegacyRegistryModel {
			return compositeLegacyModel{}
		}
		return compositeModel{}
	}
	if project.LegacyRegistryModel {
		return singleLegacyModel{}
	}
	return singleModel{}
}

func renderIncoming(name, sdl, url string) schemadoc.Service {
	return schemadoc.Service{Name: name, SDL: sdl, URL: url}
}

// replaceOrAppend forms the new schema set by substituting any entry with
// matching Name, or appending if none matches.
func replaceOrAppend(existing []schemadoc.Service, incoming schemadoc.Service) []schemadoc.Service {
	out := make([]schemadoc.Service, 0, len(existing)+1)
	replaced := false
	for _, s := range existing {
		if s.Name == incoming.Name {
			out = append(out, incoming)
			replaced = true
			continue
		}
		out = append(out, s)
	}
	if !replaced {
		out = append(out, incoming)
	}
	return out
}

// removeByName builds the new schema set by removing the entry with
// matching Name.
func removeByName(existing []schemadoc.Service, name string) []schemadoc.Service {
	out := make([]schemadoc.Service, 0, len(existing))
	for _, s := range existing {
		if s.Name != name {
			out = append(out, s)
		}
	}
	return out
}

// convertCompositionErrors maps the orchestrator's error shape onto the
// registry's wire shape so a failed composition's errors can be persisted on
// PublishState/DeleteState alongside the SDL the legacy "errors + sdl" case
// still returns.
func convertCompositionErrors(errs []orchestrator.CompositionError) []registrytypes.CompositionError {
	if len(errs) == 0 {
		return nil
	}
	out := make([]registrytypes.CompositionError, 0, len(errs))
	for _, e := range errs {
		out = append(out, registrytypes.CompositionError{
			Message: e.Message,
			Source:  registrytypes.ErrorSource(e.Source),
		})
	}
	return out
}
