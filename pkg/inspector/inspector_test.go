package inspector

import (
	"context"
	"testing"

	"github.com/platinummonkey/schemahub/pkg/registrytypes"
	"github.com/platinummonkey/schemahub/pkg/schemadoc"
	"github.com/platinummonkey/schemahub/pkg/usage"
)

func TestComparator_Diff(t *testing.T) {
	cmp := New(usage.NoopOracle{})

	t.Run("empty SDL on either side skips", func(t *testing.T) {
		changes, err := cmp.Diff(context.Background(), "", "type Query { id: ID }", Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if changes != nil {
			t.Fatalf("expected no changes, got %v", changes)
		}
	})

	t.Run("removed field is breaking", func(t *testing.T) {
		changes, err := cmp.Diff(context.Background(),
			"type Query { id: ID name: String }",
			"type Query { id: ID }",
			Options{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(changes) != 1 || changes[0].Type != registrytypes.ChangeFieldRemoved {
			t.Fatalf("expected 1 field-removed change, got %+v", changes)
		}
		if changes[0].Severity != registrytypes.SeverityBreaking {
			t.Fatalf("expected breaking severity, got %s", changes[0].Severity)
		}
	})

	t.Run("added field is safe", func(t *testing.T) {
		changes, err := cmp.Diff(context.Background(),
			"type Query { id: ID }",
			"type Query { id: ID name: String }",
			Options{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(changes) != 1 || changes[0].Type != registrytypes.ChangeFieldAdded {
			t.Fatalf("expected 1 field-added change, got %+v", changes)
		}
		if changes[0].Severity != registrytypes.SeveritySafe {
			t.Fatalf("expected safe severity, got %s", changes[0].Severity)
		}
	})

	t.Run("removed type is breaking", func(t *testing.T) {
		changes, err := cmp.Diff(context.Background(),
			"type Query { id: ID } type Legacy { x: String }",
			"type Query { id: ID }",
			Options{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		found := false
		for _, c := range changes {
			if c.Type == registrytypes.ChangeTypeRemoved && c.Path == "Legacy" {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected a type-removed change for Legacy, got %+v", changes)
		}
	})

	t.Run("field type change is breaking", func(t *testing.T) {
		changes, err := cmp.Diff(context.Background(),
			"type Query { id: ID }",
			"type Query { id: String }",
			Options{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(changes) != 1 || changes[0].Type != registrytypes.ChangeFieldTypeChanged {
			t.Fatalf("expected 1 field-type-changed change, got %+v", changes)
		}
	})

	t.Run("federation-internal types are filtered when requested", func(t *testing.T) {
		changes, err := cmp.Diff(context.Background(),
			"type Query { id: ID } type _Service { sdl: String }",
			"type Query { id: ID }",
			Options{FilterOutFederationChanges: true},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, c := range changes {
			if c.Path == "_Service" {
				t.Fatal("expected _Service removal to be filtered out")
			}
		}
	})

	t.Run("detects service URL changes when requested", func(t *testing.T) {
		changes, err := cmp.Diff(context.Background(),
			"type Query { id: ID }",
			"type Query { id: ID }",
			Options{
				IncludeURLChanges: true,
				Before:            []schemadoc.Service{{Name: "users", URL: "https://old.internal"}},
				After:             []schemadoc.Service{{Name: "users", URL: "https://new.internal"}},
			},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		found := false
		for _, c := range changes {
			if c.Type == registrytypes.ChangeRegistryServiceURLChanged {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected a service-url-changed change, got %+v", changes)
		}
	})

	t.Run("propagates a parse error", func(t *testing.T) {
		_, err := cmp.Diff(context.Background(), "type Query {{{", "type Query { id: ID }", Options{})
		if err == nil {
			t.Fatal("expected a parse error")
		}
	})
}

func TestApplyApprovals(t *testing.T) {
	t.Run("no approvals returns changes unchanged", func(t *testing.T) {
		changes := []registrytypes.SchemaChange{{ID: "c1", Severity: registrytypes.SeverityBreaking}}
		out := ApplyApprovals(changes, nil)
		if len(out) != 1 || out[0].IsSafeBasedOnUsage {
			t.Fatalf("expected unchanged changes, got %+v", out)
		}
	})

	t.Run("an approved change is marked usage-safe", func(t *testing.T) {
		change := registrytypes.SchemaChange{ID: "c1", Severity: registrytypes.SeverityBreaking}
		approvals := map[string]registrytypes.SchemaChangeApproval{
			"c1": {SchemaChangeID: "c1", Snapshot: change},
		}
		out := ApplyApprovals([]registrytypes.SchemaChange{change}, approvals)
		if !out[0].IsSafeBasedOnUsage {
			t.Fatal("expected the approved change to be marked usage-safe")
		}
		if out[0].IsBreaking() {
			t.Fatal("expected the approved change to no longer be blocking")
		}
	})
}
