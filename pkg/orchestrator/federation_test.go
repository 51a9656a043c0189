package orchestrator

import (
	"context"
	"testing"

	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

func TestFederationOrchestrator_ComposeAndValidate(t *testing.T) {
	o := NewFederation()

	t.Run("no subgraphs is a composition error", func(t *testing.T) {
		result, err := o.ComposeAndValidate(context.Background(), nil, Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.HasErrors() {
			t.Fatal("expected a composition error")
		}
	})

	t.Run("merges non-conflicting subgraphs", func(t *testing.T) {
		schemas := []schemadoc.Service{
			{Name: "users", SDL: "type Query { user: User } type User { id: ID }"},
			{Name: "products", SDL: "type Query { product: Product } type Product { id: ID }"},
		}
		result, err := o.ComposeAndValidate(context.Background(), schemas, Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.HasErrors() {
			t.Fatalf("unexpected errors: %v", result.Errors)
		}
		if result.SDL == "" {
			t.Fatal("expected non-empty composed SDL")
		}
	})

	t.Run("conflicting field types produce a composition error", func(t *testing.T) {
		schemas := []schemadoc.Service{
			{Name: "a", SDL: "type Query { shared: String }"},
			{Name: "b", SDL: "type Query { shared: Int }"},
		}
		result, err := o.ComposeAndValidate(context.Background(), schemas, Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.HasErrors() || result.Errors[0].Source != SourceComposition {
			t.Fatalf("expected a composition-source error, got %+v", result.Errors)
		}
	})

	t.Run("produces per-contract results when contracts requested", func(t *testing.T) {
		schemas := []schemadoc.Service{
			{Name: "users", SDL: "type Query { user: User } type User { id: ID }"},
		}
		result, err := o.ComposeAndValidate(context.Background(), schemas, Options{
			Contracts: []ContractInput{{ID: "public"}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Contracts) != 1 || result.Contracts[0].ID != "public" {
			t.Fatalf("expected 1 contract result, got %+v", result.Contracts)
		}
	})
}

func TestFederationInternalType(t *testing.T) {
	if !FederationInternalType("_Service") {
		t.Error("expected _Service to be internal")
	}
	if FederationInternalType("User") {
		t.Error("expected User not to be internal")
	}
}

func TestFederationInternalDirective(t *testing.T) {
	if !FederationInternalDirective("key") {
		t.Error("expected key to be internal")
	}
	if FederationInternalDirective("deprecated") {
		t.Error("expected deprecated not to be internal")
	}
}
