package orchestrator

import (
	"context"
	"testing"

	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

func TestSingleOrchestrator_ComposeAndValidate(t *testing.T) {
	o := NewSingle()

	t.Run("no schemas is a composition error", func(t *testing.T) {
		result, err := o.ComposeAndValidate(context.Background(), nil, Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.HasErrors() {
			t.Fatal("expected a composition error")
		}
	})

	t.Run("passes through a valid schema unchanged", func(t *testing.T) {
		result, err := o.ComposeAndValidate(context.Background(), []schemadoc.Service{
			{Name: "users", SDL: "type Query { id: ID }"},
		}, Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.HasErrors() {
			t.Fatalf("unexpected errors: %v", result.Errors)
		}
		if result.SDL != "type Query { id: ID }" {
			t.Fatalf("unexpected SDL: %s", result.SDL)
		}
	})

	t.Run("invalid SDL is a graphql-source error", func(t *testing.T) {
		result, err := o.ComposeAndValidate(context.Background(), []schemadoc.Service{
			{Name: "users", SDL: "type Query {{{"},
		}, Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.HasErrors() || result.Errors[0].Source != SourceGraphQL {
			t.Fatalf("expected a graphql-source error, got %+v", result.Errors)
		}
	})
}
