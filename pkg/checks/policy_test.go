package checks

import (
	"context"
	"testing"

	"github.com/platinummonkey/schemahub/pkg/policy"
	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

func TestPolicyCheck(t *testing.T) {
	engine := policy.NewLocalEngine()

	t.Run("skips when composed SDL is empty", func(t *testing.T) {
		outcome, err := PolicyCheck(context.Background(), engine, schemadoc.Service{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !outcome.IsSkipped() {
			t.Fatal("expected a skipped outcome")
		}
	})

	t.Run("clean schema completes", func(t *testing.T) {
		outcome, err := PolicyCheck(context.Background(), engine, schemadoc.Service{Name: "users", SDL: "type Query { id: ID }"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !outcome.IsCompleted() {
			t.Fatalf("expected a completed outcome, got %+v", outcome)
		}
	})

	t.Run("policy violation fails", func(t *testing.T) {
		outcome, err := PolicyCheck(context.Background(), engine, schemadoc.Service{
			Name: "users",
			SDL:  "type Query { hello: String @deprecated }",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !outcome.IsFailed() {
			t.Fatal("expected a failed outcome")
		}
	})
}
