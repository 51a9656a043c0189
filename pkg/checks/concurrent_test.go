package checks

import (
	"context"
	"errors"
	"testing"
)

func TestRunConcurrently(t *testing.T) {
	t.Run("all succeed", func(t *testing.T) {
		var ran [3]bool
		err := RunConcurrently(context.Background(),
			func(ctx context.Context) error { ran[0] = true; return nil },
			func(ctx context.Context) error { ran[1] = true; return nil },
			func(ctx context.Context) error { ran[2] = true; return nil },
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, v := range ran {
			if !v {
				t.Fatalf("expected fn %d to have run", i)
			}
		}
	})

	t.Run("returns the first error", func(t *testing.T) {
		boom := errors.New("boom")
		err := RunConcurrently(context.Background(),
			func(ctx context.Context) error { return nil },
			func(ctx context.Context) error { return boom },
		)
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	})
}
