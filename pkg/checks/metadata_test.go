package checks

import "testing"

func TestMetadata(t *testing.T) {
	t.Run("skips when no metadata supplied", func(t *testing.T) {
		outcome := Metadata("", "")
		if !outcome.IsSkipped() {
			t.Fatal("expected a skipped outcome")
		}
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		outcome := Metadata("{not json", "")
		if !outcome.IsFailed() {
			t.Fatal("expected a failed outcome")
		}
	})

	t.Run("classifies unchanged metadata", func(t *testing.T) {
		outcome := Metadata(`{"team":"platform"}`, `{"team":"platform"}`)
		if !outcome.IsCompleted() || outcome.Result.Status != URLUnchanged {
			t.Fatalf("unexpected outcome: %+v", outcome)
		}
	})

	t.Run("classifies modified metadata", func(t *testing.T) {
		outcome := Metadata(`{"team":"platform"}`, `{"team":"infra"}`)
		if !outcome.IsCompleted() || outcome.Result.Status != URLModified {
			t.Fatalf("unexpected outcome: %+v", outcome)
		}
	})
}
