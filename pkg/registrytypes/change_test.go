package registrytypes

import "testing"

func TestNewSchemaChange(t *testing.T) {
	t.Run("computes a deterministic ID regardless of meta key order", func(t *testing.T) {
		a := NewSchemaChange(ChangeFieldRemoved, SeverityBreaking, "User.email", map[string]any{
			"typeName": "User", "fieldName": "email",
		})
		b := NewSchemaChange(ChangeFieldRemoved, SeverityBreaking, "User.email", map[string]any{
			"fieldName": "email", "typeName": "User",
		})
		if a.ID != b.ID {
			t.Fatalf("expected equal IDs, got %s and %s", a.ID, b.ID)
		}
	})

	t.Run("different meta produces a different ID", func(t *testing.T) {
		a := NewSchemaChange(ChangeFieldRemoved, SeverityBreaking, "User.email", map[string]any{"fieldName": "email"})
		b := NewSchemaChange(ChangeFieldRemoved, SeverityBreaking, "User.name", map[string]any{"fieldName": "name"})
		if a.ID == b.ID {
			t.Fatal("expected different IDs for different changes")
		}
	})
}

func TestSchemaChange_IsBreaking(t *testing.T) {
	t.Run("breaking and not usage-safe blocks", func(t *testing.T) {
		c := SchemaChange{Severity: SeverityBreaking}
		if !c.IsBreaking() {
			t.Fatal("expected IsBreaking to be true")
		}
	})

	t.Run("breaking but usage-safe does not block", func(t *testing.T) {
		c := SchemaChange{Severity: SeverityBreaking, IsSafeBasedOnUsage: true}
		if c.IsBreaking() {
			t.Fatal("expected IsBreaking to be false")
		}
	})

	t.Run("safe severity never blocks", func(t *testing.T) {
		c := SchemaChange{Severity: SeveritySafe}
		if c.IsBreaking() {
			t.Fatal("expected IsBreaking to be false")
		}
	})
}
