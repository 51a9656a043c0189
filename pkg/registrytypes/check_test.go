package registrytypes

import (
	"testing"
	"time"
)

func TestSchemaCheck_AllChanges(t *testing.T) {
	c := &SchemaCheck{
		BreakingChanges: []SchemaChange{{ID: "b1"}},
		SafeChanges:     []SchemaChange{{ID: "s1"}, {ID: "s2"}},
	}
	all := c.AllChanges()
	if len(all) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(all))
	}
	if all[0].ID != "b1" {
		t.Fatal("expected breaking changes to come first")
	}
}

func TestSchemaCheck_Expired(t *testing.T) {
	now := time.Now()

	t.Run("not yet expired", func(t *testing.T) {
		c := &SchemaCheck{ExpiresAt: now.Add(time.Hour)}
		if c.Expired(now) {
			t.Fatal("expected not expired")
		}
	})

	t.Run("already expired", func(t *testing.T) {
		c := &SchemaCheck{ExpiresAt: now.Add(-time.Hour)}
		if !c.Expired(now) {
			t.Fatal("expected expired")
		}
	})

	t.Run("expiring exactly now counts as expired", func(t *testing.T) {
		c := &SchemaCheck{ExpiresAt: now}
		if !c.Expired(now) {
			t.Fatal("expected expired at the exact boundary")
		}
	})
}
