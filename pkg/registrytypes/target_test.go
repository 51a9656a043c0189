package registrytypes

import "testing"

func TestProjectType_IsComposite(t *testing.T) {
	cases := []struct {
		typ  ProjectType
		want bool
	}{
		{ProjectTypeSingle, false},
		{ProjectTypeFederation, true},
		{ProjectTypeStitching, true},
	}
	for _, c := range cases {
		if got := c.typ.IsComposite(); got != c.want {
			t.Errorf("%s.IsComposite() = %v, want %v", c.typ, got, c.want)
		}
	}
}

func TestProject_ExternalCompositionEnabled(t *testing.T) {
	t.Run("no endpoint configured", func(t *testing.T) {
		p := &Project{}
		if p.ExternalCompositionEnabled() {
			t.Fatal("expected external composition to be disabled")
		}
	})

	t.Run("endpoint configured", func(t *testing.T) {
		p := &Project{ExternalCompositionURL: "https://composer.internal"}
		if !p.ExternalCompositionEnabled() {
			t.Fatal("expected external composition to be enabled")
		}
	})
}

func TestActiveLogSet(t *testing.T) {
	t.Run("push adds a new service", func(t *testing.T) {
		out := ActiveLogSet(nil, SchemaLogEntry{Kind: LogEntryPush, ServiceName: "users", SDL: "type Query { id: ID }"})
		if len(out) != 1 || out[0].ServiceName != "users" {
			t.Fatalf("unexpected log set: %+v", out)
		}
	})

	t.Run("push replaces an existing service entry", func(t *testing.T) {
		previous := []SchemaLogEntry{{ServiceName: "users", SDL: "type Query { id: ID }"}}
		out := ActiveLogSet(previous, SchemaLogEntry{Kind: LogEntryPush, ServiceName: "users", SDL: "type Query { id: ID name: String }"})
		if len(out) != 1 || out[0].SDL != "type Query { id: ID name: String }" {
			t.Fatalf("unexpected log set: %+v", out)
		}
	})

	t.Run("delete removes the named service", func(t *testing.T) {
		previous := []SchemaLogEntry{
			{ServiceName: "users"},
			{ServiceName: "products"},
		}
		out := ActiveLogSet(previous, SchemaLogEntry{Kind: LogEntryDelete, ServiceName: "users"})
		if len(out) != 1 || out[0].ServiceName != "products" {
			t.Fatalf("unexpected log set: %+v", out)
		}
	})

	t.Run("delete of an absent service is a no-op", func(t *testing.T) {
		previous := []SchemaLogEntry{{ServiceName: "products"}}
		out := ActiveLogSet(previous, SchemaLogEntry{Kind: LogEntryDelete, ServiceName: "users"})
		if len(out) != 1 {
			t.Fatalf("expected 1 unchanged entry, got %d", len(out))
		}
	})
}
