package usage

import (
	"context"
	"testing"
	"time"
)

func TestCoordinate_String(t *testing.T) {
	t.Run("type and field", func(t *testing.T) {
		c := Coordinate{TypeName: "User", FieldName: "email"}
		if c.String() != "User.email" {
			t.Fatalf("unexpected string: %s", c.String())
		}
	})

	t.Run("type only", func(t *testing.T) {
		c := Coordinate{TypeName: "User"}
		if c.String() != "User" {
			t.Fatalf("unexpected string: %s", c.String())
		}
	})
}

func TestNoopOracle_HasTraffic(t *testing.T) {
	oracle := NoopOracle{}
	result, err := oracle.HasTraffic(context.Background(), Selector{TargetID: "t1", Window: time.Hour}, []Coordinate{
		{TypeName: "User", FieldName: "email"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("expected no traffic reported, got %v", result)
	}
}
