package usage

import (
	"context"
	"time"
)

// Coordinate names one field position in a schema, e.g. "Query.user" or
// "User.email", the granularity usage traffic is tracked at.
type Coordinate struct {
	TypeName  string
	FieldName string
}

func (c Coordinate) String() string {
	if c.FieldName == "" {
		return c.TypeName
	}
	return c.TypeName + "." + c.FieldName
}

// Selector scopes a usage query to one target's validation window.
type Selector struct {
	TargetID string
	Window   time.Duration
}

// Oracle answers whether schema coordinates have been exercised by traffic
// recently enough to matter for breaking-change safety analysis.
type Oracle interface {
	// HasTraffic reports, per requested coordinate, whether any traffic
	// exercised it within selector.Window ending now. Coordinates absent
	// from the result map are treated as having no traffic (conservative:
	// absence of data means the change is NOT considered usage-safe).
	HasTraffic(ctx context.Context, selector Selector, coordinates []Coordinate) (map[string]bool, error)
}

// NoopOracle always reports no traffic, so every breaking change is treated
// as unsafe. Used when no usage collaborator is configured for a deployment.
type NoopOracle struct{}

func (NoopOracle) HasTraffic(ctx context.Context, selector Selector, coordinates []Coordinate) (map[string]bool, error) {
	return map[string]bool{}, nil
}
