package contextkeys

import (
	"context"
	"testing"
	"time"
)

func TestWithAndGetRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestWithAndGetUserID(t *testing.T) {
	ctx := WithUserID(context.Background(), "user-1")
	if got := GetUserID(ctx); got != "user-1" {
		t.Fatalf("expected user-1, got %q", got)
	}
}

func TestGetUserID_Missing(t *testing.T) {
	if got := GetUserID(context.Background()); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestWithOrgProjectTarget(t *testing.T) {
	ctx := context.Background()
	ctx = WithOrg(ctx, "org-1")
	ctx = WithProject(ctx, "project-1")
	ctx = WithTarget(ctx, "target-1")

	if got := ctx.Value(OrgKey); got != "org-1" {
		t.Fatalf("expected org-1, got %v", got)
	}
	if got := ctx.Value(ProjectKey); got != "project-1" {
		t.Fatalf("expected project-1, got %v", got)
	}
	if got := ctx.Value(TargetKey); got != "target-1" {
		t.Fatalf("expected target-1, got %v", got)
	}
}

func TestWithAuth(t *testing.T) {
	ctx := WithAuth(context.Background(), "auth-ctx")
	if got := ctx.Value(AuthKey); got != "auth-ctx" {
		t.Fatalf("expected auth-ctx, got %v", got)
	}
}

func TestWithLogger(t *testing.T) {
	ctx := WithLogger(context.Background(), "logger")
	if got := ctx.Value(LoggerKey); got != "logger" {
		t.Fatalf("expected logger, got %v", got)
	}
}

func TestWithRequestStartTime(t *testing.T) {
	now := time.Unix(0, 0)
	ctx := WithRequestStartTime(context.Background(), now)
	if got := ctx.Value(RequestStartTimeKey); got != now {
		t.Fatalf("expected %v, got %v", now, got)
	}
}
