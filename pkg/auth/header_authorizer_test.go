package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHeaderAuthorizer_Authorize(t *testing.T) {
	authorizer := NewHeaderAuthorizer(map[string]AuthContext{
		"admin-token": {UserID: "u1", OrganizationID: "org1", Role: RoleAdmin},
		"dev-token":   {UserID: "u2", OrganizationID: "org1", Role: RoleDeveloper},
	})

	t.Run("grants access for a known token", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), tokenKey{}, "dev-token")
		authCtx, err := authorizer.Authorize(ctx, "target1", ActionSchemaPublish)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if authCtx.Role != RoleDeveloper || authCtx.OrganizationID != "org1" {
			t.Fatalf("unexpected auth context: %+v", authCtx)
		}
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), tokenKey{}, "bogus-token")
		_, err := authorizer.Authorize(ctx, "target1", ActionSchemaPublish)
		if err != ErrUnauthorized {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects a missing token", func(t *testing.T) {
		_, err := authorizer.Authorize(context.Background(), "target1", ActionSchemaPublish)
		if err != ErrUnauthorized {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestHeaderAuthorizer_Middleware(t *testing.T) {
	authorizer := NewHeaderAuthorizer(map[string]AuthContext{
		"admin-token": {UserID: "u1", OrganizationID: "org1", Role: RoleAdmin},
	})

	t.Run("carries the bearer token onto the request context", func(t *testing.T) {
		var gotToken string
		handler := authorizer.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotToken, _ = r.Context().Value(tokenKey{}).(string)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if gotToken != "admin-token" {
			t.Fatalf("expected token %q, got %q", "admin-token", gotToken)
		}
	})

	t.Run("passes through requests without an Authorization header", func(t *testing.T) {
		called := false
		handler := authorizer.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if !called {
			t.Fatal("handler should still be called without a token")
		}
		if w.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", w.Code)
		}
	})
}

func TestAuthContext_HasRole(t *testing.T) {
	t.Run("admin satisfies any role check", func(t *testing.T) {
		ac := &AuthContext{Role: RoleAdmin}
		if !ac.HasRole(RoleDeveloper) || !ac.HasRole(RoleViewer) {
			t.Fatal("admin should satisfy any role check")
		}
	})

	t.Run("developer does not satisfy admin check", func(t *testing.T) {
		ac := &AuthContext{Role: RoleDeveloper}
		if ac.HasRole(RoleAdmin) {
			t.Fatal("developer should not satisfy admin check")
		}
		if !ac.HasRole(RoleDeveloper) {
			t.Fatal("developer should satisfy its own role check")
		}
	})

	t.Run("nil context satisfies nothing", func(t *testing.T) {
		var ac *AuthContext
		if ac.HasRole(RoleViewer) {
			t.Fatal("nil context should never satisfy a role check")
		}
	})
}
