package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/schemahub/pkg/auth"
)

// ContextKey is a type for context keys
type ContextKey string

const (
	// AuthContextKey is the context key for authentication context
	AuthContextKey ContextKey = "auth_context"
)

// AuthMiddleware delegates authorization decisions for a fixed action
// (schemaCheck, publish, delete, admin) to an external auth.Authorizer.
// It never validates tokens or stores users itself.
type AuthMiddleware struct {
	authorizer auth.Authorizer
	action     auth.Action
	optional   bool // If true, allow requests the authorizer rejects
}

// NewAuthMiddleware creates a new authentication middleware gating action.
func NewAuthMiddleware(authorizer auth.Authorizer, action auth.Action, optional bool) *AuthMiddleware {
	return &AuthMiddleware{
		authorizer: authorizer,
		action:     action,
		optional:   optional,
	}
}

// Handler wraps an HTTP handler with authorization. The target id is read
// from the "target_id" route variable, so this middleware must run behind
// a router that has already matched that variable.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		targetID := mux.Vars(r)["target_id"]

		authCtx, err := m.authorizer.Authorize(r.Context(), targetID, m.action)
		if err != nil {
			if m.optional {
				next.ServeHTTP(w, r)
				return
			}
			m.unauthorizedResponse(w, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), AuthContextKey, authCtx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) unauthorizedResponse(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

// GetAuthContext extracts auth context from request
func GetAuthContext(r *http.Request) *auth.AuthContext {
	ctx := r.Context().Value(AuthContextKey)
	if ctx == nil {
		return nil
	}
	authCtx, ok := ctx.(*auth.AuthContext)
	if !ok {
		return nil
	}
	return authCtx
}

// RequireRole creates middleware that checks for a specific organization role
func RequireRole(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := GetAuthContext(r)
			if authCtx == nil {
				forbiddenResponse(w, "authentication required")
				return
			}

			if !authCtx.HasRole(role) {
				forbiddenResponse(w, "insufficient role permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func forbiddenResponse(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
