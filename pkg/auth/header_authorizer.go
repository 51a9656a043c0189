package auth

import (
	"context"
	"errors"
	"net/http"
)

// ErrUnauthorized is returned by HeaderAuthorizer when no token matches.
var ErrUnauthorized = errors.New("auth: unauthorized")

// tokenKey is the context key HeaderAuthorizer stashes the raw bearer token
// under, set by Middleware and read back in Authorize.
type tokenKey struct{}

// HeaderAuthorizer is a minimal, static-token Authorizer: callers present a
// bearer token and the organization/role it maps to is looked up from an
// in-memory table. It exists so cmd/registry has something concrete to run
// against; a real deployment swaps this for an OIDC or SAML-backed
// Authorizer without pkg/publisher or pkg/api changing at all.
type HeaderAuthorizer struct {
	tokens map[string]AuthContext
}

// NewHeaderAuthorizer builds a HeaderAuthorizer from a static token table,
// e.g. loaded from the REGISTRY_AUTH_TOKENS environment variable.
func NewHeaderAuthorizer(tokens map[string]AuthContext) *HeaderAuthorizer {
	return &HeaderAuthorizer{tokens: tokens}
}

// Middleware extracts the Authorization: Bearer <token> header and carries
// the raw token on the request context for Authorize to consume.
func (a *HeaderAuthorizer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token != "" {
			r = r.WithContext(context.WithValue(r.Context(), tokenKey{}, token))
		}
		next.ServeHTTP(w, r)
	})
}

// Authorize looks up the bearer token carried on ctx and grants access if it
// resolves to a known AuthContext. targetID and action are unused here since
// this table has no per-target scoping; a real collaborator would check both.
func (a *HeaderAuthorizer) Authorize(ctx context.Context, targetID string, action Action) (*AuthContext, error) {
	token, _ := ctx.Value(tokenKey{}).(string)
	if token == "" {
		return nil, ErrUnauthorized
	}
	authCtx, ok := a.tokens[token]
	if !ok {
		return nil, ErrUnauthorized
	}
	return &authCtx, nil
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}
