// Package middleware provides HTTP middleware for authorization, tenant
// resolution, and rate limiting.
//
// # Overview
//
// This package implements request processing middleware: delegated
// authorization, per-request organization/project/target resolution, and
// rate limiting (in-memory, Redis-backed, and per-organization).
//
// # Middleware Components
//
// AuthMiddleware: delegated authorization
//
//	m := middleware.NewAuthMiddleware(authorizer, auth.ActionSchemaPublish, false)
//	router.Use(m.Handler)
//	// Calls authorizer.Authorize(ctx, targetID, action), adds AuthContext to request
//
// TenantContextMiddleware: resolves org/project/target from URL variables
//
//	router.Use(middleware.TenantContextMiddleware(orgService))
//
// RateLimitMiddleware: in-memory per-user/anonymous rate limiting
//
//	router.Use(middleware.NewRateLimitMiddleware().Handler)
//
// DistributedRateLimitMiddleware: Redis-backed rate limiting, shared across instances
//
//	router.Use(middleware.NewDistributedRateLimitMiddleware(redisClient).Handler)
//
// OrgRateLimitMiddleware: per-organization API request budget
//
//	router.Use(middleware.NewOrgRateLimitMiddleware(redisClient, 10000, time.Minute).Handler)
//
// # Middleware Ordering
//
// TenantContextMiddleware must run before AuthMiddleware when an
// Authorizer needs the resolved target, and before OrgRateLimitMiddleware,
// which reads the organization from context rather than the URL.
//
// # Rate Limiting
//
// Default (Anonymous): 100 req/min, 10 burst
// Per-User: 1000 req/min, 50 burst
//
// # Related Packages
//
//   - pkg/auth: the Authorizer interface and AuthContext
//   - pkg/orgs: organization/project/target resolution
package middleware
