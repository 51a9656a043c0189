// Package cli provides the registry command-line interface for exercising
// the check/publish pipeline from the terminal.
//
// # Overview
//
// This package implements the `registry` CLI: a thin HTTP client over
// pkg/api's routes, for developers who want to check or publish a schema
// without going through their CI pipeline's own tooling.
//
// # Commands
//
// check: run the check pipeline against a target without persisting
//
//	registry check --target <target-id> --file schema.graphql
//
// publish: publish a schema to a target
//
//	registry publish --target <target-id> --file schema.graphql \
//		--author jane --commit $(git rev-parse HEAD)
//
// # Configuration
//
// Registry URL:
//
//	--registry http://localhost:8080   # default
//
// Bearer token:
//
//	--token <token>
//
// # Related Packages
//
//   - pkg/api: the HTTP server this CLI talks to
package cli
