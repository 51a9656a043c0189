// Package policy defines the PolicyEngine collaborator and a local,
// rule-registry-backed default implementation in the style of a linter
// engine, generalized from protobuf style rules to GraphQL naming/
// deprecation rules.
package policy
