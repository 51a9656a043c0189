// Package models implements the four Project Model variants — single and
// composite, each modern and legacy — that sequence pkg/checks primitives
// into check/publish/delete conclusions. Dispatch is by
// (project.Type, project.LegacyRegistryModel), modeled as a sum type: each
// variant is a value composing the same check primitives, which are pure
// over their inputs plus the Orchestrator/PolicyEngine/UsageOracle
// capability interfaces passed in explicitly.
package models
