// Package publisher implements the top-level schema registry pipeline:
// authorization, per-target mutual exclusion, idempotency dedup, parallel
// context loading, model dispatch and transactional persistence, finishing
// with an asynchronous notification fan-out. It is the thing an external
// interface layer (HTTP, CLI) calls into for schemaCheck/schemaPublish/
// schemaDelete.
package publisher
