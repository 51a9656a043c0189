// Package idempotency implements the checksum-keyed publish dedup cache: two
// publish requests for the same target carrying the same canonical checksum
// within a short window are treated as one, so a retried CI job or a
// double-submitted webhook does not produce duplicate schema versions.
// Shaped as an L1 (in-process, hashicorp/golang-lru) plus L2 (Redis) cache,
// generalized from a codegen compilation-result cache.
package idempotency
