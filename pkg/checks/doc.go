// Package checks implements the reusable registry check primitives:
// checksum, composition, diff, policyCheck, serviceName, serviceUrl and
// metadata. Each primitive returns one of three sum-typed outcomes —
// Completed, Failed, Skipped — which pkg/models sequences into
// check/publish/delete conclusions. Concurrent primitives run under
// golang.org/x/sync/errgroup.
package checks
