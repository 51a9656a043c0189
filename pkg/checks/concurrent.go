package checks

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunConcurrently runs each of fns to completion under a shared errgroup,
// returning on the first error (context.Context is cancelled for the
// others). It is used to run composition, diff and policyCheck
// concurrently, since none of the three primitives depends on another's
// result.
func RunConcurrently(ctx context.Context, fns ...func(ctx context.Context) error) error {
	eg, egCtx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		fn := fn
		eg.Go(func() error { return fn(egCtx) })
	}
	return eg.Wait()
}
