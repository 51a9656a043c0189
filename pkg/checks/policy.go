package checks

import (
	"context"

	"github.com/platinummonkey/schemahub/pkg/policy"
	"github.com/platinummonkey/schemahub/pkg/schemadoc"
)

// PolicyResult is the outcome of the policyCheck primitive.
type PolicyResult struct {
	Warnings []string
}

// PolicyCheck evaluates the policy engine against the composed schema.
// Skips when the incoming composed SDL is empty (composition failed).
func PolicyCheck(ctx context.Context, engine policy.PolicyEngine, composed schemadoc.Service) (Outcome[PolicyResult], error) {
	if composed.SDL == "" {
		return Skipped[PolicyResult](), nil
	}

	result, err := engine.Evaluate(ctx, composed)
	if err != nil {
		return Outcome[PolicyResult]{}, err
	}
	if !result.Success() {
		return Failed[PolicyResult](joinErrors(result.Errors)), nil
	}
	return Completed(PolicyResult{Warnings: result.Warnings}), nil
}

func joinErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	out := errs[0]
	for _, e := range errs[1:] {
		out += "; " + e
	}
	return out
}
