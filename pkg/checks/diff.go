package checks

import (
	"context"

	"github.com/platinummonkey/schemahub/pkg/inspector"
	"github.com/platinummonkey/schemahub/pkg/registrytypes"
)

// DiffResult is the outcome of the diff primitive.
type DiffResult struct {
	Breaking []registrytypes.SchemaChange
	Safe     []registrytypes.SchemaChange
}

// Diff runs the inspector and succeeds iff every breaking change is either
// usage-safe or present in approvedChanges. It skips when either side's SDL
// is empty or fails to parse.
func Diff(
	ctx context.Context,
	cmp *inspector.Comparator,
	existingSDL, incomingSDL string,
	approvedChanges map[string]registrytypes.SchemaChangeApproval,
	opts inspector.Options,
) (Outcome[DiffResult], error) {
	if existingSDL == "" || incomingSDL == "" {
		return Skipped[DiffResult](), nil
	}

	allChanges, err := cmp.Diff(ctx, existingSDL, incomingSDL, opts)
	if err != nil {
		return Outcome[DiffResult]{}, err
	}
	allChanges = inspector.ApplyApprovals(allChanges, approvedChanges)

	var breaking, safe []registrytypes.SchemaChange
	var blocking []registrytypes.SchemaChange
	for _, c := range allChanges {
		if c.Severity == registrytypes.SeverityBreaking {
			breaking = append(breaking, c)
			if c.IsBreaking() {
				blocking = append(blocking, c)
			}
			continue
		}
		safe = append(safe, c)
	}

	result := DiffResult{Breaking: breaking, Safe: safe}
	if len(blocking) > 0 {
		return Outcome[DiffResult]{Status: StatusFailed, Result: result, Reason: "unapproved breaking changes present"}, nil
	}
	return Completed(result), nil
}
