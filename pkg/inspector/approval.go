package inspector

import "github.com/platinummonkey/schemahub/pkg/registrytypes"

// ApplyApprovals replaces any change whose ID matches an entry in
// approvedChanges with the stored approval snapshot — preserving approver
// identity and timestamp — and marks it non-blocking by clearing its
// breaking status.
func ApplyApprovals(changes []registrytypes.SchemaChange, approvedChanges map[string]registrytypes.SchemaChangeApproval) []registrytypes.SchemaChange {
	if len(approvedChanges) == 0 {
		return changes
	}
	out := make([]registrytypes.SchemaChange, len(changes))
	for i, c := range changes {
		if approval, ok := approvedChanges[c.ID]; ok {
			snapshot := approval.Snapshot
			snapshot.IsSafeBasedOnUsage = true
			out[i] = snapshot
			continue
		}
		out[i] = c
	}
	return out
}
