package publisher

import "fmt"

// maxContextIDLength is the upper bound on both explicit and synthesized
// context ids.
const maxContextIDLength = 200

// resolveContextID returns the explicit context id when supplied, or
// synthesizes one as "{repo}#{pr_number}" from integration metadata. An
// empty result is valid (the request carries no context/approval scope);
// a non-empty one must be 1..200 characters long.
func resolveContextID(explicit string, integrationMetadata map[string]any) (string, error) {
	id := explicit
	if id == "" {
		id = synthesizeContextID(integrationMetadata)
	}
	if len(id) > maxContextIDLength {
		return "", fmt.Errorf("publisher: context id must be at most %d characters, got %d", maxContextIDLength, len(id))
	}
	return id, nil
}

func synthesizeContextID(metadata map[string]any) string {
	if metadata == nil {
		return ""
	}
	repo, _ := metadata["repo"].(string)
	prNumber, hasPR := metadata["pr_number"]
	if repo == "" || !hasPR {
		return ""
	}
	return fmt.Sprintf("%s#%v", repo, prNumber)
}
