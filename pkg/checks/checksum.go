package checks

import "github.com/platinummonkey/schemahub/pkg/schemadoc"

// ChecksumResult is the outcome of the checksum primitive.
type ChecksumResult struct {
	Checksum  string
	Unchanged bool
	Initial   bool // true when there was no baseline to compare against.
}

// Checksum computes the canonical checksum of the incoming schema set and
// compares it to the baseline checksum, if any. It never fails or skips —
// with no baseline it reports Initial instead.
func Checksum(baseSchema string, incoming []schemadoc.Service, baselineChecksum string) (Outcome[ChecksumResult], error) {
	canonical, err := schemadoc.Canonicalize(baseSchema, incoming)
	if err != nil {
		return Outcome[ChecksumResult]{}, err
	}
	sum := schemadoc.Checksum(canonical)

	if baselineChecksum == "" {
		return Completed(ChecksumResult{Checksum: sum, Initial: true}), nil
	}
	return Completed(ChecksumResult{Checksum: sum, Unchanged: sum == baselineChecksum}), nil
}
