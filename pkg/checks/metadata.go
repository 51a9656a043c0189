package checks

import "encoding/json"

// MetadataResult is the outcome of the metadata primitive.
type MetadataResult struct {
	Status URLChangeStatus // reuses the modified/unchanged vocabulary.
}

// Metadata validates that the incoming metadata JSON parses, and classifies
// it as modified/unchanged relative to the previous metadata string. Skips
// when no metadata was supplied.
func Metadata(incoming, previous string) Outcome[MetadataResult] {
	if incoming == "" {
		return Skipped[MetadataResult]()
	}
	var parsed any
	if err := json.Unmarshal([]byte(incoming), &parsed); err != nil {
		return Failed[MetadataResult]("metadata is not valid JSON: " + err.Error())
	}
	status := URLModified
	if incoming == previous {
		status = URLUnchanged
	}
	return Completed(MetadataResult{Status: status})
}
