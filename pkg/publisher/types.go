package publisher

import "github.com/platinummonkey/schemahub/pkg/models"

// CheckRequest is the normalized schemaCheck input an external interface
// layer (HTTP, CLI) builds from the incoming request.
type CheckRequest struct {
	TargetID            string
	ServiceName         string
	IncomingSDL         string
	ContextID           string
	IntegrationMetadata map[string]any
}

// CheckResult pairs the persisted check record id with the conclusion the
// model produced.
type CheckResult struct {
	CheckID    string
	Conclusion models.CheckConclusion
}

// PublishRequest is the normalized schemaPublish input.
type PublishRequest struct {
	TargetID                          string
	ServiceName                       string
	IncomingSDL                       string
	ServiceURL                        string
	Metadata                          string
	ContextID                         string
	IntegrationMetadata               map[string]any
	CompareToLatest                   bool
	Author                            string
	Commit                            string
	Force                             bool
	ExperimentalAcceptBreakingChanges bool
}

// PublishResult pairs the persisted version id (empty unless a version was
// actually created) with the conclusion the model produced.
type PublishResult struct {
	CheckID    string
	VersionID  string
	Conclusion models.PublishConclusion
}

// DeleteRequest is the normalized schemaDelete input. DryRun runs the same
// model and authorization path but returns the would-be result without
// persisting a version.
type DeleteRequest struct {
	TargetID            string
	ServiceName         string
	ContextID           string
	IntegrationMetadata map[string]any
	DryRun              bool
}

// DeleteResult pairs the persisted version id with the conclusion the model
// produced.
type DeleteResult struct {
	VersionID  string
	Conclusion models.DeleteConclusion
}
