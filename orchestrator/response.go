package orchestrator

import "github.com/streamforge/agentcore/model"

// ModelResponse is the orchestrator's public result: an assistant message
// plus the raw supervisor response it was derived from, for callers that
// need file changes, usage, or other provider-specific fields.
type ModelResponse struct {
	Content     string
	RawResponse model.RawResponse
}
