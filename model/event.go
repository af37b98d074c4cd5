package model

// EventType discriminates the NormalizedEvent union.
type EventType string

const (
	// EventInit marks the start of a CLI session; carries a session id when
	// the underlying CLI event does.
	EventInit EventType = "init"
	// EventText carries an incremental text fragment.
	EventText EventType = "text"
	// EventToolStart marks the beginning of a tool invocation.
	EventToolStart EventType = "tool_start"
	// EventToolEnd marks the completion of a tool invocation.
	EventToolEnd EventType = "tool_end"
	// EventResult is the terminal event of a run.
	EventResult EventType = "result"
	// EventError carries an in-band error surfaced by the CLI.
	EventError EventType = "error"
)

// NormalizedEvent is the common shape every provider's Normalize produces
// from a raw NDJSON line, regardless of that CLI's wire format (nested
// content blocks, flat event types, or plain text).
//
// Invariants: Init and Result carry SessionID whenever the underlying raw
// event does. A ToolStart and its matching ToolEnd share ToolID when the
// CLI supplies one.
type NormalizedEvent struct {
	Type EventType

	// SessionID is set on Init and Result events when known.
	SessionID string

	// Text carries incremental assistant text for Text events, or a
	// formatted in-band error message for Error events.
	Text string

	// ToolName, ToolInput, ToolID identify a tool_start/tool_end pair.
	ToolName  string
	ToolInput map[string]any
	ToolID    string

	// ToolResult carries the (already truncated) tool output for ToolEnd.
	ToolResult string

	// ResultText carries the terminal textual result for Result events.
	ResultText string

	// Usage carries provider-reported token/cost statistics for Result events.
	Usage map[string]any

	// Raw is the original decoded JSON object, kept for provider-specific
	// fields (e.g. Claude's modelUsage, Gemini's stats) that extractors read
	// directly rather than through the normalized fields above.
	Raw map[string]any
}

// IsMeaningful reports whether the event should reset the supervisor's idle
// deadline. Only an empty-text Text event is not
// meaningful; every other event type is.
func (e NormalizedEvent) IsMeaningful() bool {
	return !(e.Type == EventText && e.Text == "")
}

// ChangeKind classifies a single workspace file change between two snapshots.
type ChangeKind string

const (
	// ChangeCreated indicates the path exists in the after-snapshot only.
	ChangeCreated ChangeKind = "created"
	// ChangeModified indicates size or mtime differs between snapshots.
	ChangeModified ChangeKind = "modified"
	// ChangeDeleted indicates the path existed before but not after.
	ChangeDeleted ChangeKind = "deleted"
)

// FileChange describes one file's transition between a before- and
// after-snapshot of a workspace tree.
type FileChange struct {
	Path   string
	Change ChangeKind
	Size   int64
}

// RunError classifies how a streaming supervisor run terminated abnormally.
// The zero value (empty string) means the run completed without error.
type RunError string

const (
	// RunErrorNone indicates the run completed normally.
	RunErrorNone RunError = ""
	// RunErrorTimeout indicates the overall deadline expired.
	RunErrorTimeout RunError = "timeout"
	// RunErrorStall indicates the idle or per-tool-call deadline expired.
	RunErrorStall RunError = "stall"
)

// RawResponse is the result of one streaming supervisor invocation. It
// is a mapping with reserved keys: explicit fields cover
// every reserved key, and Raw preserves any additional provider-specific
// fields from the terminal result event (cost, modelUsage, stats, ...) for
// extractors that need them.
type RawResponse struct {
	// Result is the final text produced by the run.
	Result string

	// SessionID is the session id captured from init/result events, if any.
	SessionID string

	// Error classifies an abnormal termination. Empty means no error.
	Error RunError

	// ReturnCode is the child process's exit status. Always populated.
	ReturnCode int

	// FileChanges is attached by the call orchestrator after diffing the
	// workspace snapshot taken before and after the run.
	FileChanges []FileChange

	// Usage carries provider-reported usage statistics from the terminal
	// result event, if any.
	Usage map[string]any

	// Streamed reports whether a streaming callback was supplied for this
	// call.
	Streamed bool

	// Raw preserves every field of the decoded terminal "result" event,
	// including provider-specific keys not modeled above.
	Raw map[string]any
}

// HasError reports whether the response carries an abnormal termination.
func (r RawResponse) HasError() bool { return r.Error != RunErrorNone }
