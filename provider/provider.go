// Package provider defines the capability set every supported agentic CLI
// implements, plus a construction-time registry of tagged concrete
// implementations. There is no class hierarchy here: each provider is a
// plain struct satisfying Provider, registered once in a Registry by tag.
package provider

import (
	"github.com/streamforge/agentcore/model"
)

// Identity is the static, per-implementation tuple every provider
// declares at construction time.
type Identity struct {
	BinaryName     string
	FallbackPaths  []string
	Tag            model.ProviderTag
	SessionsFile   string
	SettingsSubdir string // non-empty only for the settings-file config variant
}

// Provider is the six-operation capability set a concrete CLI adapter
// implements. Providers using the settings-file variant additionally
// implement ConfigHooks.
type Provider interface {
	Identity() Identity

	// ResolveModelFlag maps a caller-supplied model name to this CLI's
	// --model flag value, or "" to omit the flag entirely.
	ResolveModelFlag(modelName string) string

	// BuildCommand constructs the argv for a fresh (non-continuation) call.
	BuildCommand(binary, prompt, mcpConfigPath string, maxTurns int, modelFlag string) []string

	// BuildResumeCommand constructs the argv for a continuation call against
	// an existing session id.
	BuildResumeCommand(binary, sessionID, prompt, mcpConfigPath string, maxTurns int, modelFlag string) []string

	// NormalizeEvent converts one decoded NDJSON line into the uniform event
	// shape the supervisor understands.
	NormalizeEvent(raw map[string]any) model.NormalizedEvent

	// ExtractTokenUsage pulls a TokenUsage record out of a terminal
	// RawResponse's raw fields, in this CLI's own shape.
	ExtractTokenUsage(raw map[string]any) model.TokenUsage

	// WrapToolServerConfig produces the final on-disk JSON document for a
	// resolved server map. Most providers just wrap it as
	// {mcpServers: servers}.
	WrapToolServerConfig(servers map[string]model.ToolServerEntry) map[string]any

	// UsesPlainText reports whether this provider emits unstructured text
	// instead of NDJSON (the Copilot CLI variant), selecting the
	// supervisor's plain-text event loop.
	UsesPlainText() bool
}

// ConfigHooks is implemented by providers using the settings-file config
// variant in addition to Provider (currently: gemini-cli). CreateConfig is
// called instead of writing a disposable temp file; the cleanup func it
// returns restores the previous file state.
type ConfigHooks interface {
	CreateConfig(workspaceRoot string, servers map[string]model.ToolServerEntry) (path string, cleanup func(), err error)
}

// StallPrompt is sent to resume a stalled session.
const StallPrompt = "Your previous session was interrupted due to inactivity. Continue where you left off and complete your remaining work."

// CompletionPrompt is sent to force a truncated response to completion.
const CompletionPrompt = "Your previous response was incomplete — you ran out of turns before writing your deliverable. Please write your COMPLETE deliverable now. Do NOT do any more research or tool calls. Use the knowledge you already gathered to produce your full output document immediately."
