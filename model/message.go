// Package model defines the provider-agnostic data types shared by the
// session registry, workspace snapshotter, tool-server config builder,
// streaming supervisor, and call orchestrator: conversation messages,
// normalized CLI events, raw subprocess responses, and token usage.
package model

// Role identifies the speaker for a conversation message.
type Role string

const (
	// RoleSystem carries standing instructions for the agent.
	RoleSystem Role = "system"
	// RoleUser carries user-authored content.
	RoleUser Role = "user"
	// RoleAssistant carries prior assistant output.
	RoleAssistant Role = "assistant"
	// RoleTool carries the result of a tool invocation.
	RoleTool Role = "tool"
)

// Message is a single entry in the conversation passed to a call. Prompt
// assembly (orchestrator.buildPrompt) renders messages by Role into the
// sectioned prompt string each CLI expects on its non-interactive flag.
type Message struct {
	// Role identifies the speaker for this message.
	Role Role

	// Content is the message's textual body.
	Content string

	// ToolCallID correlates a RoleTool message back to the tool_use call it
	// answers. Empty for non-tool messages.
	ToolCallID string

	// ToolName is the name of the tool this message reports a result for.
	// Only meaningful when Role is RoleTool.
	ToolName string

	// Metadata carries caller-supplied, provider-opaque annotations.
	Metadata map[string]any
}
