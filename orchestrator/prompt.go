package orchestrator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/streamforge/agentcore/model"
)

// buildPrompt renders conversation into the single prompt string a
// provider's non-interactive flag expects. A continuation call omits
// system instructions, the tool capability section, and the standing
// instructions below it, since the working directory and conventions were
// already established on the session's first turn.
func buildPrompt(conversation []model.Message, tools []model.ToolDefinition, workspaceRoot string, isContinuation bool) string {
	var sections []string

	for _, msg := range conversation {
		if isContinuation && (msg.Role == model.RoleSystem || msg.Role == model.RoleAssistant) {
			continue
		}
		sections = append(sections, renderMessage(msg))
	}

	if !isContinuation {
		sections = append(sections, toolCapabilitySection(tools))
		sections = append(sections, workingDirectorySection(workspaceRoot))
		sections = append(sections, progressReportingSection)
		sections = append(sections, turnBudgetSection)
	}

	return strings.Join(sections, "\n\n")
}

func renderMessage(msg model.Message) string {
	switch msg.Role {
	case model.RoleSystem:
		return "[System Instructions]:\n" + msg.Content
	case model.RoleUser:
		return "[User]:\n" + msg.Content
	case model.RoleAssistant:
		return "[Assistant]:\n" + msg.Content
	case model.RoleTool:
		name := msg.ToolName
		if name == "" {
			name = "unknown"
		}
		return fmt.Sprintf("[Tool Result for '%s' (call_id: %s)]:\n%s", name, msg.ToolCallID, msg.Content)
	default:
		return msg.Content
	}
}

var bashToolPattern = regexp.MustCompile(`(?i)run|exec|bash`)

// nativeToolName maps a logical tool name from a ToolDefinition to the
// agent's built-in tool vocabulary.
func nativeToolName(logical string) string {
	lower := strings.ToLower(logical)
	switch lower {
	case "save_file", "write":
		return "Write"
	case "read_file", "read":
		return "Read"
	}
	if bashToolPattern.MatchString(lower) {
		return "Bash"
	}
	return logical
}

func toolCapabilitySection(tools []model.ToolDefinition) string {
	var b strings.Builder
	b.WriteString("[Available Tools]:\n")
	b.WriteString("The following logical tools map to your native capabilities:\n")
	for _, t := range tools {
		fmt.Fprintf(&b, "- %s -> %s: %s\n", t.Name, nativeToolName(t.Name), t.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func workingDirectorySection(workspaceRoot string) string {
	return fmt.Sprintf(
		"[Working Directory]:\nYour workspace root is %s. Always use paths relative to this root; never use absolute paths outside it.",
		workspaceRoot,
	)
}

const progressReportingSection = "[Progress Reporting]:\nReport progress periodically as you work — 2 to 5 reports over the course of the task is ideal. Avoid reporting so often that it interrupts your own work, and avoid going silent for the entire task."

const turnBudgetSection = "[Turn Budget]:\nSpend at most 60% of your turns on research and investigation; reserve at least 40% for producing the deliverable itself. Limit yourself to 5 sequential-thinking steps before acting."
