package provider

import (
	"encoding/json"
	"strings"

	"github.com/streamforge/agentcore/model"
)

// Copilot drives the GitHub Copilot CLI (copilot -p). Copilot does not
// support NDJSON streaming in non-interactive mode: it emits plain text,
// with the occasional JSON line opportunistically parsed for system/result
// shapes. UsesPlainText selects the supervisor's simplified event loop for
// this provider.
type Copilot struct{}

func (Copilot) Identity() Identity {
	return Identity{
		BinaryName: "copilot",
		FallbackPaths: []string{
			"/usr/local/bin/copilot", "/opt/homebrew/bin/copilot", "~/.local/bin/copilot",
		},
		Tag:          "copilot-cli",
		SessionsFile: ".copilot_sessions.json",
	}
}

func (Copilot) ResolveModelFlag(modelName string) string {
	name := strings.ToLower(strings.TrimSpace(modelName))
	if name == "" || name == "copilot" || name == "default" {
		return ""
	}
	return name
}

func (Copilot) BuildCommand(binary, prompt, mcpConfigPath string, maxTurns int, modelFlag string) []string {
	cmd := []string{binary, "-p", prompt, "--yolo"}
	if mcpConfigPath != "" {
		cmd = append(cmd, "--additional-mcp-config", "@"+mcpConfigPath)
	}
	if modelFlag != "" {
		cmd = append(cmd, "--model", modelFlag)
	}
	return cmd
}

func (Copilot) BuildResumeCommand(binary, sessionID, prompt, mcpConfigPath string, maxTurns int, modelFlag string) []string {
	cmd := []string{binary, "-p", prompt, "--yolo", "--resume", sessionID}
	if mcpConfigPath != "" {
		cmd = append(cmd, "--additional-mcp-config", "@"+mcpConfigPath)
	}
	if modelFlag != "" {
		cmd = append(cmd, "--model", modelFlag)
	}
	return cmd
}

// NormalizeEvent handles the rare case a Copilot line happens to be valid
// JSON. Most lines never reach here: the plain-text supervisor loop
// surfaces them as text directly.
func (Copilot) NormalizeEvent(raw map[string]any) model.NormalizedEvent {
	switch str(raw["type"]) {
	case "result":
		usage, _ := raw["usage"].(map[string]any)
		return model.NormalizedEvent{
			Type: model.EventResult, SessionID: str(raw["session_id"]),
			ResultText: str(raw["result"]), Usage: usage, Raw: raw,
		}
	case "system":
		return model.NormalizedEvent{Type: model.EventInit, SessionID: str(raw["session_id"]), Raw: raw}
	default:
		encoded, _ := json.Marshal(raw)
		return model.NormalizedEvent{Type: model.EventText, Text: string(encoded), Raw: raw}
	}
}

func (Copilot) ExtractTokenUsage(raw map[string]any) model.TokenUsage {
	usage, _ := raw["usage"].(map[string]any)
	in := int(numberOf(valueOf(usage, "input_tokens")))
	out := int(numberOf(valueOf(usage, "output_tokens")))
	return model.TokenUsage{InputTokens: in, OutputTokens: out, TotalTokens: in + out, Metadata: usage}
}

func (Copilot) WrapToolServerConfig(servers map[string]model.ToolServerEntry) map[string]any {
	return map[string]any{"mcpServers": servers}
}

func (Copilot) UsesPlainText() bool { return true }
