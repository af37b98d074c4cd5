package provider

import (
	"strings"

	"github.com/streamforge/agentcore/model"
)

// Gemini drives the Gemini CLI (gemini -p), a flat-event NDJSON provider:
// top-level init/message/tool_use/tool_result/result/error types rather
// than Claude's nested content blocks. It reads tool-server configuration
// from a workspace settings file instead of a --mcp-config flag.
type Gemini struct{}

func (Gemini) Identity() Identity {
	return Identity{
		BinaryName: "gemini",
		FallbackPaths: []string{
			"/usr/local/bin/gemini", "/opt/homebrew/bin/gemini", "~/.local/bin/gemini",
		},
		Tag:            "gemini-cli",
		SessionsFile:   ".gemini_sessions.json",
		SettingsSubdir: "gemini",
	}
}

func (Gemini) ResolveModelFlag(modelName string) string {
	name := strings.ToLower(strings.TrimSpace(modelName))
	if name == "" || name == "gemini" || name == "default" {
		return ""
	}
	return name
}

func (Gemini) BuildCommand(binary, prompt, mcpConfigPath string, maxTurns int, modelFlag string) []string {
	cmd := []string{binary, "-p", prompt, "--output-format", "stream-json", "--approval-mode", "yolo"}
	if modelFlag != "" {
		cmd = append(cmd, "--model", modelFlag)
	}
	return cmd
}

func (Gemini) BuildResumeCommand(binary, sessionID, prompt, mcpConfigPath string, maxTurns int, modelFlag string) []string {
	cmd := []string{
		binary, "-p", prompt,
		"--output-format", "stream-json",
		"--approval-mode", "yolo",
		"--resume", sessionID,
	}
	if modelFlag != "" {
		cmd = append(cmd, "--model", modelFlag)
	}
	return cmd
}

func (Gemini) NormalizeEvent(raw map[string]any) model.NormalizedEvent {
	switch str(raw["type"]) {
	case "init":
		return model.NormalizedEvent{Type: model.EventInit, SessionID: str(raw["session_id"]), Raw: raw}

	case "message":
		if str(raw["role"]) == "assistant" {
			if content := str(raw["content"]); content != "" {
				return model.NormalizedEvent{Type: model.EventText, Text: content, Raw: raw}
			}
		}
		return model.NormalizedEvent{Type: model.EventText, Raw: raw}

	case "tool_use":
		params, _ := raw["parameters"].(map[string]any)
		return model.NormalizedEvent{
			Type: model.EventToolStart, ToolName: orUnknown(str(raw["tool_name"])),
			ToolInput: params, ToolID: str(raw["tool_id"]), Raw: raw,
		}

	case "tool_result":
		return model.NormalizedEvent{
			Type: model.EventToolEnd, ToolID: str(raw["tool_id"]),
			ToolResult: truncate(stringify(raw["output"]), 200), Raw: raw,
		}

	case "result":
		stats, _ := raw["stats"].(map[string]any)
		return model.NormalizedEvent{
			Type: model.EventResult, SessionID: str(raw["session_id"]),
			ResultText: str(raw["content"]), Usage: stats, Raw: raw,
		}

	case "error":
		msg := str(raw["message"])
		if msg == "" {
			msg = str(raw["error"])
		}
		return model.NormalizedEvent{Type: model.EventError, Text: msg, Raw: raw}

	default:
		return model.NormalizedEvent{Type: model.EventText, Raw: raw}
	}
}

func (Gemini) ExtractTokenUsage(raw map[string]any) model.TokenUsage {
	stats, _ := raw["stats"].(map[string]any)
	if len(stats) == 0 {
		stats, _ = raw["usage"].(map[string]any)
	}
	in := int(numberOf(valueOf(stats, "input_tokens")))
	out := int(numberOf(valueOf(stats, "output_tokens")))
	total := int(numberOf(valueOf(stats, "total_tokens")))
	if total == 0 {
		total = in + out
	}
	return model.TokenUsage{InputTokens: in, OutputTokens: out, TotalTokens: total, Metadata: stats}
}

// WrapToolServerConfig is unused directly: Gemini's CreateConfig (in
// gemini_settings.go) merges into the workspace settings file rather than
// wrapping a standalone document, but the shape is the same mcpServers key.
func (Gemini) WrapToolServerConfig(servers map[string]model.ToolServerEntry) map[string]any {
	return map[string]any{"mcpServers": servers}
}

func (Gemini) UsesPlainText() bool { return false }
