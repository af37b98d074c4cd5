package provider

import (
	"strconv"
	"strings"

	"github.com/streamforge/agentcore/model"
)

// Claude drives the Claude Code CLI (claude -p), a nested-content NDJSON
// provider: top-level assistant/user events wrap content blocks tagged
// text/tool_use/tool_result.
type Claude struct{}

func (Claude) Identity() Identity {
	return Identity{
		BinaryName: "claude",
		FallbackPaths: []string{
			"/usr/local/bin/claude", "/opt/homebrew/bin/claude", "~/.local/bin/claude",
		},
		Tag:          "claude-code",
		SessionsFile: ".claude_sessions.json",
	}
}

func (Claude) ResolveModelFlag(modelName string) string {
	name := strings.ToLower(strings.TrimSpace(modelName))
	if name == "" || name == "claude" || name == "default" {
		return ""
	}
	switch name {
	case "sonnet", "opus", "haiku":
		return name
	}
	for _, tier := range []string{"opus", "sonnet", "haiku"} {
		if strings.Contains(name, tier) {
			return tier
		}
	}
	return name
}

func (Claude) BuildCommand(binary, prompt, mcpConfigPath string, maxTurns int, modelFlag string) []string {
	cmd := []string{binary, "-p", prompt, "--output-format", "stream-json", "--verbose", "--dangerously-skip-permissions"}
	cmd = append(cmd, "--max-turns", strconv.Itoa(maxTurns))
	if mcpConfigPath != "" {
		cmd = append(cmd, "--mcp-config", mcpConfigPath)
	}
	if modelFlag != "" {
		cmd = append(cmd, "--model", modelFlag)
	}
	return cmd
}

func (Claude) BuildResumeCommand(binary, sessionID, prompt, mcpConfigPath string, maxTurns int, modelFlag string) []string {
	cmd := []string{
		binary, "-p", prompt,
		"--output-format", "stream-json",
		"--verbose",
		"--dangerously-skip-permissions",
		"--resume", sessionID,
		"--max-turns", strconv.Itoa(maxTurns),
	}
	if mcpConfigPath != "" {
		cmd = append(cmd, "--mcp-config", mcpConfigPath)
	}
	if modelFlag != "" {
		cmd = append(cmd, "--model", modelFlag)
	}
	return cmd
}

func (Claude) NormalizeEvent(raw map[string]any) model.NormalizedEvent {
	switch str(raw["type"]) {
	case "system":
		return model.NormalizedEvent{Type: model.EventInit, SessionID: str(raw["session_id"]), Raw: raw}

	case "assistant":
		msg, _ := raw["message"].(map[string]any)
		blocks, _ := msg["content"].([]any)
		for _, b := range blocks {
			block, _ := b.(map[string]any)
			switch str(block["type"]) {
			case "tool_use":
				input, _ := block["input"].(map[string]any)
				return model.NormalizedEvent{
					Type: model.EventToolStart, ToolName: orUnknown(str(block["name"])),
					ToolInput: input, ToolID: str(block["id"]), Raw: raw,
				}
			case "text":
				if text := str(block["text"]); text != "" {
					return model.NormalizedEvent{Type: model.EventText, Text: text, Raw: raw}
				}
			}
		}
		return model.NormalizedEvent{Type: model.EventText, Raw: raw}

	case "user":
		msg, _ := raw["message"].(map[string]any)
		blocks, _ := msg["content"].([]any)
		for _, b := range blocks {
			block, _ := b.(map[string]any)
			if str(block["type"]) == "tool_result" {
				return model.NormalizedEvent{Type: model.EventToolEnd, ToolID: str(block["tool_use_id"]), ToolResult: truncate(stringify(block["content"]), 200), Raw: raw}
			}
		}
		return model.NormalizedEvent{Type: model.EventText, Raw: raw}

	case "result":
		usage, _ := raw["usage"].(map[string]any)
		return model.NormalizedEvent{
			Type: model.EventResult, SessionID: str(raw["session_id"]),
			ResultText: str(raw["result"]), Usage: usage, Raw: raw,
		}

	default:
		return model.NormalizedEvent{Type: model.EventText, Raw: raw}
	}
}

func (Claude) ExtractTokenUsage(raw map[string]any) model.TokenUsage {
	usage, _ := raw["usage"].(map[string]any)
	cost := raw["total_cost_usd"]

	if modelUsage, ok := raw["modelUsage"].(map[string]any); ok && len(modelUsage) > 0 {
		if usage == nil || numberOf(usage["input_tokens"]) == 0 {
			for _, v := range modelUsage {
				stats, _ := v.(map[string]any)
				in := int(numberOf(stats["inputTokens"]))
				out := int(numberOf(stats["outputTokens"]))
				meta := map[string]any{"total_cost_usd": cost}
				for k, v := range stats {
					meta[k] = v
				}
				return model.TokenUsage{InputTokens: in, OutputTokens: out, TotalTokens: in + out, Metadata: meta}
			}
		}
	}

	in := int(numberOf(valueOf(usage, "input_tokens")))
	out := int(numberOf(valueOf(usage, "output_tokens")))
	return model.TokenUsage{InputTokens: in, OutputTokens: out, TotalTokens: in + out, Metadata: map[string]any{"total_cost_usd": cost}}
}

func (Claude) WrapToolServerConfig(servers map[string]model.ToolServerEntry) map[string]any {
	return map[string]any{"mcpServers": servers}
}

func (Claude) UsesPlainText() bool { return false }
