package provider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamforge/agentcore/model"
)

func TestGeminiResolveModelFlag(t *testing.T) {
	g := Gemini{}
	require.Equal(t, "", g.ResolveModelFlag(""))
	require.Equal(t, "", g.ResolveModelFlag("default"))
	require.Equal(t, "gemini-2.5-pro", g.ResolveModelFlag("Gemini-2.5-Pro"))
}

func TestGeminiBuildCommandUsesApprovalModeYolo(t *testing.T) {
	g := Gemini{}
	argv := g.BuildCommand("gemini", "do it", "", 10, "gemini-2.5-pro")
	require.Contains(t, argv, "--approval-mode")
	require.Contains(t, argv, "yolo")
	require.Contains(t, argv, "--model")
	require.NotContains(t, argv, "--max-turns")
}

func TestGeminiBuildResumeCommandIncludesSessionID(t *testing.T) {
	g := Gemini{}
	argv := g.BuildResumeCommand("gemini", "sess-1", "continue", "", 10, "")
	require.Contains(t, argv, "--resume")
	require.Contains(t, argv, "sess-1")
}

func TestGeminiNormalizeEventFlatShapes(t *testing.T) {
	g := Gemini{}

	init := g.NormalizeEvent(map[string]any{"type": "init", "session_id": "s1"})
	require.Equal(t, model.EventInit, init.Type)
	require.Equal(t, "s1", init.SessionID)

	msg := g.NormalizeEvent(map[string]any{"type": "message", "role": "assistant", "content": "hi there"})
	require.Equal(t, model.EventText, msg.Type)
	require.Equal(t, "hi there", msg.Text)

	toolUse := g.NormalizeEvent(map[string]any{
		"type": "tool_use", "tool_name": "edit_file", "tool_id": "t9",
		"parameters": map[string]any{"path": "a.go"},
	})
	require.Equal(t, model.EventToolStart, toolUse.Type)
	require.Equal(t, "edit_file", toolUse.ToolName)

	toolResult := g.NormalizeEvent(map[string]any{"type": "tool_result", "tool_id": "t9", "output": "ok"})
	require.Equal(t, model.EventToolEnd, toolResult.Type)
	require.Equal(t, "ok", toolResult.ToolResult)

	result := g.NormalizeEvent(map[string]any{"type": "result", "session_id": "s1", "content": "Final answer"})
	require.Equal(t, model.EventResult, result.Type)
	require.Equal(t, "Final answer", result.ResultText)

	errEvent := g.NormalizeEvent(map[string]any{"type": "error", "message": "boom"})
	require.Equal(t, model.EventError, errEvent.Type)
	require.Equal(t, "boom", errEvent.Text)
}

func TestGeminiExtractTokenUsageFallsBackToUsageField(t *testing.T) {
	g := Gemini{}
	usage := g.ExtractTokenUsage(map[string]any{
		"usage": map[string]any{"input_tokens": float64(20), "output_tokens": float64(5)},
	})
	require.Equal(t, 20, usage.InputTokens)
	require.Equal(t, 5, usage.OutputTokens)
	require.Equal(t, 25, usage.TotalTokens)
}

func TestGeminiUsesPlainTextIsFalse(t *testing.T) {
	require.False(t, Gemini{}.UsesPlainText())
}

func TestGeminiCreateConfigSkipsWriteWhenServersEmpty(t *testing.T) {
	root := t.TempDir()
	path, cleanup, err := Gemini{}.CreateConfig(root, map[string]model.ToolServerEntry{})
	require.NoError(t, err)
	require.Empty(t, path)

	_, statErr := os.Stat(filepath.Join(root, ".gemini", "settings.json"))
	require.True(t, os.IsNotExist(statErr), "no settings file should be written for an empty server map")

	cleanup() // must be a safe no-op
}

func TestGeminiCreateConfigWritesSettingsFileWhenServersPresent(t *testing.T) {
	root := t.TempDir()
	servers := map[string]model.ToolServerEntry{"search": {Command: "python", Args: []string{"s.py"}}}

	path, cleanup, err := Gemini{}.CreateConfig(root, servers)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, ".gemini", "settings.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "search")

	cleanup()
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}
