package toolserver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamforge/agentcore/model"
)

func TestSettingsFileWriteCreatesDirAndMerges(t *testing.T) {
	root := t.TempDir()
	sf := NewSettingsFile(root, "gemini", "bak")

	cfg := &model.ToolServerConfig{McpServers: map[string]model.ToolServerEntry{
		"search": {Command: "python", Args: []string{"s.py"}},
	}}
	path, err := sf.Write(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".gemini", "settings.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "mcpServers")
}

func TestSettingsFileCleanupRemovesWhenNoPriorFile(t *testing.T) {
	root := t.TempDir()
	sf := NewSettingsFile(root, "gemini", "bak")
	_, err := sf.Write(&model.ToolServerConfig{McpServers: map[string]model.ToolServerEntry{}})
	require.NoError(t, err)

	sf.Cleanup()
	_, statErr := os.Stat(sf.Path)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Dir(sf.Path))
	assert.True(t, os.IsNotExist(statErr), "created directory must be removed when it is now empty")
}

func TestSettingsFileCleanupRestoresPriorByteForByte(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".gemini")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	priorContent := []byte(`{"theme":"dark","mcpServers":{}}`)
	settingsPath := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(settingsPath, priorContent, 0o644))

	sf := NewSettingsFile(root, "gemini", "bak")
	_, err := sf.Write(&model.ToolServerConfig{McpServers: map[string]model.ToolServerEntry{
		"tool": {Command: "x"},
	}})
	require.NoError(t, err)

	written, err := os.ReadFile(settingsPath)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(written, &decoded))
	assert.Equal(t, "dark", decoded["theme"], "merge must preserve unrelated keys")

	sf.Cleanup()

	restored, err := os.ReadFile(settingsPath)
	require.NoError(t, err)
	assert.Equal(t, priorContent, restored, "cleanup must restore the exact prior bytes")

	_, statErr := os.Stat(sf.BackupPath)
	assert.True(t, os.IsNotExist(statErr), "backup file must be removed after restore")
}
