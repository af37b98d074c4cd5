package provider

import (
	"github.com/streamforge/agentcore/model"
	"github.com/streamforge/agentcore/toolserver"
)

// CreateConfig implements ConfigHooks for Gemini: the server map is merged
// into {workspace}/.gemini/settings.json (backing up and restoring any
// prior content) rather than written to a disposable temp file. An empty
// server map (no tooling, no reporter) writes nothing at all.
func (Gemini) CreateConfig(workspaceRoot string, servers map[string]model.ToolServerEntry) (string, func(), error) {
	if len(servers) == 0 {
		return "", func() {}, nil
	}
	sf := toolserver.NewSettingsFile(workspaceRoot, "gemini", "bak")
	path, err := sf.Write(&model.ToolServerConfig{McpServers: servers})
	if err != nil {
		return "", nil, err
	}
	return path, sf.Cleanup, nil
}
