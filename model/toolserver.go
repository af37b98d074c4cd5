package model

// ToolingSpecKind tags a tooling spec as a local (process-spawning) or
// remote (HTTP) auxiliary server, mirroring the `mcp_local` / `mcp_remote`
// vocabulary the call site supplies per node.
type ToolingSpecKind string

const (
	ToolingSpecLocal  ToolingSpecKind = "mcp_local"
	ToolingSpecRemote ToolingSpecKind = "mcp_remote"
)

// ToolingSpec is one requested auxiliary tool server, before naming,
// environment interpolation, or collision resolution. Every string field
// may contain `$ENV{NAME}` placeholders.
type ToolingSpec struct {
	Kind    ToolingSpecKind   `yaml:"type" json:"type"`
	Prefix  string            `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Command string            `yaml:"command,omitempty" json:"command,omitempty"`
	Args    []string          `yaml:"args,omitempty" json:"args,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	Cwd     string            `yaml:"cwd,omitempty" json:"cwd,omitempty"`
	URL     string            `yaml:"url,omitempty" json:"url,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// ToolServerEntry is one resolved, placeholder-free entry in a
// ToolServerConfig document. A local entry carries Command/Args/Env/Cwd; a
// remote entry carries Type="http"/URL/Headers. The two shapes never mix
// on the same entry.
type ToolServerEntry struct {
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Cwd     string            `json:"cwd,omitempty"`
	Type    string            `json:"type,omitempty"`
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// ToolServerConfig is the structured `{mcpServers: {name: entry}}` document
// a Tool-Server Config Builder produces. All placeholders in every entry
// have already been resolved by the time a ToolServerConfig is built; an
// entry with an unresolved placeholder is dropped before it gets here.
type ToolServerConfig struct {
	McpServers map[string]ToolServerEntry `json:"mcpServers"`
}

// ToolDefinition describes one tool the calling conversation makes
// available, as surfaced in the prompt's capability-mapping section.
// InputSchema is a JSON Schema document validated before use.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}
