// Package toolserver turns a list of tooling specs into a placeholder-free
// `{mcpServers: {...}}` document, with collision-free naming, a built-in
// progress-reporter entry, and two output variants — a disposable temp
// file (the default) and an in-workspace settings file merge.
package toolserver

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/streamforge/agentcore/model"
)

// ProgressReporter describes the built-in local MCP entry injected when a
// session id and server port are available. Command/Args are fixed per
// provider deployment; the three env bindings are filled in from the call
// context.
type ProgressReporter struct {
	Name    string
	Command string
	Args    []string
	// EnvPrefix names the environment variable family, e.g. "CHATDEV" for
	// CHATDEV_SERVER_URL / CHATDEV_SESSION_ID / CHATDEV_NODE_ID.
	EnvPrefix string
}

// BuildOptions carries everything Build needs beyond the tooling specs
// themselves.
type BuildOptions struct {
	NodeID        string
	SessionID     string
	ServerPort    int
	WorkspaceRoot string
	Reporter      *ProgressReporter
}

// Build resolves specs into a ToolServerConfig. Entries referencing an
// unset $ENV{} variable are dropped rather than failing the whole build.
// A nil result means no server resolved — the caller should skip writing
// a config at all.
func Build(specs []model.ToolingSpec, opts BuildOptions) *model.ToolServerConfig {
	servers := make(map[string]model.ToolServerEntry)
	names := newNameResolver()

	if opts.Reporter != nil && opts.SessionID != "" && opts.ServerPort != 0 {
		name := opts.Reporter.Name
		if name == "" {
			name = "progress-reporter"
		}
		names.resolve(name) // reserve: the built-in entry is first and never collides
		servers[name] = model.ToolServerEntry{
			Command: opts.Reporter.Command,
			Args:    append([]string{}, opts.Reporter.Args...),
			Env: map[string]string{
				opts.Reporter.EnvPrefix + "_SERVER_URL": serverURL(opts.ServerPort),
				opts.Reporter.EnvPrefix + "_SESSION_ID": opts.SessionID,
				opts.Reporter.EnvPrefix + "_NODE_ID":    opts.NodeID,
			},
		}
	}

	lookup := envMap(opts.WorkspaceRoot)

	for _, spec := range specs {
		switch spec.Kind {
		case model.ToolingSpecRemote:
			if spec.URL == "" {
				continue
			}
			base := spec.Prefix
			if base == "" {
				base = deriveRemoteName(spec.URL)
			}
			command, cwd, url, args, _, headers, ok := resolveEntry("", "", spec.URL, nil, nil, spec.Headers, lookup)
			_ = command
			_ = cwd
			_ = args
			if !ok {
				continue
			}
			name := names.resolve(base)
			servers[name] = model.ToolServerEntry{Type: "http", URL: url, Headers: headers}

		case model.ToolingSpecLocal:
			if spec.Command == "" {
				continue
			}
			base := spec.Prefix
			if base == "" {
				base = deriveLocalName(spec.Command, spec.Args)
			}
			command, cwd, _, args, env, _, ok := resolveEntry(spec.Command, spec.Cwd, "", spec.Args, spec.Env, nil, lookup)
			if !ok {
				continue
			}
			if args == nil {
				args = []string{}
			}
			name := names.resolve(base)
			servers[name] = model.ToolServerEntry{Command: command, Args: args, Env: env, Cwd: cwd}
		}
	}

	if len(servers) == 0 {
		return nil
	}
	return &model.ToolServerConfig{McpServers: servers}
}

func serverURL(port int) string {
	return "http://127.0.0.1:" + strconv.Itoa(port)
}

// WriteTempFile serializes doc to a freshly-created temp JSON file and
// returns its path. doc is typically a provider's WrapToolServerConfig
// result, so the on-disk shape matches what that CLI expects rather than
// always the bare {mcpServers} document. The caller owns the file and must
// remove it on every exit path.
func WriteTempFile(doc any) (string, error) {
	f, err := os.CreateTemp("", "agentcore_mcp_*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	if err := enc.Encode(doc); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
