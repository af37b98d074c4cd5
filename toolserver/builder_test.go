package toolserver

import (
	"os"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamforge/agentcore/model"
)

func TestBuildLocalServerNaming(t *testing.T) {
	specs := []model.ToolingSpec{
		{Kind: model.ToolingSpecLocal, Command: "python", Args: []string{"tool_server.py"}},
	}
	cfg := Build(specs, BuildOptions{})
	require.NotNil(t, cfg)
	entry, ok := cfg.McpServers["tool-server"]
	require.True(t, ok, "expected name derived from first non-flag arg, got %v", cfg.McpServers)
	assert.Equal(t, "python", entry.Command)
}

func TestBuildLocalServerFallsBackToCommand(t *testing.T) {
	specs := []model.ToolingSpec{
		{Kind: model.ToolingSpecLocal, Command: "my_tool", Args: []string{"--flag-only"}},
	}
	cfg := Build(specs, BuildOptions{})
	require.NotNil(t, cfg)
	_, ok := cfg.McpServers["my-tool"]
	assert.True(t, ok, "expected fallback to command-derived name, got %v", cfg.McpServers)
}

func TestBuildRemoteServerHostnameDerivedName(t *testing.T) {
	specs := []model.ToolingSpec{
		{Kind: model.ToolingSpecRemote, URL: "https://mcp-search.example.com/rpc"},
	}
	cfg := Build(specs, BuildOptions{})
	require.NotNil(t, cfg)
	entry, ok := cfg.McpServers["search"]
	require.True(t, ok, "expected 'search' derived from mcp-search host, got %v", cfg.McpServers)
	assert.Equal(t, "http", entry.Type)
}

func TestBuildCollisionResolution(t *testing.T) {
	specs := []model.ToolingSpec{
		{Kind: model.ToolingSpecLocal, Prefix: "tool", Command: "a"},
		{Kind: model.ToolingSpecLocal, Prefix: "tool", Command: "b"},
		{Kind: model.ToolingSpecLocal, Prefix: "tool", Command: "c"},
	}
	cfg := Build(specs, BuildOptions{})
	require.NotNil(t, cfg)
	assert.Len(t, cfg.McpServers, 3)
	for _, name := range []string{"tool", "tool-2", "tool-3"} {
		_, ok := cfg.McpServers[name]
		assert.True(t, ok, "expected %s in %v", name, cfg.McpServers)
	}
}

func TestBuildDropsEntryWithUnresolvedPlaceholder(t *testing.T) {
	t.Setenv("AGENTCORE_TEST_SET_VAR", "present")
	specs := []model.ToolingSpec{
		{Kind: model.ToolingSpecLocal, Prefix: "resolved", Command: "$ENV{AGENTCORE_TEST_SET_VAR}"},
		{Kind: model.ToolingSpecLocal, Prefix: "unresolved", Command: "$ENV{AGENTCORE_TEST_UNSET_VAR}"},
	}
	cfg := Build(specs, BuildOptions{})
	require.NotNil(t, cfg)
	_, ok := cfg.McpServers["resolved"]
	assert.True(t, ok)
	_, ok = cfg.McpServers["unresolved"]
	assert.False(t, ok, "entry referencing an unset variable must be dropped entirely")
}

func TestBuildProgressReporterIsFirstAndNeverCollides(t *testing.T) {
	specs := []model.ToolingSpec{
		{Kind: model.ToolingSpecLocal, Prefix: "reporter", Command: "other"},
	}
	cfg := Build(specs, BuildOptions{
		NodeID: "node-1", SessionID: "sess-1", ServerPort: 9000,
		Reporter: &ProgressReporter{Name: "reporter", Command: "python", Args: []string{"reporter.py"}, EnvPrefix: "AGENTCORE"},
	})
	require.NotNil(t, cfg)
	builtin, ok := cfg.McpServers["reporter"]
	require.True(t, ok)
	assert.Equal(t, "python", builtin.Command)
	assert.Equal(t, "sess-1", builtin.Env["AGENTCORE_SESSION_ID"])

	_, ok = cfg.McpServers["reporter-2"]
	assert.True(t, ok, "the user-supplied 'reporter' spec must be renamed, not drop the builtin")
}

func TestBuildReturnsNilWhenNoServersResolve(t *testing.T) {
	cfg := Build(nil, BuildOptions{})
	assert.Nil(t, cfg)
}

func TestWriteTempFileRoundTrip(t *testing.T) {
	cfg := Build([]model.ToolingSpec{{Kind: model.ToolingSpecLocal, Command: "python", Args: []string{"srv.py"}}}, BuildOptions{})
	require.NotNil(t, cfg)

	path, err := WriteTempFile(cfg)
	require.NoError(t, err)
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mcpServers")
}

// TestEnvInterpolationIsTotalOrNothing checks the universal
// property: an entry either has every placeholder resolved, or it does
// not appear in the output at all — never a partial substitution.
func TestEnvInterpolationIsTotalOrNothing(t *testing.T) {
	t.Setenv("AGENTCORE_PROP_VAR", "value")

	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("an unresolved placeholder always drops the whole entry", prop.ForAll(
		func(missingName string) bool {
			specs := []model.ToolingSpec{
				{
					Kind:    model.ToolingSpecLocal,
					Prefix:  "probe",
					Command: "python",
					Args:    []string{"$ENV{AGENTCORE_PROP_VAR}", "$ENV{" + missingName + "}"},
				},
			}
			cfg := Build(specs, BuildOptions{})
			return cfg == nil
		},
		gen.Identifier().Map(func(s string) string { return "AGENTCORE_PROP_MISSING_" + s }),
	))

	properties.TestingRun(t)
}
