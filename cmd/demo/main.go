package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/streamforge/agentcore/accumulator"
	"github.com/streamforge/agentcore/model"
	"github.com/streamforge/agentcore/orchestrator"
	"github.com/streamforge/agentcore/provider"
	"github.com/streamforge/agentcore/session"
	"github.com/streamforge/agentcore/supervisor"
	"github.com/streamforge/agentcore/telemetry"
	"github.com/streamforge/agentcore/toolserver"
)

// main wires up a single provider end to end against a scratch workspace:
// registry, usage accumulator, rate-limited orchestrator, and one call_model
// invocation streaming progress events to stdout.
func main() {
	ctx := context.Background()

	claude := provider.Claude{}
	registries := session.NewRegistrySet()
	identity := claude.Identity()
	registry := registries.For(identity.Tag, identity.SessionsFile)

	binary, err := provider.ResolveBinary(identity)
	if err != nil {
		fmt.Fprintln(os.Stderr, "claude CLI not available:", err)
		os.Exit(1)
	}

	workspaceRoot, err := os.MkdirTemp("", "agentcore-demo-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(workspaceRoot)
	registry.LoadFrom(workspaceRoot)

	orch := orchestrator.New(
		claude,
		registry,
		binary,
		&toolserver.ProgressReporter{
			Command:   "python",
			Args:      []string{"mcp_servers/agentcore_reporter.py"},
			EnvPrefix: "AGENTCORE",
		},
		accumulator.NewMemory(),
		rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		telemetry.NewClueLogger(),
		telemetry.NewClueTracer(),
	)

	cfg := orchestrator.Config{
		NodeID:        "demo-node",
		WorkspaceRoot: workspaceRoot,
		ModelName:     "sonnet",
		Tooling: []model.ToolingSpec{
			{Kind: model.ToolingSpecLocal, Command: "echo", Args: []string{"hello"}},
		},
	}

	opts := orchestrator.CallOptions{
		Conversation: []model.Message{
			{Role: model.RoleUser, Content: "Say hello and list the files in the workspace."},
		},
		Tools: []model.ToolDefinition{
			{Name: "read_file", Description: "Read a file from the workspace."},
		},
		Callback: func(kind supervisor.EventKind, payload map[string]any) {
			fmt.Println(kind, payload)
		},
		Timeout:     120 * time.Second,
		IdleTimeout: 30 * time.Second,
		ServerPort:  8000,
		SessionID:   "demo-call-1",
	}

	resp, err := orch.Call(ctx, cfg, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "call failed:", err)
		os.Exit(1)
	}
	fmt.Println("Assistant:", resp.Content)
}
