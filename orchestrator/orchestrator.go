// Package orchestrator implements call_model: the linear pipeline that
// turns a conversation into a supervised CLI invocation, handling session
// continuation, stall recovery, resume-rejection fallback, and the
// truncation-recheck completion pass, with workspace snapshot/diff and
// token-usage accounting wired around every run.
package orchestrator

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/streamforge/agentcore/model"
	"github.com/streamforge/agentcore/provider"
	"github.com/streamforge/agentcore/session"
	"github.com/streamforge/agentcore/supervisor"
	"github.com/streamforge/agentcore/telemetry"
	"github.com/streamforge/agentcore/toolserver"
	"github.com/streamforge/agentcore/workspace"
)

// Config is the per-node, per-provider configuration a call is made
// under: its workspace, model selection, turn budget, and tooling specs.
type Config struct {
	NodeID        string
	WorkspaceRoot string
	ModelName     string
	MaxTurns      int // 0 means unconfigured: defaults apply
	Tooling       []model.ToolingSpec
}

// CallOptions carries the parameters that vary per call rather than per
// node/config: the conversation, tool capability descriptions for prompt
// assembly, a streaming callback, deadlines, and the progress-reporter
// identity.
type CallOptions struct {
	Conversation []model.Message
	Tools        []model.ToolDefinition
	Callback     supervisor.Callback
	Timeout      time.Duration
	IdleTimeout  time.Duration

	// SessionID and ServerPort identify this call to the built-in
	// progress-reporter tool server; they are independent of the CLI's own
	// conversation session id tracked in the registry.
	SessionID  string
	ServerPort int
}

// Orchestrator drives call_model for one concrete provider. Construct one
// per provider kind, sharing a RegistrySet-derived *session.Registry, a
// token usage accumulator, and a spawn rate limiter across calls.
type Orchestrator struct {
	Provider provider.Provider
	Registry *session.Registry
	Binary   string
	Reporter *toolserver.ProgressReporter
	Usage    model.UsageAccumulator
	Limiter  *rate.Limiter
	Logger   telemetry.Logger
	Tracer   telemetry.Tracer
}

// New constructs an Orchestrator. limiter may be nil to disable spawn
// throttling; usage may be nil to discard token accounting.
func New(p provider.Provider, registry *session.Registry, binary string, reporter *toolserver.ProgressReporter, usage model.UsageAccumulator, limiter *rate.Limiter, logger telemetry.Logger, tracer telemetry.Tracer) *Orchestrator {
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	return &Orchestrator{
		Provider: p, Registry: registry, Binary: binary, Reporter: reporter,
		Usage: usage, Limiter: limiter, Logger: logger, Tracer: tracer,
	}
}

// Call runs the full call_model pipeline against cfg and opts.
func (o *Orchestrator) Call(ctx context.Context, cfg Config, opts CallOptions) (ModelResponse, error) {
	var span telemetry.Span
	if o.Tracer != nil {
		ctx, span = o.Tracer.Start(ctx, "orchestrator.call")
		defer span.End()
	}

	existingSession, hadSession := o.Registry.Get(cfg.NodeID)
	isContinuation := hadSession

	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}

	configPath, cleanup, err := o.writeToolConfig(cfg, opts)
	if err != nil {
		o.Logger.Error(ctx, "tool config build failed", "node_id", cfg.NodeID, "error", err)
	}
	defer cleanup()

	tools, dropped := toolserver.ValidateToolDefinitions(opts.Tools)
	for name, verr := range dropped {
		o.Logger.Warn(ctx, "tool definition dropped: invalid input schema", "node_id", cfg.NodeID, "tool", name, "error", verr)
	}

	prompt := buildPrompt(opts.Conversation, tools, cfg.WorkspaceRoot, isContinuation)

	maxTurns := cfg.MaxTurns
	if maxTurns == 0 {
		if isContinuation {
			maxTurns = 40
		} else {
			maxTurns = 30
		}
	}

	modelFlag := o.Provider.ResolveModelFlag(cfg.ModelName)
	identity := o.Provider.Identity()
	binary := o.Binary
	if binary == "" {
		binary = identity.BinaryName
	}

	var argv []string
	if isContinuation {
		argv = o.Provider.BuildResumeCommand(binary, existingSession, prompt, configPath, maxTurns, modelFlag)
	} else {
		argv = o.Provider.BuildCommand(binary, prompt, configPath, maxTurns, modelFlag)
	}

	dir := cfg.WorkspaceRoot
	if dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}
	before := workspace.Take(dir)

	deadlines := supervisor.Deadlines{Overall: opts.Timeout, Idle: opts.IdleTimeout}

	raw, stderrText, err := o.run(ctx, argv, dir, deadlines, opts.Callback)
	if err != nil {
		return ModelResponse{}, err
	}

	if raw.Error == model.RunErrorTimeout {
		if !hadSession {
			o.Registry.Clear(cfg.NodeID)
		}
		return ModelResponse{Content: "[Error: " + identity.BinaryName + " CLI timed out]", RawResponse: raw}, nil
	}

	if raw.Error == model.RunErrorStall {
		stallSession := raw.SessionID
		if stallSession == "" {
			stallSession, _ = o.Registry.Get(cfg.NodeID)
		}
		if stallSession == "" {
			return ModelResponse{Content: "[Error: Agent stalled, no session to resume]", RawResponse: raw}, nil
		}

		if opts.Callback != nil {
			opts.Callback(supervisor.EventStallDetected, map[string]any{"session_id": stallSession, "idle_timeout": opts.IdleTimeout})
		}

		resumeTurns := cfg.MaxTurns
		if resumeTurns == 0 {
			resumeTurns = 20
		}
		resumeArgv := o.Provider.BuildResumeCommand(binary, stallSession, provider.StallPrompt, configPath, resumeTurns, modelFlag)
		raw, stderrText, err = o.run(ctx, resumeArgv, dir, deadlines, opts.Callback)
		if err != nil {
			return ModelResponse{}, err
		}
		if raw.Error == model.RunErrorTimeout || raw.Error == model.RunErrorStall {
			o.Registry.Clear(cfg.NodeID)
			return ModelResponse{Content: "[Error: Agent stalled and recovery failed]", RawResponse: raw}, nil
		}
	}

	o.recordUsage(ctx, cfg, raw)

	if isContinuation && raw.Error != "" && containsAny(strings.ToLower(string(raw.Error)), "session", "resume") {
		o.Registry.Clear(cfg.NodeID)
		retryTurns := cfg.MaxTurns
		if retryTurns == 0 {
			retryTurns = 30
		}
		retryArgv := o.Provider.BuildCommand(binary, prompt, configPath, retryTurns, modelFlag)
		raw, stderrText, err = o.run(ctx, retryArgv, dir, deadlines, opts.Callback)
		if err != nil {
			return ModelResponse{}, err
		}
		if raw.Error == model.RunErrorTimeout {
			return ModelResponse{Content: "[Error: " + identity.BinaryName + " CLI timed out on retry]", RawResponse: raw}, nil
		}
		o.recordUsage(ctx, cfg, raw)
	}

	if dir != "" {
		after := workspace.Take(dir)
		raw.FileChanges = workspace.Diff(before, after)
	}

	if opts.Callback != nil {
		raw.Streamed = true
	}

	if raw.SessionID != "" {
		o.Registry.Set(cfg.NodeID, raw.SessionID)
		if dir != "" {
			o.Registry.SaveTo(dir)
		}
	}

	resumeSID := raw.SessionID
	if resumeSID == "" {
		resumeSID, _ = o.Registry.Get(cfg.NodeID)
	}
	if resumeSID != "" && len(raw.Result) < 1000 && raw.Error == "" && !isContinuation {
		completionTurns := cfg.MaxTurns
		if completionTurns == 0 {
			completionTurns = 20
		}
		completionArgv := o.Provider.BuildResumeCommand(binary, resumeSID, provider.CompletionPrompt, configPath, completionTurns, modelFlag)
		completionRaw, completionStderr, err := o.run(ctx, completionArgv, dir, deadlines, opts.Callback)
		if err == nil {
			o.recordUsage(ctx, cfg, completionRaw)
			raw = completionRaw
			stderrText = completionStderr
			if raw.SessionID != "" {
				o.Registry.Set(cfg.NodeID, raw.SessionID)
			}
		}
	}

	content := raw.Result
	if content == "" && stderrText != "" {
		content = "[Error]: " + stderrText
	}
	return ModelResponse{Content: content, RawResponse: raw}, nil
}

// run invokes the provider's supervisor loop (structured or plain-text),
// applying the spawn rate limiter first when one is configured.
func (o *Orchestrator) run(ctx context.Context, argv []string, dir string, deadlines supervisor.Deadlines, cb supervisor.Callback) (model.RawResponse, string, error) {
	if o.Limiter != nil {
		if err := o.Limiter.Wait(ctx); err != nil {
			return model.RawResponse{}, "", err
		}
	}
	if o.Provider.UsesPlainText() {
		return supervisor.RunPlainText(ctx, argv, dir, deadlines, o.Provider.NormalizeEvent, cb)
	}
	return supervisor.Run(ctx, argv, dir, deadlines, o.Provider.NormalizeEvent, cb)
}

// writeToolConfig builds the tool-server document and writes it via the
// provider's config variant (temp file, or the settings-file hook for
// providers implementing provider.ConfigHooks), returning a no-op cleanup
// when nothing was written.
func (o *Orchestrator) writeToolConfig(cfg Config, opts CallOptions) (string, func(), error) {
	built := toolserver.Build(cfg.Tooling, toolserver.BuildOptions{
		NodeID: cfg.NodeID, SessionID: opts.SessionID, ServerPort: opts.ServerPort,
		WorkspaceRoot: cfg.WorkspaceRoot, Reporter: o.Reporter,
	})

	if hooks, ok := o.Provider.(provider.ConfigHooks); ok {
		servers := map[string]model.ToolServerEntry{}
		if built != nil {
			servers = built.McpServers
		}
		path, cleanup, err := hooks.CreateConfig(cfg.WorkspaceRoot, servers)
		if err != nil {
			return "", func() {}, err
		}
		if cleanup == nil {
			cleanup = func() {}
		}
		return path, cleanup, nil
	}

	if built == nil {
		return "", func() {}, nil
	}
	doc := o.Provider.WrapToolServerConfig(built.McpServers)
	path, err := toolserver.WriteTempFile(doc)
	if err != nil {
		return "", func() {}, err
	}
	return path, func() { _ = os.Remove(path) }, nil
}

func (o *Orchestrator) recordUsage(ctx context.Context, cfg Config, raw model.RawResponse) {
	if o.Usage == nil || raw.Raw == nil {
		return
	}
	usage := o.Provider.ExtractTokenUsage(raw.Raw)
	if usage.TotalTokens == 0 && usage.InputTokens == 0 && usage.OutputTokens == 0 {
		return
	}
	key := model.UsageKey{NodeID: cfg.NodeID, ModelName: cfg.ModelName, ProviderTag: o.Provider.Identity().Tag}
	if err := o.Usage.RecordUsage(ctx, key, usage); err != nil {
		o.Logger.Warn(ctx, "token usage recording failed", "node_id", cfg.NodeID, "error", err)
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
