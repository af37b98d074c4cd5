// Package supervisor launches a child in its own process group, consumes
// its NDJSON stream line by line under three independent liveness
// deadlines, and classifies termination as clean, timed out, or stalled.
package supervisor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/streamforge/agentcore/model"
)

// EventKind tags the payload shape delivered to a Callback.
type EventKind string

const (
	EventTextDelta     EventKind = "text_delta"
	EventToolStart     EventKind = "tool_start"
	EventToolEnd       EventKind = "tool_end"
	EventStallDetected EventKind = "stall_detected"
)

// Callback receives normalized progress events, invoked synchronously from
// the read loop in the order their events arrived on stdout: text_delta
// carries "text"; tool_start carries "name"/"input"/"id"; tool_end
// additionally carries "result". Run and RunPlainText never emit
// stall_detected themselves; that is the orchestrator's call to make once
// it decides whether to attempt recovery.
type Callback func(kind EventKind, payload map[string]any)

// maxToolResultChars is the truncation limit applied to tool-result
// strings before they reach the callback.
const maxToolResultChars = 200

// Normalizer converts one raw NDJSON line (already decoded into a generic
// map) into the core's uniform event shape. Every provider adapter
// supplies its own.
type Normalizer func(raw map[string]any) model.NormalizedEvent

// Deadlines bounds one supervised run.
type Deadlines struct {
	Overall time.Duration // T_total
	Idle    time.Duration // T_idle, also used as the per-tool-call bound
}

// Run launches argv in dir under its own process group, streams its
// stdout through normalize, and returns the terminal RawResponse together
// with any captured stderr text. Run never returns a Go error for process
// or protocol failures — those surface as RawResponse.Error; the error
// return is reserved for failure to even start the child.
func Run(ctx context.Context, argv []string, dir string, deadlines Deadlines, normalize Normalizer, cb Callback) (model.RawResponse, string, error) {
	if len(argv) == 0 {
		return model.RawResponse{}, "", errEmptyArgv
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.SysProcAttr = processGroupAttr()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return model.RawResponse{}, "", err
	}
	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	if err := cmd.Start(); err != nil {
		return model.RawResponse{}, "", err
	}

	r := &run{
		cmd:        cmd,
		normalize:  normalize,
		cb:         cb,
		deadlines:  deadlines,
		idleTimer:  time.NewTimer(deadlines.Idle),
		overallEnd: time.Now().Add(deadlines.Overall),
	}
	resp := r.consume(stdout)

	_ = cmd.Wait()
	resp.ReturnCode = exitCode(cmd)

	return resp, stderrBuf.String(), nil
}

type errString string

func (e errString) Error() string { return string(e) }

const errEmptyArgv = errString("supervisor: empty argv")

// run holds the mutable state of a single supervised invocation.
type run struct {
	cmd       *exec.Cmd
	normalize Normalizer
	cb        Callback

	deadlines  Deadlines
	idleTimer  *time.Timer
	overallEnd time.Time

	mu          sync.Mutex
	killed      bool
	classify    string // "", "timeout", "stall"
	sessionID   string
	accumulator strings.Builder
	pendingTool *pendingTool
	terminalRaw map[string]any
	usage       map[string]any
	sawTerminal bool
}

type pendingTool struct {
	name    string
	input   map[string]any
	id      string
	started time.Time
}

// consume runs the read loop and the deadline watchers concurrently, and
// assembles the final RawResponse once the stream ends (the child exited,
// or a deadline killed the group and the pipe closed).
func (r *run) consume(stdout io.Reader) model.RawResponse {
	lines := make(chan string, 16)
	done := make(chan struct{})

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	overallTimer := time.NewTimer(time.Until(r.overallEnd))
	defer overallTimer.Stop()
	defer r.idleTimer.Stop()

	toolDeadline := make(chan struct{})
	var toolDeadlineTimer *time.Timer

	armToolDeadline := func() {
		if toolDeadlineTimer != nil {
			toolDeadlineTimer.Stop()
		}
		toolDeadlineTimer = time.AfterFunc(r.deadlines.Idle, func() {
			select {
			case toolDeadline <- struct{}{}:
			case <-done:
			}
		})
	}
	disarmToolDeadline := func() {
		if toolDeadlineTimer != nil {
			toolDeadlineTimer.Stop()
			toolDeadlineTimer = nil
		}
	}

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				close(done)
				return r.finalize()
			}
			if r.handleLine(line, armToolDeadline, disarmToolDeadline) {
				r.idleTimer.Reset(r.deadlines.Idle)
			}
			if r.hasTerminal() {
				r.killGroup()
				r.drain(lines)
				close(done)
				return r.finalize()
			}

		case <-overallTimer.C:
			r.mu.Lock()
			r.classify = "timeout"
			r.mu.Unlock()
			r.killGroup()
			r.drain(lines)
			close(done)
			return r.finalize()

		case <-r.idleTimer.C:
			r.mu.Lock()
			r.classify = "stall"
			r.mu.Unlock()
			r.killGroup()
			r.drain(lines)
			close(done)
			return r.finalize()

		case <-toolDeadline:
			r.mu.Lock()
			stillPending := r.pendingTool != nil && time.Since(r.pendingTool.started) >= r.deadlines.Idle
			if stillPending {
				r.classify = "stall"
			}
			r.mu.Unlock()
			if stillPending {
				r.killGroup()
				r.drain(lines)
				close(done)
				return r.finalize()
			}
		}
	}
}

func (r *run) drain(lines <-chan string) {
	for range lines {
		// discard: the group is dead, nothing left to normalize
	}
}

func (r *run) hasTerminal() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sawTerminal
}

// handleLine processes one stdout line and reports whether it carried a
// meaningful event (see model.NormalizedEvent.IsMeaningful), i.e. whether
// it should reset the idle deadline.
func (r *run) handleLine(line string, armTool, disarmTool func()) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return false // malformed line: silently skip
	}
	event := r.normalize(raw)

	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Type {
	case model.EventInit:
		if event.SessionID != "" {
			r.sessionID = event.SessionID
		}

	case model.EventText:
		if event.Text == "" {
			return false
		}
		r.accumulator.WriteString(event.Text)
		r.emitLocked(EventTextDelta, map[string]any{"text": event.Text})
		if r.pendingTool != nil {
			r.endPendingToolLocked("")
			disarmTool()
		}

	case model.EventToolStart:
		if r.pendingTool != nil {
			r.endPendingToolLocked("")
		}
		r.pendingTool = &pendingTool{name: event.ToolName, input: event.ToolInput, id: event.ToolID, started: time.Now()}
		armTool()
		r.emitLocked(EventToolStart, map[string]any{"name": event.ToolName, "input": event.ToolInput, "id": event.ToolID})

	case model.EventToolEnd:
		r.endPendingToolLocked(event.ToolResult)
		disarmTool()

	case model.EventResult:
		if r.pendingTool != nil {
			r.endPendingToolLocked("")
			disarmTool()
		}
		r.sawTerminal = true
		r.terminalRaw = event.Raw
		r.usage = event.Usage
		if event.ResultText != "" {
			r.accumulator.WriteString(event.ResultText)
		}
		if event.SessionID != "" {
			r.sessionID = event.SessionID
		}

	case model.EventError:
		r.accumulator.WriteString("[Error]: " + event.Text)
	}
	return event.IsMeaningful()
}

func (r *run) endPendingToolLocked(result string) {
	if r.pendingTool == nil {
		return
	}
	truncated := result
	if len(truncated) > maxToolResultChars {
		truncated = truncated[:maxToolResultChars]
	}
	r.emitLocked(EventToolEnd, map[string]any{
		"name": r.pendingTool.name, "input": r.pendingTool.input, "id": r.pendingTool.id, "result": truncated,
	})
	r.pendingTool = nil
}

// emitLocked delivers one callback event. The caller holds r.mu; emitLocked
// drops it for the duration of the call so a slow callback cannot stall the
// read loop's idle timer, then reacquires it before returning, preserving
// stdout arrival order (the spec requires callbacks fire in that order).
func (r *run) emitLocked(kind EventKind, payload map[string]any) {
	if r.cb == nil {
		return
	}
	r.mu.Unlock()
	r.cb(kind, payload)
	r.mu.Lock()
}

func (r *run) killGroup() {
	r.mu.Lock()
	if r.killed {
		r.mu.Unlock()
		return
	}
	r.killed = true
	r.mu.Unlock()
	killProcessGroup(r.cmd)
}

func (r *run) finalize() model.RawResponse {
	r.mu.Lock()
	defer r.mu.Unlock()

	// EventStallDetected is emitted by the orchestrator, not here: it owns
	// the stall-recovery decision and fires the event exactly once.
	if r.classify == "stall" {
		return model.RawResponse{Error: model.RunErrorStall, SessionID: r.sessionID}
	}
	if r.classify == "timeout" {
		return model.RawResponse{Error: model.RunErrorTimeout}
	}

	resultText := r.accumulator.String()
	if r.sawTerminal {
		resp := rawResponseFromTerminal(r.terminalRaw)
		resp.Usage = r.usage
		resp.SessionID = firstNonEmpty(resp.SessionID, r.sessionID)
		if resp.Result == "" {
			resp.Result = resultText
		}
		return resp
	}

	return model.RawResponse{Result: resultText, SessionID: r.sessionID}
}

func rawResponseFromTerminal(raw map[string]any) model.RawResponse {
	resp := model.RawResponse{Raw: raw}
	if s, ok := raw["result"].(string); ok {
		resp.Result = s
	}
	if s, ok := raw["session_id"].(string); ok {
		resp.SessionID = s
	}
	if s, ok := raw["error"].(string); ok && s != "" {
		resp.Error = model.RunError(s)
	}
	return resp
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}
