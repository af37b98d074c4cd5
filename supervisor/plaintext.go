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

// RunPlainText supervises a provider that emits unstructured text instead
// of NDJSON (the Copilot CLI). It shares Deadlines and process-group kill
// semantics with Run, but its event loop is simplified: every non-empty
// line is appended to the accumulator and surfaced as a text_delta, except
// a line that parses as JSON and normalizes to init/result. Such a line is
// not appended or surfaced; it contributes a session id and, for result,
// the terminal text, raw fields and usage instead.
func RunPlainText(ctx context.Context, argv []string, dir string, deadlines Deadlines, normalize Normalizer, cb Callback) (model.RawResponse, string, error) {
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

	pr := &plainRun{cmd: cmd, normalize: normalize, cb: cb, idleTimer: time.NewTimer(deadlines.Idle), overallEnd: time.Now().Add(deadlines.Overall)}
	resp := pr.consume(stdout, deadlines)

	_ = cmd.Wait()
	resp.ReturnCode = exitCode(cmd)

	return resp, stderrBuf.String(), nil
}

type plainRun struct {
	cmd        *exec.Cmd
	normalize  Normalizer
	cb         Callback
	idleTimer  *time.Timer
	overallEnd time.Time

	mu          sync.Mutex
	killed      bool
	classify    string
	sessionID   string
	accumulator strings.Builder
	terminal    string
	terminalRaw map[string]any
	usage       map[string]any
	sawTerminal bool
}

func (pr *plainRun) consume(stdout io.Reader, deadlines Deadlines) model.RawResponse {
	lines := make(chan string, 16)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	overallTimer := time.NewTimer(time.Until(pr.overallEnd))
	defer overallTimer.Stop()
	defer pr.idleTimer.Stop()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return pr.finalize()
			}
			pr.idleTimer.Reset(deadlines.Idle)
			pr.handleLine(line)
			if pr.hasTerminal() {
				pr.killGroup()
				pr.drain(lines)
				return pr.finalize()
			}

		case <-overallTimer.C:
			pr.mu.Lock()
			pr.classify = "timeout"
			pr.mu.Unlock()
			pr.killGroup()
			pr.drain(lines)
			return pr.finalize()

		case <-pr.idleTimer.C:
			pr.mu.Lock()
			pr.classify = "stall"
			pr.mu.Unlock()
			pr.killGroup()
			pr.drain(lines)
			return pr.finalize()
		}
	}
}

func (pr *plainRun) drain(lines <-chan string) {
	for range lines {
	}
}

func (pr *plainRun) hasTerminal() bool {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.sawTerminal
}

func (pr *plainRun) handleLine(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}

	var raw map[string]any
	if json.Unmarshal([]byte(trimmed), &raw) == nil {
		event := pr.normalize(raw)
		pr.mu.Lock()
		defer pr.mu.Unlock()
		switch event.Type {
		case model.EventInit:
			if event.SessionID != "" {
				pr.sessionID = event.SessionID
			}
			return
		case model.EventResult:
			pr.sawTerminal = true
			pr.terminal = event.ResultText
			pr.terminalRaw = event.Raw
			pr.usage = event.Usage
			if event.SessionID != "" {
				pr.sessionID = event.SessionID
			}
			return
		}
	}

	pr.mu.Lock()
	pr.accumulator.WriteString(line)
	pr.accumulator.WriteString("\n")
	pr.emitLocked(EventTextDelta, map[string]any{"text": line})
	pr.mu.Unlock()
}

// emitLocked delivers one callback event synchronously, preserving stdout
// arrival order. The caller holds pr.mu; emitLocked drops it for the
// duration of the call so a slow callback cannot stall the idle timer, then
// reacquires it before returning.
func (pr *plainRun) emitLocked(kind EventKind, payload map[string]any) {
	if pr.cb == nil {
		return
	}
	pr.mu.Unlock()
	pr.cb(kind, payload)
	pr.mu.Lock()
}

func (pr *plainRun) killGroup() {
	pr.mu.Lock()
	if pr.killed {
		pr.mu.Unlock()
		return
	}
	pr.killed = true
	pr.mu.Unlock()
	killProcessGroup(pr.cmd)
}

func (pr *plainRun) finalize() model.RawResponse {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	// EventStallDetected is emitted by the orchestrator, not here: it owns
	// the stall-recovery decision and fires the event exactly once.
	if pr.classify == "stall" {
		return model.RawResponse{Error: model.RunErrorStall, SessionID: pr.sessionID}
	}
	if pr.classify == "timeout" {
		return model.RawResponse{Error: model.RunErrorTimeout}
	}

	result := pr.terminal
	if result == "" {
		result = pr.accumulator.String()
	}
	return model.RawResponse{Result: result, SessionID: pr.sessionID, Raw: pr.terminalRaw, Usage: pr.usage}
}
