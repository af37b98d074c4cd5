package supervisor

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/streamforge/agentcore/model"
)

// writeScript creates a temporary executable shell script with body and
// returns its path. The caller must remove it.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	f, err := os.CreateTemp("", "supervisor_script_*.sh")
	require.NoError(t, err)
	_, err = f.WriteString("#!/bin/sh\n" + body)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, os.Chmod(f.Name(), 0o755))
	return f.Name()
}

// claudeLikeNormalize treats raw events as Claude-shaped: system/assistant
// with nested content, and a terminal result.
func claudeLikeNormalize(raw map[string]any) model.NormalizedEvent {
	switch raw["type"] {
	case "system":
		sid, _ := raw["session_id"].(string)
		return model.NormalizedEvent{Type: model.EventInit, SessionID: sid, Raw: raw}
	case "assistant":
		text := ""
		if msg, ok := raw["message"].(map[string]any); ok {
			if blocks, ok := msg["content"].([]any); ok {
				for _, b := range blocks {
					if block, ok := b.(map[string]any); ok {
						if s, ok := block["text"].(string); ok {
							text += s
						}
					}
				}
			}
		}
		return model.NormalizedEvent{Type: model.EventText, Text: text, Raw: raw}
	case "result":
		sid, _ := raw["session_id"].(string)
		result, _ := raw["result"].(string)
		return model.NormalizedEvent{Type: model.EventResult, SessionID: sid, ResultText: result, Raw: raw}
	default:
		return model.NormalizedEvent{Type: model.EventText, Raw: raw}
	}
}

func TestRunNormalCompletion(t *testing.T) {
	script := writeScript(t, `
echo '{"type":"system","session_id":"sess_normal"}'
echo '{"type":"assistant","message":{"content":[{"type":"text","text":"Hello world"}]}}'
echo '{"type":"result","session_id":"sess_normal","result":"All done"}'
`)
	defer os.Remove(script)

	resp, _, err := Run(context.Background(), []string{script}, "", Deadlines{Overall: 30 * time.Second, Idle: 5 * time.Second}, claudeLikeNormalize, nil)
	require.NoError(t, err)
	require.Equal(t, model.RunErrorNone, resp.Error)
	require.Equal(t, "sess_normal", resp.SessionID)
	require.Contains(t, resp.Result, "All done")
}

func TestRunIdleStallPreservesSessionID(t *testing.T) {
	script := writeScript(t, `
echo '{"type":"system","session_id":"sess_stall"}'
echo '{"type":"assistant","message":{"content":[{"type":"text","text":"Starting work..."}]}}'
sleep 30
echo '{"type":"result","session_id":"sess_stall","result":"never appears"}'
`)
	defer os.Remove(script)

	start := time.Now()
	resp, _, err := Run(context.Background(), []string{script}, "", Deadlines{Overall: 30 * time.Second, Idle: 2 * time.Second}, claudeLikeNormalize, nil)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Equal(t, model.RunErrorStall, resp.Error)
	require.Equal(t, "sess_stall", resp.SessionID)
	require.Less(t, elapsed, 10*time.Second)
}

func TestRunActivityResetsIdleTimer(t *testing.T) {
	script := writeScript(t, `
echo '{"type":"system","session_id":"sess_active"}'
sleep 1
echo '{"type":"assistant","message":{"content":[{"type":"text","text":"Step 1"}]}}'
sleep 1
echo '{"type":"assistant","message":{"content":[{"type":"text","text":"Step 2"}]}}'
echo '{"type":"result","session_id":"sess_active","result":"Done after slow work"}'
`)
	defer os.Remove(script)

	resp, _, err := Run(context.Background(), []string{script}, "", Deadlines{Overall: 30 * time.Second, Idle: 3 * time.Second}, claudeLikeNormalize, nil)
	require.NoError(t, err)
	require.Equal(t, model.RunErrorNone, resp.Error)
	require.Contains(t, resp.Result, "Done after slow work")
}

func TestRunOverallTimeoutPriority(t *testing.T) {
	script := writeScript(t, `
echo '{"type":"system","session_id":"sess_timeout"}'
while true; do
  echo '{"type":"assistant","message":{"content":[{"type":"text","text":"working..."}]}}'
  sleep 1
done
`)
	defer os.Remove(script)

	start := time.Now()
	resp, _, err := Run(context.Background(), []string{script}, "", Deadlines{Overall: 2 * time.Second, Idle: 10 * time.Second}, claudeLikeNormalize, nil)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Equal(t, model.RunErrorTimeout, resp.Error)
	require.Less(t, elapsed, 8*time.Second)
}

func TestRunToolCallDeadlineFiresOnStuckTool(t *testing.T) {
	script := writeScript(t, `
echo '{"type":"system","session_id":"sess_tool"}'
echo '{"type":"tool_use","tool_name":"slow_tool","tool_id":"t1"}'
sleep 30
`)
	defer os.Remove(script)

	normalize := func(raw map[string]any) model.NormalizedEvent {
		switch raw["type"] {
		case "system":
			sid, _ := raw["session_id"].(string)
			return model.NormalizedEvent{Type: model.EventInit, SessionID: sid, Raw: raw}
		case "tool_use":
			name, _ := raw["tool_name"].(string)
			id, _ := raw["tool_id"].(string)
			return model.NormalizedEvent{Type: model.EventToolStart, ToolName: name, ToolID: id, Raw: raw}
		default:
			return model.NormalizedEvent{Type: model.EventText, Raw: raw}
		}
	}

	start := time.Now()
	resp, _, err := Run(context.Background(), []string{script}, "", Deadlines{Overall: 30 * time.Second, Idle: 2 * time.Second}, normalize, nil)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Equal(t, model.RunErrorStall, resp.Error)
	require.Less(t, elapsed, 10*time.Second)
}

func TestRunEmitsCallbackEventsInOrder(t *testing.T) {
	script := writeScript(t, `
echo '{"type":"system","session_id":"sess_cb"}'
echo '{"type":"assistant","message":{"content":[{"type":"text","text":"hi"}]}}'
echo '{"type":"result","session_id":"sess_cb","result":"done"}'
`)
	defer os.Remove(script)

	var kinds []EventKind
	cb := func(kind EventKind, _ map[string]any) { kinds = append(kinds, kind) }

	resp, _, err := Run(context.Background(), []string{script}, "", Deadlines{Overall: 10 * time.Second, Idle: 5 * time.Second}, claudeLikeNormalize, cb)
	require.NoError(t, err)
	require.Equal(t, model.RunErrorNone, resp.Error)

	// Callbacks are delivered synchronously from the read loop, in the
	// order their events arrived on stdout: by the time Run returns, every
	// emitted kind is already recorded, in order.
	require.Equal(t, []EventKind{EventTextDelta}, kinds)
}
