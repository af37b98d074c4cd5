// Package accumulator provides UsageAccumulator implementations that record
// per-call token usage against the (node, model, provider) key the call
// orchestrator reports after every run.
package accumulator

import (
	"context"
	"sync"

	"github.com/streamforge/agentcore/model"
)

// Memory is an in-process model.UsageAccumulator, keyed by the same triple
// Redis uses so totals are comparable between the two implementations in
// tests and single-process deployments.
type Memory struct {
	mu     sync.Mutex
	totals map[model.UsageKey]model.TokenUsage
}

// NewMemory returns an empty Memory accumulator.
func NewMemory() *Memory {
	return &Memory{totals: make(map[model.UsageKey]model.TokenUsage)}
}

// RecordUsage adds usage to the running total for key.
func (m *Memory) RecordUsage(_ context.Context, key model.UsageKey, usage model.TokenUsage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.totals[key]
	total.InputTokens += usage.InputTokens
	total.OutputTokens += usage.OutputTokens
	total.TotalTokens += usage.TotalTokens
	m.totals[key] = total
	return nil
}

// Totals returns a snapshot of every key's accumulated usage.
func (m *Memory) Totals() map[model.UsageKey]model.TokenUsage {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[model.UsageKey]model.TokenUsage, len(m.totals))
	for k, v := range m.totals {
		out[k] = v
	}
	return out
}
