package model

import "context"

// TokenUsage tracks token counts for a single call, extracted from a
// provider's terminal result event by that provider's ExtractTokenUsage.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int

	// Metadata carries provider-specific extras (e.g. total_cost_usd).
	Metadata map[string]any
}

// UsageKey identifies the (node, model, provider) triple a TokenUsage is
// recorded against.
type UsageKey struct {
	NodeID      string
	ModelName   string
	ProviderTag ProviderTag
}

// UsageAccumulator is the external token-usage sink the call orchestrator
// forwards each run's TokenUsage to. Aggregation and reporting are outside
// this module's scope; this interface is the minimum contract
// the orchestrator imposes on that external collaborator.
type UsageAccumulator interface {
	RecordUsage(ctx context.Context, key UsageKey, usage TokenUsage) error
}
