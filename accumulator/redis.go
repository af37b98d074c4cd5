package accumulator

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/streamforge/agentcore/model"
)

// Redis is a model.UsageAccumulator backed by a Redis hash per usage key,
// letting usage survive process restarts and aggregate across gateway
// nodes. Each key's hash carries input_tokens/output_tokens/total_tokens
// fields, incremented atomically with HINCRBY.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis wraps an existing *redis.Client. prefix defaults to
// "tokenusage" when empty.
func NewRedis(rdb *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "tokenusage"
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

// RecordUsage increments the hash fields for key by usage's counts.
func (r *Redis) RecordUsage(ctx context.Context, key model.UsageKey, usage model.TokenUsage) error {
	hashKey := r.hashKey(key)

	pipe := r.rdb.TxPipeline()
	pipe.HIncrBy(ctx, hashKey, "input_tokens", int64(usage.InputTokens))
	pipe.HIncrBy(ctx, hashKey, "output_tokens", int64(usage.OutputTokens))
	pipe.HIncrBy(ctx, hashKey, "total_tokens", int64(usage.TotalTokens))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record token usage: %w", err)
	}
	return nil
}

// Totals reads back the accumulated usage for key.
func (r *Redis) Totals(ctx context.Context, key model.UsageKey) (model.TokenUsage, error) {
	values, err := r.rdb.HGetAll(ctx, r.hashKey(key)).Result()
	if err != nil {
		return model.TokenUsage{}, fmt.Errorf("read token usage: %w", err)
	}
	return model.TokenUsage{
		InputTokens:  atoiOr(values["input_tokens"], 0),
		OutputTokens: atoiOr(values["output_tokens"], 0),
		TotalTokens:  atoiOr(values["total_tokens"], 0),
	}, nil
}

func (r *Redis) hashKey(key model.UsageKey) string {
	return fmt.Sprintf("%s:%s:%s:%s", r.prefix, key.NodeID, key.ModelName, key.ProviderTag)
}

func atoiOr(s string, fallback int) int {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return fallback
	}
	return n
}
