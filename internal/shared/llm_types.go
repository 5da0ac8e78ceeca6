package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a single provider call.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// AgentMeta holds operational metadata for one AI call made on behalf of a
// request (food analysis, meal planning).
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}

// NewAgentMeta stamps usage with the time elapsed since start.
func NewAgentMeta(agent string, usage TokenUsage, start time.Time) AgentMeta {
	return AgentMeta{
		AgentName: agent,
		Usage:     usage,
		Latency:   time.Since(start),
	}
}
