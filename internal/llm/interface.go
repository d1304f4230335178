// Package llm provides the model invocation boundary for swarm roles.
// The orchestration core treats everything behind Invoker as an external
// capability with unbounded latency and untrusted free-form output.
package llm

import (
	"context"

	"github.com/codecollab/swarm/pkg/models"
)

// Usage holds the token and latency metrics reported for one invocation.
type Usage struct {
	// InputTokens is the number of prompt tokens consumed.
	InputTokens int64
	// OutputTokens is the number of completion tokens produced.
	OutputTokens int64
	// LatencyMS is the wall-clock latency of the invocation in milliseconds.
	LatencyMS int64
}

// Total returns input plus output tokens.
func (u Usage) Total() int64 {
	return u.InputTokens + u.OutputTokens
}

// HandoffDirective is an explicit request by a role to pass control.
// The target is untrusted text until the state machine validates it.
type HandoffDirective struct {
	// Target is the role the agent wants to hand off to.
	Target models.RoleName
	// Message is the short handoff message for the target role.
	Message string
	// Context is the structured payload carried to the target role.
	Context map[string]any
}

// Request describes one role activation.
type Request struct {
	// Role is the role being activated.
	Role models.RoleName
	// SystemPrompt is the role's static instruction payload.
	SystemPrompt string
	// Task is the original task description.
	Task string
	// InjectedContext is the accumulated context for this role, if any.
	InjectedContext map[string]any
}

// Result is the outcome of one role activation.
type Result struct {
	// Text is the raw response text.
	Text string
	// Handoff is the explicit handoff directive, nil when the role ended
	// the run.
	Handoff *HandoffDirective
	// Usage is the reported token usage and latency.
	Usage Usage
}

// Invoker produces a response for a role activation.
// Implementations must honor context cancellation; the orchestrator relies
// on it for node-level timeouts.
type Invoker interface {
	Invoke(ctx context.Context, req *Request) (*Result, error)
}
