package models

import "time"

// Decision is the terminal outcome of a run.
type Decision string

const (
	// DecisionComplete indicates the task was accepted as AI-complete.
	DecisionComplete Decision = "COMPLETE"
	// DecisionEscalate indicates the task should be handed to a human.
	DecisionEscalate Decision = "ESCALATE"
)

// Valid returns true if the decision is a known value.
func (d Decision) Valid() bool {
	switch d {
	case DecisionComplete, DecisionEscalate:
		return true
	default:
		return false
	}
}

// Complexity is the task complexity tag extracted from the requirements role.
type Complexity string

const (
	// ComplexitySimple covers simple algorithms and basic functions.
	ComplexitySimple Complexity = "simple"
	// ComplexityMedium covers multi-function implementations with moderate logic.
	ComplexityMedium Complexity = "medium"
	// ComplexityComplex covers complex architectures spanning multiple files.
	ComplexityComplex Complexity = "complex"
	// ComplexityUnknown is the fallback when no tag could be extracted.
	ComplexityUnknown Complexity = "unknown"
)

// Valid returns true if the complexity is a known value.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexitySimple, ComplexityMedium, ComplexityComplex, ComplexityUnknown:
		return true
	default:
		return false
	}
}

// FailureTag describes why a run terminated abnormally.
type FailureTag string

const (
	// FailureNone indicates normal termination.
	FailureNone FailureTag = ""
	// FailureHandoffLimit indicates the max handoff ceiling was hit.
	FailureHandoffLimit FailureTag = "handoff_limit"
	// FailureIterationLimit indicates the max activation ceiling was hit.
	FailureIterationLimit FailureTag = "iteration_limit"
	// FailureRepetitiveHandoff indicates the run was judged to be cycling.
	FailureRepetitiveHandoff FailureTag = "repetitive_handoff"
	// FailureNodeTimeout indicates a single activation exceeded its timeout.
	FailureNodeTimeout FailureTag = "node_timeout"
	// FailureExecutionTimeout indicates the whole run exceeded its timeout.
	FailureExecutionTimeout FailureTag = "execution_timeout"
	// FailureInvocation indicates the model invocation itself failed.
	FailureInvocation FailureTag = "invocation_failed"
)

// TokenUsage holds token counts reported by the model invocation.
type TokenUsage struct {
	// InputTokens is the number of prompt tokens consumed.
	InputTokens int64 `json:"input_tokens"`
	// OutputTokens is the number of completion tokens produced.
	OutputTokens int64 `json:"output_tokens"`
	// TotalTokens is InputTokens + OutputTokens.
	TotalTokens int64 `json:"total_tokens"`
}

// ActivationRecord captures one agent activation within a run.
// Records are immutable once appended to the agent sequence.
type ActivationRecord struct {
	// Role is the role that was activated.
	Role RoleName `json:"role"`
	// Response is the raw response text produced by the role.
	Response string `json:"response"`
	// HandoffTarget is the next role named by the handoff directive, if any.
	HandoffTarget RoleName `json:"handoff_target,omitempty"`
	// HandoffMessage is the message attached to the handoff directive.
	HandoffMessage string `json:"handoff_message,omitempty"`
	// HandoffContext is the structured payload passed to the next role.
	HandoffContext map[string]any `json:"handoff_context,omitempty"`
	// StartedAt is when the activation began.
	StartedAt time.Time `json:"started_at"`
	// Duration is how long the activation took.
	Duration time.Duration `json:"duration"`
	// Usage is the token usage reported for this activation.
	Usage TokenUsage `json:"usage"`
	// Failed indicates the activation did not complete (timeout or error).
	Failed bool `json:"failed,omitempty"`
	// Error holds the failure detail when Failed is true.
	Error string `json:"error,omitempty"`
}

// AgentOutput is the truncated audit view of one role's contribution.
type AgentOutput struct {
	// Response is an excerpt of the role's response text.
	Response string `json:"response"`
	// HandoffMessage is the message the role attached to its handoff.
	HandoffMessage string `json:"handoff_message,omitempty"`
}

// Deliverables holds the extracted work products of a run.
type Deliverables struct {
	// Code is the extracted implementation, empty when no code was produced.
	Code string `json:"code,omitempty"`
}

// RunResult is the terminal aggregate for one swarm run.
// It is created once at run end and never mutated afterwards.
type RunResult struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`
	// Success is true iff the machine terminated normally and the
	// decision was COMPLETE.
	Success bool `json:"success"`
	// TaskDescription is the original task text.
	TaskDescription string `json:"task_description"`
	// FinalResult is the terminal role's response text.
	FinalResult string `json:"final_result"`
	// AgentSequence is the ordered list of activated roles.
	AgentSequence []RoleName `json:"agent_sequence"`
	// Activations is the full ordered activation history.
	Activations []ActivationRecord `json:"-"`
	// AgentOutputs maps each role to its truncated contribution.
	AgentOutputs map[RoleName]AgentOutput `json:"agent_outputs"`
	// Deliverables holds the extracted code, if any.
	Deliverables Deliverables `json:"deliverables"`
	// HandoffCount is len(AgentSequence)-1, or 0 for a single activation.
	HandoffCount int `json:"handoff_count"`
	// ExecutionTimeMS is the wall-clock duration of the run in milliseconds.
	ExecutionTimeMS int64 `json:"execution_time_ms"`
	// TotalTokens is the token usage accumulated across all activations.
	TotalTokens int64 `json:"total_tokens"`
	// FinalDecision is the extracted COMPLETE/ESCALATE decision.
	FinalDecision Decision `json:"final_decision"`
	// QualityScore is the extracted quality score (0-100).
	QualityScore int `json:"quality_score"`
	// Complexity is the extracted complexity tag.
	Complexity Complexity `json:"complexity"`
	// FailureTag describes abnormal termination, empty on normal runs.
	FailureTag FailureTag `json:"failure_tag,omitempty"`
	// Error holds a failure description when the run did not complete.
	Error string `json:"error,omitempty"`
	// Payment is the computed payment for the run.
	Payment *Payment `json:"payment,omitempty"`
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
}
