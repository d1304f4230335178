package swarm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/codecollab/swarm/internal/extract"
	"github.com/codecollab/swarm/internal/llm"
	"github.com/codecollab/swarm/internal/pricing"
	"github.com/codecollab/swarm/pkg/models"
)

// Option configures a Swarm. Use With* functions to create Options.
type Option func(*swarmOptions)

// swarmOptions holds all optional configuration.
type swarmOptions struct {
	roles   map[models.RoleName]Role
	limits  Limits
	logger  *DebugLogger
	emitter *EventEmitter
}

// WithRoles replaces the default role definitions.
func WithRoles(roles map[models.RoleName]Role) Option {
	return func(o *swarmOptions) { o.roles = roles }
}

// WithLimits sets the run bounds.
func WithLimits(limits Limits) Option {
	return func(o *swarmOptions) { o.limits = limits }
}

// WithLogger sets the debug logger.
func WithLogger(logger *DebugLogger) Option {
	return func(o *swarmOptions) { o.logger = logger }
}

// WithEmitter sets the event emitter for progress subscribers.
func WithEmitter(emitter *EventEmitter) Option {
	return func(o *swarmOptions) { o.emitter = emitter }
}

// Swarm runs tasks end-to-end: it drives the handoff state machine,
// extracts structured facts from the terminal output, prices the work,
// and assembles the final run result. Independent runs may execute
// concurrently; each owns its own context store and agent sequence.
type Swarm struct {
	invoker llm.Invoker
	roles   map[models.RoleName]Role
	limits  Limits
	logger  *DebugLogger
	emitter *EventEmitter
}

// New creates a Swarm over the given invoker.
func New(invoker llm.Invoker, opts ...Option) *Swarm {
	options := &swarmOptions{
		roles:  DefaultRoles(),
		limits: DefaultLimits(),
		logger: NopLogger(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Swarm{
		invoker: invoker,
		roles:   options.roles,
		limits:  options.limits.withDefaults(),
		logger:  options.logger,
		emitter: options.emitter,
	}
}

// Events returns the event channel when an emitter is configured, nil
// otherwise.
func (s *Swarm) Events() <-chan Event {
	if s.emitter == nil {
		return nil
	}
	return s.emitter.Events()
}

// Process runs one task through the pipeline and assembles its result.
// All failure modes degrade to data on the RunResult; the returned error
// is non-nil only for unexpected internal faults, and even then the
// partial result is returned alongside it.
func (s *Swarm) Process(ctx context.Context, task string) (result *models.RunResult, err error) {
	runID := uuid.New().String()
	start := time.Now()

	result = &models.RunResult{
		ID:              runID,
		TaskDescription: task,
		StartedAt:       start,
		FinalDecision:   models.DecisionComplete,
		Complexity:      models.ComplexityUnknown,
	}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = fmt.Sprintf("internal error: %v", r)
			result.ExecutionTimeMS = time.Since(start).Milliseconds()
			err = fmt.Errorf("swarm run %s panicked processing %q: %v", runID, excerpt(task), r)
		}
	}()

	if s.invoker == nil {
		return result, fmt.Errorf("swarm run %s: no invoker configured", runID)
	}

	s.logger.Log("run %s started: %s", runID, excerpt(task))
	s.emit(Event{Type: EventRunStarted, RunID: runID, Message: excerpt(task)})

	machine := NewMachine(s.roles, s.invoker, s.limits, s.logger, s.emitter)
	state := machine.Run(ctx, task)

	s.assemble(result, state, start)

	s.logger.Log("run %s finished: success=%t decision=%s payment=$%.2f",
		runID, result.Success, result.FinalDecision, result.Payment.Amount)
	s.emit(Event{Type: EventRunCompleted, RunID: runID, Tag: result.FailureTag})

	return result, nil
}

// assemble turns the machine's run state into the immutable RunResult.
func (s *Swarm) assemble(result *models.RunResult, state *RunState, start time.Time) {
	result.Activations = state.Activations
	result.AgentSequence = state.Sequence()
	result.AgentOutputs = state.Context.Snapshot()
	result.HandoffCount = handoffCount(result.AgentSequence)
	result.ExecutionTimeMS = time.Since(start).Milliseconds()
	result.TotalTokens = state.TotalUsage.TotalTokens
	result.FailureTag = state.FailureTag
	if state.Err != nil {
		result.Error = state.Err.Error()
	}

	terminal := terminalText(state)
	result.FinalResult = terminal

	result.FinalDecision = extract.Decision(terminal)

	if code, ok := extract.Code(terminal, state.Context.Response(models.RoleBuilder)); ok {
		result.Deliverables.Code = code
	}

	result.QualityScore = extract.QualityScore(
		state.Context.Response(models.RoleQuality),
		state.Context.IssuedPayload(models.RoleQuality),
	)
	result.Complexity = extract.Complexity(state.Context.Response(models.RoleRequirements))

	result.Payment = pricing.Calculate(pricing.Inputs{
		Complexity:      result.Complexity,
		QualityScore:    result.QualityScore,
		ExecutionTimeMS: result.ExecutionTimeMS,
		TokensUsed:      result.TotalTokens,
		CodeLines:       extract.CountCodeLines(result.Deliverables.Code),
	})

	result.Success = state.Normal() && result.FinalDecision == models.DecisionComplete
}

// terminalText returns the last successful activation's response.
func terminalText(state *RunState) string {
	for i := len(state.Activations) - 1; i >= 0; i-- {
		if !state.Activations[i].Failed {
			return state.Activations[i].Response
		}
	}
	return ""
}

// handoffCount is len(sequence)-1, or 0 for a single activation.
func handoffCount(sequence []models.RoleName) int {
	if len(sequence) <= 1 {
		return 0
	}
	return len(sequence) - 1
}

func (s *Swarm) emit(event Event) {
	if s.emitter != nil {
		event.Timestamp = time.Now()
		s.emitter.Emit(event)
	}
}

// excerpt shortens a task description for logs.
func excerpt(task string) string {
	const limit = 100
	if len(task) <= limit {
		return task
	}
	return task[:limit] + "..."
}
