package swarm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/codecollab/swarm/internal/llm"
	"github.com/codecollab/swarm/pkg/models"
)

// Limits bounds a single run. Zero values are replaced with defaults.
// The repetitive-handoff constants are empirically tuned; they are
// exposed as configuration rather than assumed optimal.
type Limits struct {
	// MaxHandoffs is the hard ceiling on transitions between roles.
	MaxHandoffs int
	// MaxIterations is the ceiling on total activations, covering self-loops.
	MaxIterations int
	// ExecutionTimeout is the wall-clock ceiling for the whole run.
	ExecutionTimeout time.Duration
	// NodeTimeout is the ceiling for a single activation.
	NodeTimeout time.Duration
	// RepetitiveWindow is the sliding window of recent role names checked
	// for cycling.
	RepetitiveWindow int
	// RepetitiveMinUnique is the minimum distinct roles required in a full
	// window.
	RepetitiveMinUnique int
}

// DefaultLimits returns the default run bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxHandoffs:         10,
		MaxIterations:       10,
		ExecutionTimeout:    180 * time.Second,
		NodeTimeout:         90 * time.Second,
		RepetitiveWindow:    5,
		RepetitiveMinUnique: 3,
	}
}

// withDefaults fills zero fields from DefaultLimits.
func (l Limits) withDefaults() Limits {
	def := DefaultLimits()
	if l.MaxHandoffs <= 0 {
		l.MaxHandoffs = def.MaxHandoffs
	}
	if l.MaxIterations <= 0 {
		l.MaxIterations = def.MaxIterations
	}
	if l.ExecutionTimeout <= 0 {
		l.ExecutionTimeout = def.ExecutionTimeout
	}
	if l.NodeTimeout <= 0 {
		l.NodeTimeout = def.NodeTimeout
	}
	if l.RepetitiveWindow <= 0 {
		l.RepetitiveWindow = def.RepetitiveWindow
	}
	if l.RepetitiveMinUnique <= 0 {
		l.RepetitiveMinUnique = def.RepetitiveMinUnique
	}
	return l
}

// TransitionKind tags the outcome of one activation step.
type TransitionKind string

const (
	// TransitionHandoff moves control to the directive's target role.
	TransitionHandoff TransitionKind = "handoff"
	// TransitionTerminate ends the run normally (no directive emitted).
	TransitionTerminate TransitionKind = "terminate"
	// TransitionTimeout ends the run on a node or run timeout.
	TransitionTimeout TransitionKind = "timeout"
	// TransitionBoundExceeded ends the run on a violated bound.
	TransitionBoundExceeded TransitionKind = "bound_exceeded"
	// TransitionFailure ends the run on an invocation failure.
	TransitionFailure TransitionKind = "failure"
)

// Transition is the validated outcome of one activation. Raw handoff
// directives are never trusted as control flow; they become a Transition
// only after the bound checks pass.
type Transition struct {
	// Kind is the transition tag.
	Kind TransitionKind
	// Target is the next role for handoff transitions.
	Target models.RoleName
	// Tag is the failure tag for abnormal transitions.
	Tag models.FailureTag
	// Err is the underlying error for timeout/failure transitions.
	Err error
}

// RunState is the machine's output: the activation history, the context
// store, and how the run ended.
type RunState struct {
	// Activations is the ordered agent sequence.
	Activations []models.ActivationRecord
	// Context is the run's shared context store.
	Context *ContextStore
	// FailureTag is empty for normal termination.
	FailureTag models.FailureTag
	// Err is the failure detail for abnormal termination.
	Err error
	// TotalUsage is the token usage accumulated across activations.
	TotalUsage models.TokenUsage
}

// Normal reports whether the machine terminated without a failure tag.
func (r *RunState) Normal() bool {
	return r.FailureTag == models.FailureNone
}

// Sequence returns the ordered role names of the agent sequence.
func (r *RunState) Sequence() []models.RoleName {
	seq := make([]models.RoleName, len(r.Activations))
	for i, a := range r.Activations {
		seq[i] = a.Role
	}
	return seq
}

// Machine drives the sequence of agent activations under explicit bounds.
type Machine struct {
	roles   map[models.RoleName]Role
	invoker llm.Invoker
	limits  Limits
	logger  *DebugLogger
	emitter *EventEmitter
}

// NewMachine creates a handoff state machine over the given roles.
func NewMachine(roles map[models.RoleName]Role, invoker llm.Invoker, limits Limits, logger *DebugLogger, emitter *EventEmitter) *Machine {
	return &Machine{
		roles:   roles,
		invoker: invoker,
		limits:  limits.withDefaults(),
		logger:  logger,
		emitter: emitter,
	}
}

// Run executes one task through the pipeline, starting at the initial
// role and ending at the implicit terminated state. It always returns a
// RunState; failures are recorded there, not raised.
func (m *Machine) Run(ctx context.Context, task string) *RunState {
	state := &RunState{Context: NewContextStore(task)}

	runCtx, cancel := context.WithTimeout(ctx, m.limits.ExecutionTimeout)
	defer cancel()

	current := models.InitialRole
	for {
		if len(state.Activations) >= m.limits.MaxIterations {
			m.terminate(state, models.FailureIterationLimit, nil)
			return state
		}

		record, result := m.activate(runCtx, current, state.Context)
		state.Activations = append(state.Activations, record)

		if record.Failed {
			// Abandoned activations contribute nothing to the run
			// context; only the failed record is preserved.
			m.terminate(state, failureTagFor(runCtx, record), errors.New(record.Error))
			return state
		}

		state.TotalUsage.InputTokens += record.Usage.InputTokens
		state.TotalUsage.OutputTokens += record.Usage.OutputTokens
		state.TotalUsage.TotalTokens = state.TotalUsage.InputTokens + state.TotalUsage.OutputTokens

		state.Context.Record(current, result.Text, result.Handoff)

		tr := m.decide(state, result)
		m.logTransition(current, tr)

		switch tr.Kind {
		case TransitionHandoff:
			state.Context.SetReceived(tr.Target, result.Handoff.Context)
			m.emit(Event{
				Type:    EventHandoff,
				Role:    current,
				Target:  tr.Target,
				Message: result.Handoff.Message,
			})
			current = tr.Target

		case TransitionTerminate:
			m.emit(Event{Type: EventRunTerminated, Role: current})
			return state

		default:
			m.terminate(state, tr.Tag, tr.Err)
			return state
		}
	}
}

// activate invokes one role under the node timeout and returns its
// activation record plus the raw result when successful.
func (m *Machine) activate(runCtx context.Context, role models.RoleName, store *ContextStore) (models.ActivationRecord, *llm.Result) {
	record := models.ActivationRecord{
		Role:      role,
		StartedAt: time.Now(),
	}

	m.emit(Event{Type: EventAgentStarted, Role: role})

	nodeCtx, cancel := context.WithTimeout(runCtx, m.limits.NodeTimeout)
	defer cancel()

	result, err := m.invoker.Invoke(nodeCtx, &llm.Request{
		Role:            role,
		SystemPrompt:    m.roles[role].SystemPrompt,
		Task:            store.Task(),
		InjectedContext: store.Received(role),
	})
	record.Duration = time.Since(record.StartedAt)

	if err != nil {
		record.Failed = true
		record.Error = err.Error()
		return record, nil
	}

	record.Response = result.Text
	record.Usage = models.TokenUsage{
		InputTokens:  result.Usage.InputTokens,
		OutputTokens: result.Usage.OutputTokens,
		TotalTokens:  result.Usage.Total(),
	}
	if result.Handoff != nil {
		record.HandoffTarget = result.Handoff.Target
		record.HandoffMessage = result.Handoff.Message
		record.HandoffContext = result.Handoff.Context
	}

	m.emit(Event{Type: EventAgentCompleted, Role: role, Tokens: record.Usage.TotalTokens})
	return record, result
}

// decide validates the raw activation outcome against the bound policy
// and produces the transition to apply. The handoff directive is data
// until it passes these checks.
func (m *Machine) decide(state *RunState, result *llm.Result) Transition {
	if repetitiveHandoff(state.Sequence(), m.limits.RepetitiveWindow, m.limits.RepetitiveMinUnique) {
		return Transition{Kind: TransitionBoundExceeded, Tag: models.FailureRepetitiveHandoff}
	}

	if result.Handoff == nil {
		return Transition{Kind: TransitionTerminate}
	}

	target := result.Handoff.Target
	if !target.Valid() {
		// A directive naming a role outside the fixed set cannot
		// transition anywhere; the run ends as if no directive was given.
		m.log("handoff to unknown role %q ignored", target)
		return Transition{Kind: TransitionTerminate}
	}

	if len(state.Activations) > m.limits.MaxHandoffs {
		return Transition{Kind: TransitionBoundExceeded, Tag: models.FailureHandoffLimit}
	}

	return Transition{Kind: TransitionHandoff, Target: target}
}

// repetitiveHandoff reports whether the last window of role names shows
// cycling: a full window with fewer distinct roles than the minimum.
// This guards against two roles endlessly handing off to each other.
func repetitiveHandoff(sequence []models.RoleName, window, minUnique int) bool {
	if len(sequence) < window {
		return false
	}

	distinct := make(map[models.RoleName]struct{}, minUnique)
	for _, role := range sequence[len(sequence)-window:] {
		distinct[role] = struct{}{}
	}
	return len(distinct) < minUnique
}

// failureTagFor classifies a failed activation by cause. The run deadline
// takes precedence: when it has expired, the node deadline firing at the
// same moment is not the real cause.
func failureTagFor(runCtx context.Context, record models.ActivationRecord) models.FailureTag {
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return models.FailureExecutionTimeout
	}
	if strings.Contains(record.Error, "deadline exceeded") {
		return models.FailureNodeTimeout
	}
	return models.FailureInvocation
}

// terminate records an abnormal end of run.
func (m *Machine) terminate(state *RunState, tag models.FailureTag, err error) {
	state.FailureTag = tag
	state.Err = err
	m.log("run terminated: tag=%s err=%v", tag, err)
	m.emit(Event{Type: EventRunTerminated, Tag: tag})
}

func (m *Machine) logTransition(from models.RoleName, tr Transition) {
	switch tr.Kind {
	case TransitionHandoff:
		m.log("handoff %s -> %s", from, tr.Target)
	case TransitionTerminate:
		m.log("%s ended the run", from)
	default:
		m.log("%s transition %s (tag=%s)", from, tr.Kind, tr.Tag)
	}
}

func (m *Machine) log(format string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Log(format, args...)
	}
}

func (m *Machine) emit(event Event) {
	if m.emitter != nil {
		event.Timestamp = time.Now()
		m.emitter.Emit(event)
	}
}
