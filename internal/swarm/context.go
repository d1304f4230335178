package swarm

import (
	"github.com/codecollab/swarm/internal/llm"
	"github.com/codecollab/swarm/pkg/models"
)

// ExcerptLimit is the maximum contribution length kept in snapshots.
const ExcerptLimit = 200

// contextEntry holds one role's latest contribution.
type contextEntry struct {
	response       string
	handoffMessage string
	issuedPayload  map[string]any
}

// ContextStore accumulates, per run, what each role contributed and what
// each role received. It is append-only during a run: re-activation of a
// role overwrites that role's entry, nothing is ever deleted. The store
// is owned by a single run and is not safe for concurrent use.
type ContextStore struct {
	task     string
	entries  map[models.RoleName]contextEntry
	received map[models.RoleName]map[string]any
}

// NewContextStore creates the context store for one run.
func NewContextStore(task string) *ContextStore {
	return &ContextStore{
		task:     task,
		entries:  make(map[models.RoleName]contextEntry),
		received: make(map[models.RoleName]map[string]any),
	}
}

// Task returns the immutable task description for the run.
func (s *ContextStore) Task() string {
	return s.task
}

// Record stores a role's response and the handoff it issued, if any.
// The latest entry wins when a role is re-activated.
func (s *ContextStore) Record(role models.RoleName, response string, handoff *llm.HandoffDirective) {
	entry := contextEntry{response: response}
	if handoff != nil {
		entry.handoffMessage = handoff.Message
		entry.issuedPayload = handoff.Context
	}
	s.entries[role] = entry
}

// SetReceived records the payload handed to a role. Applied only on
// validated handoffs; abandoned activations never reach this.
func (s *ContextStore) SetReceived(role models.RoleName, payload map[string]any) {
	if payload == nil {
		return
	}
	s.received[role] = payload
}

// Received returns the latest payload handed to a role, or nil.
func (s *ContextStore) Received(role models.RoleName) map[string]any {
	return s.received[role]
}

// Response returns a role's latest raw response text, or "".
func (s *ContextStore) Response(role models.RoleName) string {
	return s.entries[role].response
}

// IssuedPayload returns the handoff payload a role last issued, or nil.
func (s *ContextStore) IssuedPayload(role models.RoleName) map[string]any {
	return s.entries[role].issuedPayload
}

// Snapshot returns a read-only audit view of the store, truncating each
// contribution to ExcerptLimit characters for display.
func (s *ContextStore) Snapshot() map[models.RoleName]models.AgentOutput {
	out := make(map[models.RoleName]models.AgentOutput, len(s.entries))
	for role, entry := range s.entries {
		out[role] = models.AgentOutput{
			Response:       truncate(entry.response, ExcerptLimit),
			HandoffMessage: entry.handoffMessage,
		}
	}
	return out
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
