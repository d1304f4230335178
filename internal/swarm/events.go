package swarm

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/codecollab/swarm/pkg/models"
)

// EventType represents the type of swarm event.
type EventType string

const (
	// EventRunStarted indicates a run has begun.
	EventRunStarted EventType = "run_started"
	// EventAgentStarted indicates a role activation has begun.
	EventAgentStarted EventType = "agent_started"
	// EventAgentCompleted indicates a role activation finished.
	EventAgentCompleted EventType = "agent_completed"
	// EventHandoff indicates control moved from one role to another.
	EventHandoff EventType = "handoff"
	// EventRunTerminated indicates the machine reached the terminated state.
	EventRunTerminated EventType = "run_terminated"
	// EventRunCompleted indicates the final run result was assembled.
	EventRunCompleted EventType = "run_completed"
)

// Event is emitted by the swarm for progress display.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// RunID is the ID of the related run.
	RunID string
	// Role is the role the event concerns, if applicable.
	Role models.RoleName
	// Target is the receiving role for handoff events.
	Target models.RoleName
	// Message provides additional context about the event.
	Message string
	// Tag carries the failure tag for abnormal termination events.
	Tag models.FailureTag
	// Tokens is the token count for activation events.
	Tokens int64
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// EventEmitter handles event emission for the swarm.
// It provides a simple, thread-safe way to emit events to subscribers.
type EventEmitter struct {
	events       chan Event
	droppedCount atomic.Uint64
}

// NewEventEmitter creates a new EventEmitter with the given buffer size.
func NewEventEmitter(bufferSize int) *EventEmitter {
	return &EventEmitter{
		events: make(chan Event, bufferSize),
	}
}

// Emit sends an event to the events channel.
// If the channel is full the event is dropped; progress events are
// advisory and must never block a run.
func (e *EventEmitter) Emit(event Event) {
	select {
	case e.events <- event:
	default:
		count := e.droppedCount.Add(1)
		if count%10 == 1 {
			log.Printf("[swarm] WARNING: event channel full, dropped event (total dropped: %d): type=%s", count, event.Type)
		}
	}
}

// DroppedCount returns the total number of events that have been dropped.
func (e *EventEmitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns a read-only channel of events.
func (e *EventEmitter) Events() <-chan Event {
	return e.events
}

// Close closes the events channel. Call only after the last run finished.
func (e *EventEmitter) Close() {
	close(e.events)
}
