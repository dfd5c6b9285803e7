package conversation

import (
	"context"
	"time"

	"github.com/agoraops/agora/types"
)

// Status describes where a conversation is in its lifecycle, independent of
// the discussion phase.
type Status string

const (
	// StatusActive means the orchestrator is running the discussion.
	StatusActive Status = "active"
	// StatusWaitingForUser means the run is suspended until the human
	// participant answers an agent's question.
	StatusWaitingForUser Status = "waiting_for_user"
	// StatusCompleted means the run finished with a decision.
	StatusCompleted Status = "completed"
	// StatusNoConsensus means voting finished but no proposal reached the
	// majority threshold.
	StatusNoConsensus Status = "no_consensus"
	// StatusFailed means the run aborted on an unrecoverable error.
	StatusFailed Status = "failed"
)

// Terminal reports whether the status marks the end of a run.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusNoConsensus || s == StatusFailed
}

// EventType identifies the kind of event an orchestrator emits.
type EventType string

const (
	EventMessageAdded    EventType = "message_added"
	EventPhaseChanged    EventType = "phase_changed"
	EventStatusChanged   EventType = "status_changed"
	EventDecisionReached EventType = "decision_reached"
)

// Event is a single observable change in a conversation. Only the fields
// relevant to the event type are populated.
type Event struct {
	Type           EventType      `json:"type"`
	ConversationID string         `json:"conversation_id"`
	Phase          types.Phase    `json:"phase,omitempty"`
	Status         Status         `json:"status,omitempty"`
	Message        *types.Message `json:"message,omitempty"`
	Decision       string         `json:"decision,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Sink receives conversation events. Delivery is best effort: a sink error
// is logged by the orchestrator and never interrupts the run.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, ev Event) error

// Publish calls f.
func (f SinkFunc) Publish(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// MultiSink fans an event out to several sinks in order. Each sink is
// attempted even when an earlier one fails; the first error is returned.
type MultiSink []Sink

// Publish delivers ev to every sink.
func (m MultiSink) Publish(ctx context.Context, ev Event) error {
	var first error
	for _, s := range m {
		if err := s.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
