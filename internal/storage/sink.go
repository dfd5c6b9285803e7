package storage

import (
	"context"

	"github.com/agoraops/agora/conversation"
)

// Sink persists conversation events as they happen, keeping the database
// view of a conversation in step with the in-memory run.
type Sink struct {
	store *Store
}

// NewSink returns a persistence sink backed by store.
func NewSink(store *Store) *Sink {
	return &Sink{store: store}
}

// Publish writes the event to the database.
func (s *Sink) Publish(ctx context.Context, ev conversation.Event) error {
	switch ev.Type {
	case conversation.EventMessageAdded:
		if ev.Message == nil {
			return nil
		}
		return s.store.AppendMessage(ctx, ev.ConversationID, *ev.Message)
	case conversation.EventPhaseChanged:
		return s.store.UpdatePhase(ctx, ev.ConversationID, string(ev.Phase))
	case conversation.EventStatusChanged:
		return s.store.UpdateStatus(ctx, ev.ConversationID, string(ev.Status))
	case conversation.EventDecisionReached:
		return s.store.SetFinalSummary(ctx, ev.ConversationID, ev.Decision)
	}
	return nil
}
