package hub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/agoraops/agora/conversation"
)

// subscriber is one WebSocket connection watching a conversation. Writes
// go through a mutex because WebSocket connections do not support
// concurrent writes.
type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) send(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Write(ctx, websocket.MessageText, data)
}

// Hub tracks WebSocket subscribers per conversation and broadcasts
// conversation events to them as JSON. A subscriber that fails a write is
// dropped.
type Hub struct {
	logger *zap.Logger

	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

// New returns an empty hub.
func New(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger: logger.With(zap.String("component", "hub")),
		subs:   make(map[string]map[*subscriber]struct{}),
	}
}

// Subscribe registers conn for events of one conversation and returns an
// unsubscribe function. The caller keeps ownership of the connection and
// the read side.
func (h *Hub) Subscribe(conversationID string, conn *websocket.Conn) func() {
	sub := &subscriber{conn: conn}

	h.mu.Lock()
	set, ok := h.subs[conversationID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[conversationID] = set
	}
	set[sub] = struct{}{}
	count := len(set)
	h.mu.Unlock()

	h.logger.Info("subscriber added",
		zap.String("conversation_id", conversationID),
		zap.Int("subscribers", count))

	return func() { h.drop(conversationID, sub) }
}

// SubscriberCount returns the number of live subscribers for a
// conversation.
func (h *Hub) SubscriberCount(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[conversationID])
}

// Publish broadcasts ev to every subscriber of its conversation. Implements
// conversation.Sink; a failed write drops that subscriber but never fails
// the publish.
func (h *Hub) Publish(ctx context.Context, ev conversation.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	h.mu.RLock()
	targets := make([]*subscriber, 0, len(h.subs[ev.ConversationID]))
	for sub := range h.subs[ev.ConversationID] {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		if err := sub.send(ctx, data); err != nil {
			h.logger.Warn("dropping subscriber after failed write",
				zap.String("conversation_id", ev.ConversationID),
				zap.Error(err))
			h.drop(ev.ConversationID, sub)
		}
	}
	return nil
}

// Close closes every subscriber connection.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.subs {
		for sub := range set {
			_ = sub.conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
		delete(h.subs, id)
	}
}

func (h *Hub) drop(conversationID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[conversationID]
	if !ok {
		return
	}
	if _, present := set[sub]; !present {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, conversationID)
	}
	_ = sub.conn.Close(websocket.StatusNormalClosure, "unsubscribed")
}
