package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/agoraops/agora/conversation"
	"github.com/agoraops/agora/internal/hub"
)

// WSHandler upgrades clients to WebSocket connections that stream a
// conversation's events as they happen. When a journal is configured, the
// conversation's history is replayed to the client before live events.
type WSHandler struct {
	hub     *hub.Hub
	journal *hub.Journal
	service *conversation.Service
	logger  *zap.Logger
}

// NewWSHandler creates a WebSocket handler. journal may be nil.
func NewWSHandler(h *hub.Hub, journal *hub.Journal, service *conversation.Service, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		hub:     h,
		journal: journal,
		service: service,
		logger:  logger.With(zap.String("component", "ws_handler")),
	}
}

// HandleSubscribe upgrades the request and streams events for one
// conversation until the client disconnects.
func (h *WSHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Unknown conversations get a plain 404 before the upgrade; journaled
	// history counts as known even after the run is gone.
	if _, err := h.service.Get(id); err != nil && h.journal == nil {
		WriteError(w, err, h.logger)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket accept failed",
			zap.String("conversation_id", id),
			zap.Error(err))
		return
	}

	ctx := r.Context()

	// First frame confirms the subscription before any event flows.
	hello, _ := json.Marshal(map[string]string{
		"type":            "connection_established",
		"conversation_id": id,
	})
	if err := conn.Write(ctx, websocket.MessageText, hello); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "write failed")
		return
	}

	if h.journal != nil {
		if err := h.replay(ctx, conn, id); err != nil {
			h.logger.Warn("journal replay failed",
				zap.String("conversation_id", id),
				zap.Error(err))
			_ = conn.Close(websocket.StatusInternalError, "replay failed")
			return
		}
	}

	unsubscribe := h.hub.Subscribe(id, conn)
	defer unsubscribe()

	// Drain client frames; the stream ends when the client goes away.
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}

func (h *WSHandler) replay(ctx context.Context, conn *websocket.Conn, id string) error {
	events, err := h.journal.Replay(ctx, id)
	if err != nil {
		return err
	}
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			return err
		}
	}
	return nil
}
