package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/agoraops/agora/conversation"
	"github.com/agoraops/agora/internal/metrics"
	"github.com/agoraops/agora/internal/storage"
	"github.com/agoraops/agora/types"
)

// ConversationHandler serves the conversation resource: creating and
// starting discussions, inspecting their state, and feeding user answers
// into a waiting run.
type ConversationHandler struct {
	service   *conversation.Service
	store     *storage.Store
	collector *metrics.Collector
	logger    *zap.Logger
}

// CreateConversationRequest starts a new discussion.
type CreateConversationRequest struct {
	Goal string `json:"goal"`
}

// UserMessageRequest carries the user's answer to a waiting conversation.
type UserMessageRequest struct {
	Content string `json:"content"`
}

// ConversationSummary is the list-view projection of a conversation.
type ConversationSummary struct {
	ID        string    `json:"id"`
	Goal      string    `json:"goal"`
	Status    string    `json:"status"`
	Phase     string    `json:"phase"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ConversationDetail adds the transcript and decision to the summary.
type ConversationDetail struct {
	ConversationSummary
	Messages []MessageView `json:"messages"`
	Decision string        `json:"decision,omitempty"`
}

// MessageView is the serialized transcript entry.
type MessageView struct {
	Sender               string    `json:"sender"`
	Content              string    `json:"content"`
	Type                 string    `json:"type"`
	RequiresUserResponse bool      `json:"requires_user_response,omitempty"`
	Timestamp            time.Time `json:"timestamp,omitempty"`
}

// NewConversationHandler creates a conversation handler. store and
// collector may be nil.
func NewConversationHandler(service *conversation.Service, store *storage.Store, collector *metrics.Collector, logger *zap.Logger) *ConversationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationHandler{
		service:   service,
		store:     store,
		collector: collector,
		logger:    logger.With(zap.String("component", "conversation_handler")),
	}
}

// HandleCreate starts a new conversation for the posted goal.
func (h *ConversationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateConversationRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if req.Goal == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest,
			"goal must not be empty", h.logger)
		return
	}

	// The run is bound to the service's lifetime, not the request's; the
	// service persists the conversation before the run launches.
	id, err := h.service.Start(r.Context(), req.Goal)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	if h.collector != nil {
		h.collector.RecordConversationStarted()
	}

	h.logger.Info("conversation created",
		zap.String("conversation_id", id),
		zap.String("goal", req.Goal))

	WriteCreated(w, ConversationSummary{
		ID:     id,
		Goal:   req.Goal,
		Status: string(conversation.StatusActive),
		Phase:  string(types.PhaseInitialization),
	})
}

// HandleList returns every known conversation.
func (h *ConversationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		recs, err := h.store.ListConversations(r.Context())
		if err != nil {
			WriteError(w, err, h.logger)
			return
		}
		out := make([]ConversationSummary, 0, len(recs))
		for _, rec := range recs {
			out = append(out, ConversationSummary{
				ID:        rec.ID,
				Goal:      rec.GoalDescription,
				Status:    rec.Status,
				Phase:     rec.Phase,
				CreatedAt: rec.CreatedAt,
			})
		}
		WriteSuccess(w, out)
		return
	}

	orchs := h.service.List()
	out := make([]ConversationSummary, 0, len(orchs))
	for _, orch := range orchs {
		out = append(out, summarize(orch))
	}
	WriteSuccess(w, out)
}

// HandleGet returns one conversation with its transcript.
func (h *ConversationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	orch, err := h.service.Get(id)
	if err == nil {
		detail := ConversationDetail{ConversationSummary: summarize(orch)}
		for _, msg := range orch.Transcript() {
			detail.Messages = append(detail.Messages, messageView(msg))
		}
		if decision, ok := orch.Decision(); ok {
			detail.Decision = decision
		}
		WriteSuccess(w, detail)
		return
	}

	// Fall back to storage for conversations from earlier runs.
	if h.store != nil {
		rec, storeErr := h.store.GetConversation(r.Context(), id)
		if storeErr == nil {
			detail := ConversationDetail{
				ConversationSummary: ConversationSummary{
					ID:        rec.ID,
					Goal:      rec.GoalDescription,
					Status:    rec.Status,
					Phase:     rec.Phase,
					CreatedAt: rec.CreatedAt,
				},
				Decision: rec.FinalSummary,
			}
			for _, m := range rec.Messages {
				detail.Messages = append(detail.Messages, MessageView{
					Sender:               m.Sender,
					Content:              m.Content,
					Type:                 m.Type,
					RequiresUserResponse: m.RequiresUserResponse,
					Timestamp:            m.CreatedAt,
				})
			}
			WriteSuccess(w, detail)
			return
		}
	}
	WriteError(w, err, h.logger)
}

// HandleMessages returns just the transcript of a conversation.
func (h *ConversationHandler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	orch, err := h.service.Get(id)
	if err == nil {
		out := make([]MessageView, 0, len(orch.Transcript()))
		for _, msg := range orch.Transcript() {
			out = append(out, messageView(msg))
		}
		WriteSuccess(w, out)
		return
	}

	if h.store != nil {
		if _, storeErr := h.store.GetConversation(r.Context(), id); storeErr != nil {
			WriteError(w, storeErr, h.logger)
			return
		}
		recs, storeErr := h.store.Messages(r.Context(), id)
		if storeErr != nil {
			WriteError(w, storeErr, h.logger)
			return
		}
		out := make([]MessageView, 0, len(recs))
		for _, m := range recs {
			out = append(out, MessageView{
				Sender:               m.Sender,
				Content:              m.Content,
				Type:                 m.Type,
				RequiresUserResponse: m.RequiresUserResponse,
				Timestamp:            m.CreatedAt,
			})
		}
		WriteSuccess(w, out)
		return
	}
	WriteError(w, err, h.logger)
}

// HandleDelete removes a finished conversation. Active runs cannot be
// deleted.
func (h *ConversationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	removed := false
	if err := h.service.Remove(id); err != nil {
		if types.HasCode(err, types.ErrConversationActive) {
			WriteError(w, err, h.logger)
			return
		}
	} else {
		removed = true
	}

	if h.store != nil {
		err := h.store.DeleteConversation(r.Context(), id)
		switch {
		case err == nil:
			removed = true
		case !types.HasCode(err, types.ErrNotFound):
			WriteError(w, err, h.logger)
			return
		}
	}

	if !removed {
		WriteErrorMessage(w, http.StatusNotFound, types.ErrNotFound,
			"conversation "+id+" not found", h.logger)
		return
	}

	h.logger.Info("conversation deleted", zap.String("conversation_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// HandleUserMessage routes the user's answer to a waiting conversation.
func (h *ConversationHandler) HandleUserMessage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req UserMessageRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if req.Content == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest,
			"content must not be empty", h.logger)
		return
	}

	if err := h.service.SubmitUserMessage(r.Context(), id, req.Content); err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, map[string]string{"conversation_id": id})
}

func summarize(orch *conversation.Orchestrator) ConversationSummary {
	return ConversationSummary{
		ID:     orch.ID(),
		Goal:   orch.Goal(),
		Status: string(orch.Status()),
		Phase:  string(orch.Phase()),
	}
}

func messageView(msg types.Message) MessageView {
	return MessageView{
		Sender:               msg.Sender,
		Content:              msg.Content,
		Type:                 string(msg.Type),
		RequiresUserResponse: msg.RequiresUserResponse,
		Timestamp:            msg.Timestamp,
	}
}
