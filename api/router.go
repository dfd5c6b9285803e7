package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/agoraops/agora/agent"
	"github.com/agoraops/agora/api/handlers"
	"github.com/agoraops/agora/conversation"
	"github.com/agoraops/agora/internal/hub"
	"github.com/agoraops/agora/internal/metrics"
	"github.com/agoraops/agora/internal/storage"
)

// Deps carries everything the router wires together. Store, Journal, and
// Collector may be nil; the corresponding features degrade gracefully.
type Deps struct {
	Service   *conversation.Service
	Roster    *agent.Roster
	Store     *storage.Store
	Hub       *hub.Hub
	Journal   *hub.Journal
	Collector *metrics.Collector
	Version   string
	Logger    *zap.Logger
	// HealthChecks are registered on the health endpoint.
	HealthChecks []handlers.HealthCheck
}

// NewRouter builds the service mux.
func NewRouter(deps Deps) *http.ServeMux {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	conversations := handlers.NewConversationHandler(deps.Service, deps.Store, deps.Collector, logger)
	agents := handlers.NewAgentHandler(deps.Roster, logger)
	health := handlers.NewHealthHandler(deps.Version, logger)
	for _, check := range deps.HealthChecks {
		health.RegisterCheck(check)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/conversations", conversations.HandleCreate)
	mux.HandleFunc("GET /api/conversations", conversations.HandleList)
	mux.HandleFunc("GET /api/conversations/{id}", conversations.HandleGet)
	mux.HandleFunc("DELETE /api/conversations/{id}", conversations.HandleDelete)
	mux.HandleFunc("GET /api/conversations/{id}/messages", conversations.HandleMessages)
	mux.HandleFunc("POST /api/conversations/{id}/messages", conversations.HandleUserMessage)
	mux.HandleFunc("GET /api/agents", agents.HandleList)
	mux.HandleFunc("GET /health", health.HandleHealth)

	if deps.Hub != nil {
		ws := handlers.NewWSHandler(deps.Hub, deps.Journal, deps.Service, logger)
		mux.HandleFunc("GET /api/conversations/{id}/ws", ws.HandleSubscribe)
	}
	if deps.Collector != nil {
		mux.Handle("GET /metrics", deps.Collector.Handler())
	}
	return mux
}
