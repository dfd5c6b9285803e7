package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/agoraops/agora/agent"
)

// AgentHandler serves the fixed persona roster.
type AgentHandler struct {
	roster *agent.Roster
	logger *zap.Logger
}

// AgentInfo is the API projection of a persona.
type AgentInfo struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Traits    []string `json:"traits,omitempty"`
	Expertise []string `json:"expertise,omitempty"`
}

// NewAgentHandler creates an agent handler for roster.
func NewAgentHandler(roster *agent.Roster, logger *zap.Logger) *AgentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgentHandler{
		roster: roster,
		logger: logger.With(zap.String("component", "agent_handler")),
	}
}

// HandleList returns every persona in roster order.
func (h *AgentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	agents := h.roster.All()
	out := make([]AgentInfo, 0, len(agents))
	for _, a := range agents {
		p := a.Persona()
		out = append(out, AgentInfo{
			ID:        p.ID,
			Name:      p.Name,
			Role:      p.Role,
			Traits:    p.Traits,
			Expertise: p.Expertise,
		})
	}
	WriteSuccess(w, out)
}
