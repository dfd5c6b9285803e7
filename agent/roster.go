package agent

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/agoraops/agora/llm"
	"github.com/agoraops/agora/types"
)

// Roster owns the fixed set of agents for a conversation run. Order is
// significant: phase handlers invoke agents in roster order so later agents
// see earlier agents' output within the same phase.
type Roster struct {
	agents []*Agent
	byID   map[string]*Agent
}

// NewRoster builds agents for the given personas, in order.
func NewRoster(personas []Persona, gateway llm.Gateway, logger *zap.Logger) (*Roster, error) {
	if len(personas) == 0 {
		return nil, fmt.Errorf("roster requires at least one persona")
	}

	r := &Roster{byID: make(map[string]*Agent, len(personas))}
	for _, p := range personas {
		if p.ID == "" {
			return nil, fmt.Errorf("persona %q has no id", p.Name)
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate persona id %q", p.ID)
		}
		a := New(p, gateway, logger)
		r.agents = append(r.agents, a)
		r.byID[p.ID] = a
	}
	return r, nil
}

// NewBuiltinRoster builds the five fixed personas.
func NewBuiltinRoster(gateway llm.Gateway, logger *zap.Logger) *Roster {
	r, err := NewRoster(BuiltinPersonas(), gateway, logger)
	if err != nil {
		// BuiltinPersonas is static and valid.
		panic(err)
	}
	return r
}

// All returns the agents in roster order. The returned slice is a copy.
func (r *Roster) All() []*Agent {
	out := make([]*Agent, len(r.agents))
	copy(out, r.agents)
	return out
}

// Get returns the agent with the given id.
func (r *Roster) Get(id string) (*Agent, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// Size returns the roster size; this is the denominator for the quorum rule.
func (r *Roster) Size() int { return len(r.agents) }

// States returns the introspection snapshot of every agent in roster order.
func (r *Roster) States() []types.AgentState {
	out := make([]types.AgentState, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a.State())
	}
	return out
}
