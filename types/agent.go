package types

import "context"

// AgentState is an introspection snapshot of an agent. Reporting it has no
// side effects.
type AgentState struct {
	AgentID     string `json:"agent_id"`
	IsActive    bool   `json:"is_active"`
	CurrentTask string `json:"current_task,omitempty"`
}

// Contributor is the minimal contract every discussion participant
// implements. The orchestrator drives agents exclusively through this
// interface; persona variants differ only in data, never in code path.
type Contributor interface {
	// ID returns the agent's unique identifier.
	ID() string
	// Contribute produces one contribution for the given context.
	Contribute(ctx context.Context, cc ConversationContext) (string, error)
	// Propose elicits zero or more proposals for the given context.
	Propose(ctx context.Context, cc ConversationContext) ([]Proposal, error)
	// CastVote returns the agent's judgment on a proposal.
	CastVote(ctx context.Context, p Proposal) (Vote, error)
	// ValidateOutput is the agent's self-check gate; contributions that
	// fail it must not enter the transcript.
	ValidateOutput(text string) bool
	// State returns an introspection snapshot.
	State() AgentState
}

// Named is an optional interface for contributors with a display name.
type Named interface {
	Name() string
}
