package types

import "github.com/google/uuid"

// Proposal is a named, described candidate solution submitted by an agent.
// Immutable once created.
type Proposal struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ProposedBy  string `json:"proposed_by"`
}

// NewProposal creates a proposal, generating an id when none is supplied.
func NewProposal(title, description, proposedBy string) Proposal {
	return Proposal{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		ProposedBy:  proposedBy,
	}
}

// Vote is one agent's approve/reject judgment on a proposal.
// Immutable once recorded.
type Vote struct {
	ProposalID string `json:"proposal_id"`
	AgentID    string `json:"agent_id"`
	Approve    bool   `json:"approve"`
	Reasoning  string `json:"reasoning,omitempty"`
}
