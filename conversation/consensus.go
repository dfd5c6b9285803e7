package conversation

import (
	"fmt"
	"sync"

	"github.com/agoraops/agora/types"
)

// Ledger records the proposals raised during a conversation and the votes
// cast on them. Proposals are kept in insertion order, which also decides
// ties: when several proposals reach the consensus threshold, the earliest
// one wins.
type Ledger struct {
	mu        sync.RWMutex
	proposals map[string]types.Proposal
	order     []string
	votes     map[string][]types.Vote
	voters    map[string]map[string]struct{}
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		proposals: make(map[string]types.Proposal),
		votes:     make(map[string][]types.Vote),
		voters:    make(map[string]map[string]struct{}),
	}
}

// AddProposal registers a proposal. Registering the same proposal ID twice
// fails with a DUPLICATE_PROPOSAL error.
func (l *Ledger) AddProposal(p types.Proposal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.proposals[p.ID]; exists {
		return types.NewError(types.ErrDuplicateProposal,
			fmt.Sprintf("proposal %q already registered", p.ID))
	}
	l.proposals[p.ID] = p
	l.order = append(l.order, p.ID)
	l.voters[p.ID] = make(map[string]struct{})
	return nil
}

// AddVote records a vote against a registered proposal. Voting on an
// unknown proposal fails with UNKNOWN_PROPOSAL; a second vote by the same
// agent on the same proposal fails with DUPLICATE_VOTE and leaves the first
// vote untouched.
func (l *Ledger) AddVote(v types.Vote) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.proposals[v.ProposalID]; !exists {
		return types.NewError(types.ErrUnknownProposal,
			fmt.Sprintf("vote references unknown proposal %q", v.ProposalID))
	}
	if _, voted := l.voters[v.ProposalID][v.AgentID]; voted {
		return types.NewError(types.ErrDuplicateVote,
			fmt.Sprintf("agent %q already voted on proposal %q", v.AgentID, v.ProposalID))
	}
	l.voters[v.ProposalID][v.AgentID] = struct{}{}
	l.votes[v.ProposalID] = append(l.votes[v.ProposalID], v)
	return nil
}

// HasConsensus reports whether the proposal has gathered votes from a strict
// majority of the roster: at least floor(agentCount/2)+1 votes, approvals
// and rejections alike.
func (l *Ledger) HasConsensus(proposalID string, agentCount int) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if agentCount <= 0 {
		return false
	}
	return len(l.votes[proposalID]) >= agentCount/2+1
}

// Proposals returns every registered proposal in insertion order.
func (l *Ledger) Proposals() []types.Proposal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]types.Proposal, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.proposals[id])
	}
	return out
}

// Votes returns the votes recorded for a proposal in the order they were
// cast. The result is a copy.
func (l *Ledger) Votes(proposalID string) []types.Vote {
	l.mu.RLock()
	defer l.mu.RUnlock()

	src := l.votes[proposalID]
	out := make([]types.Vote, len(src))
	copy(out, src)
	return out
}

// Get looks up a proposal by ID.
func (l *Ledger) Get(proposalID string) (types.Proposal, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.proposals[proposalID]
	return p, ok
}
