package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/agoraops/agora/llm"
	"github.com/agoraops/agora/types"
)

// Agent is one discussion participant. It is immutable after construction
// apart from the introspection task label; the orchestrator owns the roster
// exclusively for the lifetime of a conversation run.
type Agent struct {
	persona Persona
	gateway llm.Gateway
	logger  *zap.Logger

	mu          sync.RWMutex
	currentTask string
}

// New creates an agent for the given persona, backed by the given gateway.
func New(persona Persona, gateway llm.Gateway, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		persona: persona,
		gateway: gateway,
		logger:  logger.With(zap.String("component", "agent"), zap.String("agent_id", persona.ID)),
	}
}

// ID implements types.Contributor.
func (a *Agent) ID() string { return a.persona.ID }

// Name implements types.Named.
func (a *Agent) Name() string { return a.persona.Name }

// Role returns the persona's role label.
func (a *Agent) Role() string { return a.persona.Role }

// Persona returns the persona value the agent was built from.
func (a *Agent) Persona() Persona { return a.persona }

// Contribute builds a single prompt from the persona instructions, the goal
// and the rendered transcript, passes it to the gateway, and returns the
// generated text trimmed. A gateway failure surfaces as a GENERATION_FAILED
// error; the agent never substitutes fabricated text.
func (a *Agent) Contribute(ctx context.Context, cc types.ConversationContext) (string, error) {
	prompt := a.buildContributionPrompt(cc)

	a.setTask("contributing")
	defer a.clearTask()

	text, err := a.gateway.Generate(ctx, prompt)
	if err != nil {
		return "", types.NewError(types.ErrGeneration,
			fmt.Sprintf("agent %s: generation failed", a.persona.ID)).
			WithCause(err).
			WithRetryable(llm.IsRetryable(err))
	}

	return strings.TrimSpace(text), nil
}

// Propose elicits zero or more proposals for the current context. The
// gateway response is parsed as TITLE/DESCRIPTION blocks; malformed blocks
// are skipped rather than invented.
func (a *Agent) Propose(ctx context.Context, cc types.ConversationContext) ([]types.Proposal, error) {
	prompt := a.buildProposalPrompt(cc)

	a.setTask("proposing")
	defer a.clearTask()

	text, err := a.gateway.Generate(ctx, prompt)
	if err != nil {
		return nil, types.NewError(types.ErrGeneration,
			fmt.Sprintf("agent %s: proposal generation failed", a.persona.ID)).
			WithCause(err).
			WithRetryable(llm.IsRetryable(err))
	}

	proposals := ParseProposals(text, a.persona.ID)
	a.logger.Debug("proposals parsed", zap.Int("count", len(proposals)))
	return proposals, nil
}

// CastVote asks the gateway for a reasoned APPROVE/REJECT verdict on the
// proposal and parses it into a vote.
func (a *Agent) CastVote(ctx context.Context, p types.Proposal) (types.Vote, error) {
	prompt := a.buildVotePrompt(p)

	a.setTask("voting")
	defer a.clearTask()

	text, err := a.gateway.Generate(ctx, prompt)
	if err != nil {
		return types.Vote{}, types.NewError(types.ErrGeneration,
			fmt.Sprintf("agent %s: vote generation failed", a.persona.ID)).
			WithCause(err).
			WithRetryable(llm.IsRetryable(err))
	}

	approve, reasoning := ParseVerdict(text)
	return types.Vote{
		ProposalID: p.ID,
		AgentID:    a.persona.ID,
		Approve:    approve,
		Reasoning:  reasoning,
	}, nil
}

// ValidateOutput is the agent's self-check gate: non-empty trimmed text,
// plus the persona's length ceiling when one is set. Contributions failing
// it must be discarded, never appended to the transcript.
func (a *Agent) ValidateOutput(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if a.persona.MaxResponseLen > 0 && utf8.RuneCountInString(trimmed) > a.persona.MaxResponseLen {
		return false
	}
	return true
}

// State implements types.Contributor. Introspection only, no side effects.
func (a *Agent) State() types.AgentState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return types.AgentState{
		AgentID:     a.persona.ID,
		IsActive:    true,
		CurrentTask: a.currentTask,
	}
}

func (a *Agent) setTask(task string) {
	a.mu.Lock()
	a.currentTask = task
	a.mu.Unlock()
}

func (a *Agent) clearTask() {
	a.mu.Lock()
	a.currentTask = ""
	a.mu.Unlock()
}

func (a *Agent) buildContributionPrompt(cc types.ConversationContext) string {
	var b strings.Builder
	b.WriteString(a.persona.SystemPrompt)
	b.WriteString("\n\nGoal: ")
	b.WriteString(cc.Goal)
	b.WriteString("\n\nConversation so far:\n")
	b.WriteString(cc.RenderTranscript())
	b.WriteString("\n\nRespond in character with your next contribution. ")
	b.WriteString("If you cannot proceed without information from the human participant, ")
	b.WriteString("start a line with \"" + UserQuestionMarker + "\" followed by the question.")
	return b.String()
}

func (a *Agent) buildProposalPrompt(cc types.ConversationContext) string {
	var b strings.Builder
	b.WriteString(a.persona.SystemPrompt)
	b.WriteString("\n\nGoal: ")
	b.WriteString(cc.Goal)
	b.WriteString("\n\nConversation so far:\n")
	b.WriteString(cc.RenderTranscript())
	b.WriteString("\n\nPropose one or more concrete solutions for the goal. ")
	b.WriteString("Format each proposal exactly as:\nTITLE: <short title>\nDESCRIPTION: <one paragraph>\n")
	return b.String()
}

func (a *Agent) buildVotePrompt(p types.Proposal) string {
	var b strings.Builder
	b.WriteString(a.persona.SystemPrompt)
	b.WriteString("\n\nA proposal is up for a vote.\nTitle: ")
	b.WriteString(p.Title)
	b.WriteString("\nDescription: ")
	b.WriteString(p.Description)
	b.WriteString("\nProposed by: ")
	b.WriteString(p.ProposedBy)
	b.WriteString("\n\nJudge the proposal from your role's perspective. ")
	b.WriteString("Reply exactly as:\nVERDICT: APPROVE or REJECT\nREASONING: <one or two sentences>\n")
	return b.String()
}
