package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agoraops/agora/agent"
	"github.com/agoraops/agora/types"
)

// Config carries the dependencies of a single conversation run.
type Config struct {
	// ID identifies the conversation in events and logs.
	ID string
	// Goal is the objective the agents discuss.
	Goal string
	// Participants are invoked in slice order in every phase.
	Participants []types.Contributor
	// Sink receives events; may be nil.
	Sink Sink
	// Logger may be nil, in which case a no-op logger is used.
	Logger *zap.Logger
	// RequiresUserInput decides whether a contribution suspends the run
	// for user input. Defaults to agent.RequiresUserInput.
	RequiresUserInput func(text string) bool
}

// Orchestrator drives one conversation end to end: it invokes every
// participant in roster order through each phase, owns the append-only
// transcript, collects proposals and votes in the ledger, and compiles the
// final decision. A single Run call is the unit of work; state accessors
// are safe to call from other goroutines while Run executes.
type Orchestrator struct {
	id           string
	goal         string
	participants []types.Contributor
	flow         *FlowController
	ledger       *Ledger
	sink         Sink
	logger       *zap.Logger
	needsUser    func(string) bool

	mu         sync.RWMutex
	transcript []types.Message
	status     Status
	decision   string
	hasDecided bool
	waiting    bool
	userInput  chan types.Message
}

// New builds an orchestrator from cfg. It fails when the goal is empty or
// there are no participants.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Goal == "" {
		return nil, types.NewError(types.ErrValidationFailed, "conversation goal must not be empty")
	}
	if len(cfg.Participants) == 0 {
		return nil, types.NewError(types.ErrValidationFailed, "conversation needs at least one participant")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	needsUser := cfg.RequiresUserInput
	if needsUser == nil {
		needsUser = agent.RequiresUserInput
	}
	return &Orchestrator{
		id:           cfg.ID,
		goal:         cfg.Goal,
		participants: cfg.Participants,
		flow:         NewFlowController(),
		ledger:       NewLedger(),
		sink:         cfg.Sink,
		logger:       logger.With(zap.String("component", "orchestrator"), zap.String("conversation_id", cfg.ID)),
		needsUser:    needsUser,
		status:       StatusActive,
		userInput:    make(chan types.Message),
	}, nil
}

// ID returns the conversation identifier.
func (o *Orchestrator) ID() string { return o.id }

// Goal returns the conversation goal.
func (o *Orchestrator) Goal() string { return o.goal }

// Phase returns the current discussion phase.
func (o *Orchestrator) Phase() types.Phase { return o.flow.Current() }

// Status returns the current lifecycle status.
func (o *Orchestrator) Status() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

// Transcript returns a copy of the messages appended so far.
func (o *Orchestrator) Transcript() []types.Message {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]types.Message, len(o.transcript))
	copy(out, o.transcript)
	return out
}

// Decision returns the compiled decision text and whether one was reached.
func (o *Orchestrator) Decision() (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.decision, o.hasDecided
}

// Ledger exposes the proposal ledger for inspection.
func (o *Orchestrator) Ledger() *Ledger { return o.ledger }

// Run executes the conversation until it completes, fails, or ctx is
// cancelled. On error the transcript and phase are left exactly as they
// were before the failing step.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("conversation started",
		zap.String("goal", o.goal),
		zap.Int("participants", len(o.participants)))

	o.append(ctx, types.NewSystemMessage(
		fmt.Sprintf("New conversation started with goal: %s", o.goal)))

	for !o.flow.Current().Terminal() {
		var err error
		switch o.flow.Current() {
		case types.PhaseInitialization:
			err = o.runInitialization(ctx)
		case types.PhaseExploration:
			err = o.runExploration(ctx)
		case types.PhaseDiscussion:
			err = o.runDiscussion(ctx)
		case types.PhaseConsensus:
			err = o.runConsensus(ctx)
		}
		if err != nil {
			o.setStatus(ctx, StatusFailed)
			o.logger.Error("conversation failed",
				zap.String("phase", string(o.flow.Current())),
				zap.Error(err))
			return err
		}

		next, err := o.flow.Advance()
		if err != nil {
			o.setStatus(ctx, StatusFailed)
			return err
		}
		o.logger.Info("phase advanced", zap.String("phase", string(next)))
		o.emit(ctx, Event{Type: EventPhaseChanged, Phase: next})
	}

	o.mu.RLock()
	decided := o.hasDecided
	o.mu.RUnlock()
	if decided {
		o.setStatus(ctx, StatusCompleted)
	} else {
		o.setStatus(ctx, StatusNoConsensus)
	}
	o.logger.Info("conversation finished", zap.String("status", string(o.Status())))
	return nil
}

// SubmitUserMessage resumes a run that is waiting for user input. Calling
// it while the conversation is not waiting fails with NOT_WAITING_FOR_USER.
func (o *Orchestrator) SubmitUserMessage(ctx context.Context, content string) error {
	o.mu.RLock()
	waiting := o.waiting
	o.mu.RUnlock()
	if !waiting {
		return types.NewError(types.ErrNotWaiting, "conversation is not waiting for user input")
	}

	select {
	case o.userInput <- types.NewUserMessage(content):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runInitialization lets every agent introduce its perspective on the goal.
// A contribution that asks the human participant a question suspends the
// run until SubmitUserMessage delivers an answer.
func (o *Orchestrator) runInitialization(ctx context.Context) error {
	for _, p := range o.participants {
		text, err := o.contribute(ctx, p)
		if err != nil {
			return err
		}
		if text == "" {
			continue
		}

		msg := types.NewMessage(p.ID(), text)
		if o.needsUser(text) {
			msg.Type = types.MessageTypeQuestion
			msg.RequiresUserResponse = true
		}
		o.append(ctx, msg)

		if msg.RequiresUserResponse {
			if err := o.waitForUser(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// runExploration collects proposals from every agent and registers them in
// the ledger.
func (o *Orchestrator) runExploration(ctx context.Context) error {
	for _, p := range o.participants {
		proposals, err := p.Propose(ctx, o.currentContext())
		if err != nil {
			return types.NewError(types.ErrGeneration,
				fmt.Sprintf("agent %s failed to propose", p.ID())).WithCause(err)
		}
		for _, prop := range proposals {
			if err := o.ledger.AddProposal(prop); err != nil {
				return err
			}
			o.append(ctx, types.NewMessage(p.ID(),
				fmt.Sprintf("Proposal: %s. %s", prop.Title, prop.Description)).
				WithType(types.MessageTypeProposal))
			o.logger.Info("proposal registered",
				zap.String("proposal_id", prop.ID),
				zap.String("title", prop.Title),
				zap.String("proposed_by", prop.ProposedBy))
		}
	}
	return nil
}

// runDiscussion is a free-form round: every agent reacts to the proposals
// on the table.
func (o *Orchestrator) runDiscussion(ctx context.Context) error {
	for _, p := range o.participants {
		text, err := o.contribute(ctx, p)
		if err != nil {
			return err
		}
		if text == "" {
			continue
		}
		o.append(ctx, types.NewMessage(p.ID(), text))
	}
	return nil
}

// runConsensus has every agent vote on every proposal in insertion order,
// then compiles a decision for the first proposal that reaches a majority.
func (o *Orchestrator) runConsensus(ctx context.Context) error {
	proposals := o.ledger.Proposals()
	for _, prop := range proposals {
		for _, p := range o.participants {
			vote, err := p.CastVote(ctx, prop)
			if err != nil {
				return types.NewError(types.ErrGeneration,
					fmt.Sprintf("agent %s failed to vote on proposal %q", p.ID(), prop.ID)).
					WithCause(err)
			}
			if err := o.ledger.AddVote(vote); err != nil {
				return err
			}
			verdict := "Reject"
			if vote.Approve {
				verdict = "Approve"
			}
			o.append(ctx, types.NewMessage(p.ID(),
				fmt.Sprintf("%s on '%s': %s", verdict, prop.Title, vote.Reasoning)).
				WithType(types.MessageTypeVote))
		}
	}

	for _, prop := range proposals {
		if !o.ledger.HasConsensus(prop.ID, len(o.participants)) {
			continue
		}
		decision := CompileDecision(prop, o.ledger.Votes(prop.ID))
		o.mu.Lock()
		o.decision = decision
		o.hasDecided = true
		o.mu.Unlock()

		o.append(ctx, types.NewSystemMessage(decision).WithType(types.MessageTypeDecision))
		o.emit(ctx, Event{Type: EventDecisionReached, Decision: decision})
		o.logger.Info("decision reached",
			zap.String("proposal_id", prop.ID),
			zap.String("title", prop.Title))
		return nil
	}

	o.logger.Warn("no proposal reached consensus",
		zap.Int("proposals", len(proposals)))
	return nil
}

// contribute invokes a participant and validates the output. A validation
// failure is retried once; if the retry also fails validation, the turn is
// skipped and an empty string returned. Generation errors abort the run.
func (o *Orchestrator) contribute(ctx context.Context, p types.Contributor) (string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		text, err := p.Contribute(ctx, o.currentContext())
		if err != nil {
			return "", err
		}
		if p.ValidateOutput(text) {
			return text, nil
		}
		o.logger.Warn("contribution failed validation",
			zap.String("agent_id", p.ID()),
			zap.Int("attempt", attempt+1))
	}
	o.logger.Warn("skipping turn after repeated validation failures",
		zap.String("agent_id", p.ID()))
	return "", nil
}

// waitForUser blocks the run until the user answers or ctx is cancelled.
func (o *Orchestrator) waitForUser(ctx context.Context) error {
	o.mu.Lock()
	o.waiting = true
	o.mu.Unlock()
	o.setStatus(ctx, StatusWaitingForUser)
	o.logger.Info("waiting for user input")

	defer func() {
		o.mu.Lock()
		o.waiting = false
		o.mu.Unlock()
	}()

	select {
	case msg := <-o.userInput:
		o.append(ctx, msg)
		o.setStatus(ctx, StatusActive)
		o.logger.Info("user input received")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// currentContext snapshots the transcript for an agent invocation.
func (o *Orchestrator) currentContext() types.ConversationContext {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return types.NewConversationContext(o.transcript, o.goal)
}

// append adds a message to the transcript and emits a message_added event.
func (o *Orchestrator) append(ctx context.Context, msg types.Message) {
	o.mu.Lock()
	o.transcript = append(o.transcript, msg)
	o.mu.Unlock()
	o.emit(ctx, Event{Type: EventMessageAdded, Message: &msg})
}

func (o *Orchestrator) setStatus(ctx context.Context, s Status) {
	o.mu.Lock()
	if o.status == s {
		o.mu.Unlock()
		return
	}
	o.status = s
	o.mu.Unlock()
	o.emit(ctx, Event{Type: EventStatusChanged, Status: s})
}

func (o *Orchestrator) emit(ctx context.Context, ev Event) {
	if o.sink == nil {
		return
	}
	ev.ConversationID = o.id
	if ev.Phase == "" {
		ev.Phase = o.flow.Current()
	}
	ev.Timestamp = time.Now().UTC()
	if err := o.sink.Publish(ctx, ev); err != nil {
		o.logger.Warn("event delivery failed",
			zap.String("event_type", string(ev.Type)),
			zap.Error(err))
	}
}
