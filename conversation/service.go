package conversation

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/agoraops/agora/types"
)

// ParticipantFactory builds the participants for a new conversation. Each
// conversation gets its own set so per-agent state never leaks between
// runs.
type ParticipantFactory func() ([]types.Contributor, error)

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// MaxConcurrent bounds the number of conversations running at once.
	// Zero or negative means the default of 8.
	MaxConcurrent int64
	// Participants builds the roster for each conversation.
	Participants ParticipantFactory
	// Prepare runs before a conversation's goroutine launches, so callers
	// can persist the conversation before any event references it. An
	// error aborts the start. May be nil.
	Prepare func(ctx context.Context, id, goal string) error
	// Sink receives events from every conversation; may be nil.
	Sink Sink
	// Logger may be nil.
	Logger *zap.Logger
}

// Service owns the set of live conversations. It starts runs, routes user
// input to the run that is waiting for it, and exposes run state to the API
// layer. Runs execute on their own goroutines, gated by a weighted
// semaphore so a burst of requests cannot exhaust the gateway.
type Service struct {
	participants ParticipantFactory
	prepare      func(ctx context.Context, id, goal string) error
	sink         Sink
	logger       *zap.Logger
	sem          *semaphore.Weighted

	// baseCtx bounds every run's lifetime; Shutdown cancels it.
	baseCtx context.Context
	cancel  context.CancelFunc

	mu            sync.RWMutex
	conversations map[string]*Orchestrator
	wg            sync.WaitGroup
}

// NewService builds a Service from cfg.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Participants == nil {
		return nil, types.NewError(types.ErrValidationFailed, "participant factory is required")
	}
	limit := cfg.MaxConcurrent
	if limit <= 0 {
		limit = 8
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	return &Service{
		participants:  cfg.Participants,
		prepare:       cfg.Prepare,
		sink:          cfg.Sink,
		logger:        logger.With(zap.String("component", "conversation_service")),
		sem:           semaphore.NewWeighted(limit),
		baseCtx:       baseCtx,
		cancel:        cancel,
		conversations: make(map[string]*Orchestrator),
	}, nil
}

// Start creates a conversation for goal and launches its run. It returns
// the conversation ID immediately. The run's lifetime is bound to the
// service, not to ctx, so it survives the caller's request; ctx only
// scopes the prepare callback. At capacity Start fails fast with
// RATE_LIMITED rather than queueing.
func (s *Service) Start(ctx context.Context, goal string) (string, error) {
	participants, err := s.participants()
	if err != nil {
		return "", fmt.Errorf("build participants: %w", err)
	}

	id := uuid.New().String()
	orch, err := New(Config{
		ID:           id,
		Goal:         goal,
		Participants: participants,
		Sink:         s.sink,
		Logger:       s.logger,
	})
	if err != nil {
		return "", err
	}

	if !s.sem.TryAcquire(1) {
		return "", types.NewError(types.ErrRateLimited, "too many active conversations")
	}

	// Persist before launch so no event can reference an unknown
	// conversation.
	if s.prepare != nil {
		if err := s.prepare(ctx, id, goal); err != nil {
			s.sem.Release(1)
			return "", fmt.Errorf("prepare conversation: %w", err)
		}
	}

	s.mu.Lock()
	s.conversations[id] = orch
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.sem.Release(1)
		if err := orch.Run(s.baseCtx); err != nil {
			s.logger.Error("conversation run ended with error",
				zap.String("conversation_id", id),
				zap.Error(err))
		}
	}()

	return id, nil
}

// Get returns the orchestrator for a conversation ID.
func (s *Service) Get(id string) (*Orchestrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orch, ok := s.conversations[id]
	if !ok {
		return nil, types.NewError(types.ErrNotFound,
			fmt.Sprintf("conversation %q not found", id))
	}
	return orch, nil
}

// List returns every tracked orchestrator in unspecified order.
func (s *Service) List() []*Orchestrator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Orchestrator, 0, len(s.conversations))
	for _, orch := range s.conversations {
		out = append(out, orch)
	}
	return out
}

// Remove drops a finished conversation from the registry. A run that has
// not reached a terminal status cannot be removed.
func (s *Service) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	orch, ok := s.conversations[id]
	if !ok {
		return types.NewError(types.ErrNotFound,
			fmt.Sprintf("conversation %q not found", id))
	}
	if !orch.Status().Terminal() {
		return types.NewError(types.ErrConversationActive,
			fmt.Sprintf("conversation %q is still running", id))
	}
	delete(s.conversations, id)
	return nil
}

// SubmitUserMessage forwards user input to a waiting conversation.
func (s *Service) SubmitUserMessage(ctx context.Context, id, content string) error {
	orch, err := s.Get(id)
	if err != nil {
		return err
	}
	return orch.SubmitUserMessage(ctx, content)
}

// Wait blocks until every launched run has returned.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Shutdown cancels every running conversation and waits for the runs to
// return, giving up when ctx expires. Waiting and in-flight runs observe
// the cancellation and terminate with a failed status.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
