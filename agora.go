// Package agora provides a top-level convenience entry point for running a
// multi-agent discussion with minimal boilerplate.
//
// Usage:
//
//	import "github.com/agoraops/agora"
//
//	orch, err := agora.New("Design the onboarding flow", gateway)
//	if err != nil { ... }
//	if err := orch.Run(ctx); err != nil { ... }
//	decision, ok := orch.Decision()
//
// This is a thin wrapper around [conversation.New] with the built-in
// persona roster; use the conversation package directly for custom
// participants or event sinks.
package agora

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agoraops/agora/agent"
	"github.com/agoraops/agora/conversation"
	"github.com/agoraops/agora/llm"
	"github.com/agoraops/agora/types"
)

// Option configures the discussion created by [New].
type Option func(*conversation.Config)

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *conversation.Config) { cfg.Logger = logger }
}

// WithSink attaches an event sink to the discussion.
func WithSink(sink conversation.Sink) Option {
	return func(cfg *conversation.Config) { cfg.Sink = sink }
}

// WithParticipants replaces the built-in roster.
func WithParticipants(participants []types.Contributor) Option {
	return func(cfg *conversation.Config) { cfg.Participants = participants }
}

// New creates a discussion over goal, staffed with the built-in five
// persona roster generating through gateway.
func New(goal string, gateway llm.Gateway, opts ...Option) (*conversation.Orchestrator, error) {
	cfg := conversation.Config{
		ID:   uuid.New().String(),
		Goal: goal,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Participants == nil {
		roster := agent.NewBuiltinRoster(gateway, cfg.Logger)
		participants := make([]types.Contributor, 0, roster.Size())
		for _, a := range roster.All() {
			participants = append(participants, a)
		}
		cfg.Participants = participants
	}
	return conversation.New(cfg)
}
