package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agoraops/agora/agent"
	"github.com/agoraops/agora/api"
	"github.com/agoraops/agora/api/handlers"
	"github.com/agoraops/agora/config"
	"github.com/agoraops/agora/conversation"
	"github.com/agoraops/agora/internal/hub"
	"github.com/agoraops/agora/internal/metrics"
	"github.com/agoraops/agora/internal/server"
	"github.com/agoraops/agora/internal/storage"
	"github.com/agoraops/agora/llm"
	"github.com/agoraops/agora/llm/providers/ollama"
	"github.com/agoraops/agora/llm/providers/openrouter"
	"github.com/agoraops/agora/llm/retry"
	"github.com/agoraops/agora/types"
)

// Server wires the whole service together: gateway, roster, conversation
// engine, persistence, event fan-out, and the HTTP surface.
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	manager *server.Manager
	service *conversation.Service
	store   *storage.Store
	journal *hub.Journal
	hub     *hub.Hub
}

// NewServer builds the full dependency graph from cfg.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	gateway, err := buildGateway(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	roster := agent.NewBuiltinRoster(gateway, logger)
	collector := metrics.NewCollector("agora", logger)
	eventHub := hub.New(logger)

	sinks := conversation.MultiSink{eventHub, collector.Sink()}

	store, err := storage.Open(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	sinks = append(sinks, storage.NewSink(store))

	var journal *hub.Journal
	if cfg.Redis.Enabled {
		journal, err = hub.NewJournal(context.Background(), hub.JournalConfig{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect event journal: %w", err)
		}
		sinks = append(sinks, journal)
	}

	service, err := conversation.NewService(conversation.ServiceConfig{
		MaxConcurrent: cfg.Discussion.MaxConcurrent,
		Participants: func() ([]types.Contributor, error) {
			fresh := agent.NewBuiltinRoster(gateway, logger)
			out := make([]types.Contributor, 0, fresh.Size())
			for _, a := range fresh.All() {
				out = append(out, a)
			}
			return out, nil
		},
		Prepare: func(ctx context.Context, id, goal string) error {
			return store.CreateConversation(ctx, id, goal,
				string(conversation.StatusActive), string(types.PhaseInitialization))
		},
		Sink:   sinks,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	healthChecks := []handlers.HealthCheck{
		handlers.CheckFunc{CheckName: "llm", Fn: func(ctx context.Context) error {
			status, err := gateway.HealthCheck(ctx)
			if err != nil {
				return err
			}
			if !status.Healthy {
				return fmt.Errorf("gateway %s reports unhealthy", gateway.Name())
			}
			return nil
		}},
	}
	if journal != nil {
		healthChecks = append(healthChecks, handlers.CheckFunc{
			CheckName: "redis",
			Fn:        journal.Ping,
		})
	}

	mux := api.NewRouter(api.Deps{
		Service:      service,
		Roster:       roster,
		Store:        store,
		Hub:          eventHub,
		Journal:      journal,
		Collector:    collector,
		Version:      Version,
		Logger:       logger,
		HealthChecks: healthChecks,
	})

	handler := Chain(mux,
		Recovery(logger),
		RequestID(),
		RequestLogger(logger),
		Metrics(collector),
		RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
	)

	manager := server.NewManager(handler, server.Config{
		Addr:            fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     120 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	return &Server{
		cfg:     cfg,
		logger:  logger,
		manager: manager,
		service: service,
		store:   store,
		journal: journal,
		hub:     eventHub,
	}, nil
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.manager.Start()
}

// WaitForShutdown blocks until a shutdown signal, then stops the server,
// cancels outstanding runs, and releases resources. Runs get the
// configured shutdown timeout to observe the cancellation.
func (s *Server) WaitForShutdown() {
	s.manager.WaitForShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.service.Shutdown(ctx); err != nil {
		s.logger.Warn("conversation drain timed out", zap.Error(err))
	}
	s.hub.Close()
	if s.journal != nil {
		_ = s.journal.Close()
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing storage failed", zap.Error(err))
	}
}

func buildGateway(cfg config.LLMConfig, logger *zap.Logger) (llm.Gateway, error) {
	var base llm.Gateway
	switch cfg.Provider {
	case "ollama":
		base = ollama.New(ollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}, logger)
	case "openrouter":
		base = openrouter.New(openrouter.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	policy := retry.DefaultPolicy()
	if cfg.MaxRetries > 0 {
		policy.MaxRetries = cfg.MaxRetries
	}
	return llm.NewResilientGateway(base, llm.ResilientConfig{
		RetryPolicy:       policy,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             int(cfg.RequestsPerSecond) * 2,
	}, logger), nil
}
