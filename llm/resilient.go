package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/agoraops/agora/llm/retry"
)

// ResilientGateway decorates a Gateway with retry and client-side rate
// limiting. It enhances the underlying gateway without modifying it; the
// orchestration layer owns this policy, not the provider.
type ResilientGateway struct {
	gateway Gateway
	retryer retry.Retryer
	limiter *rate.Limiter
	logger  *zap.Logger
}

// ResilientConfig configures the resilience wrapper.
type ResilientConfig struct {
	RetryPolicy *retry.Policy `json:"-"`
	// RequestsPerSecond caps outbound generation calls; zero disables the
	// limiter.
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`
}

// DefaultResilientConfig returns the default wrapper configuration.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		RetryPolicy:       retry.DefaultPolicy(),
		RequestsPerSecond: 5,
		Burst:             10,
	}
}

// NewResilientGateway wraps gateway with the given config.
func NewResilientGateway(gateway Gateway, cfg ResilientConfig, logger *zap.Logger) *ResilientGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := cfg.RetryPolicy
	if policy == nil {
		policy = retry.DefaultPolicy()
	}
	if policy.Retryable == nil {
		policy.Retryable = IsRetryable
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &ResilientGateway{
		gateway: gateway,
		retryer: retry.NewBackoffRetryer(policy, logger),
		limiter: limiter,
		logger:  logger.With(zap.String("component", "resilient_gateway")),
	}
}

// Generate implements Gateway.Generate with retry and rate limiting.
func (rg *ResilientGateway) Generate(ctx context.Context, prompt string) (string, error) {
	if rg.limiter != nil {
		if err := rg.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	start := time.Now()
	result, err := rg.retryer.DoWithResult(ctx, func() (any, error) {
		return rg.gateway.Generate(ctx, prompt)
	})
	if err != nil {
		rg.logger.Warn("generation failed",
			zap.String("gateway", rg.gateway.Name()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return "", err
	}

	return result.(string), nil
}

// HealthCheck delegates to the underlying gateway.
func (rg *ResilientGateway) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	return rg.gateway.HealthCheck(ctx)
}

// Name delegates to the underlying gateway.
func (rg *ResilientGateway) Name() string { return rg.gateway.Name() }
