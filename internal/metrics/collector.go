package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agoraops/agora/conversation"
)

// Collector holds the Prometheus instruments for the service. Instruments
// register against a private registry so tests can create collectors
// freely.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec

	conversationsStarted prometheus.Counter
	messagesAppended     *prometheus.CounterVec
	phaseTransitions     *prometheus.CounterVec
	statusChanges        *prometheus.CounterVec
	decisionsReached     prometheus.Counter

	logger *zap.Logger
}

// NewCollector creates a collector with all instruments registered under
// namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := prometheus.NewRegistry()
	factory := promauto(registry)

	c := &Collector{
		registry: registry,
		logger:   logger.With(zap.String("component", "metrics")),
	}

	c.httpRequestsTotal = factory.counterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	c.httpRequestDuration = factory.histogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	c.llmRequestsTotal = factory.counterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_requests_total",
		Help:      "Total number of text generation requests",
	}, []string{"provider", "status"})

	c.llmRequestDuration = factory.histogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "llm_request_duration_seconds",
		Help:      "Text generation request duration in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"provider"})

	c.conversationsStarted = factory.counter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conversations_started_total",
		Help:      "Total number of conversations started",
	})

	c.messagesAppended = factory.counterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_appended_total",
		Help:      "Total transcript entries appended",
	}, []string{"sender", "type"})

	c.phaseTransitions = factory.counterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "phase_transitions_total",
		Help:      "Total phase transitions",
	}, []string{"phase"})

	c.statusChanges = factory.counterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_changes_total",
		Help:      "Total conversation status changes",
	}, []string{"status"})

	c.decisionsReached = factory.counter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decisions_reached_total",
		Help:      "Total conversations that ended with a decision",
	})

	return c
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordLLMRequest records one generation call against a provider.
func (c *Collector) RecordLLMRequest(provider, status string, duration time.Duration) {
	c.llmRequestsTotal.WithLabelValues(provider, status).Inc()
	c.llmRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordConversationStarted counts a new conversation.
func (c *Collector) RecordConversationStarted() {
	c.conversationsStarted.Inc()
}

// Sink returns a conversation event sink that feeds the instruments.
func (c *Collector) Sink() conversation.Sink {
	return conversation.SinkFunc(func(_ context.Context, ev conversation.Event) error {
		switch ev.Type {
		case conversation.EventMessageAdded:
			if ev.Message != nil {
				c.messagesAppended.WithLabelValues(ev.Message.Sender, string(ev.Message.Type)).Inc()
			}
		case conversation.EventPhaseChanged:
			c.phaseTransitions.WithLabelValues(string(ev.Phase)).Inc()
		case conversation.EventStatusChanged:
			c.statusChanges.WithLabelValues(string(ev.Status)).Inc()
		case conversation.EventDecisionReached:
			c.decisionsReached.Inc()
		}
		return nil
	})
}

// promFactory builds instruments registered against one registry.
type promFactory struct {
	registry *prometheus.Registry
}

func promauto(r *prometheus.Registry) promFactory {
	return promFactory{registry: r}
}

func (f promFactory) counter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	f.registry.MustRegister(c)
	return c
}

func (f promFactory) counterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	f.registry.MustRegister(c)
	return c
}

func (f promFactory) histogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	f.registry.MustRegister(h)
	return h
}
