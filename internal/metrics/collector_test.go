package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agoraops/agora/conversation"
	"github.com/agoraops/agora/types"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollectorRecordsHTTPAndLLM(t *testing.T) {
	c := NewCollector("agora", nil)

	c.RecordHTTPRequest("POST", "/api/conversations", "201", 42*time.Millisecond)
	c.RecordLLMRequest("ollama", "success", 900*time.Millisecond)
	c.RecordConversationStarted()

	body := scrape(t, c)
	assert.Contains(t, body, `agora_http_requests_total{method="POST",path="/api/conversations",status="201"} 1`)
	assert.Contains(t, body, `agora_llm_requests_total{provider="ollama",status="success"} 1`)
	assert.Contains(t, body, "agora_conversations_started_total 1")
}

func TestCollectorSinkCountsEvents(t *testing.T) {
	c := NewCollector("agora", nil)
	sink := c.Sink()
	ctx := context.Background()

	msg := types.NewMessage("agent1", "hi")
	require.NoError(t, sink.Publish(ctx, conversation.Event{
		Type: conversation.EventMessageAdded, Message: &msg,
	}))
	require.NoError(t, sink.Publish(ctx, conversation.Event{
		Type: conversation.EventPhaseChanged, Phase: types.PhaseExploration,
	}))
	require.NoError(t, sink.Publish(ctx, conversation.Event{
		Type: conversation.EventStatusChanged, Status: conversation.StatusCompleted,
	}))
	require.NoError(t, sink.Publish(ctx, conversation.Event{
		Type: conversation.EventDecisionReached, Decision: "done",
	}))

	body := scrape(t, c)
	assert.Contains(t, body, `agora_messages_appended_total{sender="agent1",type="text"} 1`)
	assert.Contains(t, body, `agora_phase_transitions_total{phase="exploration"} 1`)
	assert.Contains(t, body, `agora_status_changes_total{status="completed"} 1`)
	assert.Contains(t, body, "agora_decisions_reached_total 1")
}

func TestCollectorsAreIsolated(t *testing.T) {
	// Two collectors must not collide on registration.
	a := NewCollector("agora", nil)
	b := NewCollector("agora", nil)

	a.RecordConversationStarted()
	assert.Contains(t, scrape(t, a), "agora_conversations_started_total 1")
	assert.NotContains(t, scrape(t, b), "agora_conversations_started_total 1")
}
