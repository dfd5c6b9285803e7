package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agoraops/agora/llm"
	"github.com/agoraops/agora/types"
)

// mockGateway implements llm.Gateway with function callbacks.
type mockGateway struct {
	generateFn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockGateway) Generate(ctx context.Context, prompt string) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, prompt)
	}
	return "generated", nil
}

func (m *mockGateway) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true}, nil
}

func (m *mockGateway) Name() string { return "mock" }

func testPersona() Persona {
	return Persona{
		ID:           "technical_architect",
		Name:         "Sam Tech",
		Role:         "Technical Architect",
		SystemPrompt: "You are Sam, a Technical Architect.",
	}
}

func TestAgent_Contribute_PromptContainsPersonaGoalAndTranscript(t *testing.T) {
	var captured string
	gw := &mockGateway{
		generateFn: func(_ context.Context, prompt string) (string, error) {
			captured = prompt
			return "  my contribution  ", nil
		},
	}

	a := New(testPersona(), gw, nil)
	cc := types.NewConversationContext([]types.Message{
		types.NewSystemMessage("New conversation started with goal: build an app"),
		types.NewMessage("project_manager", "Any constraints?"),
	}, "build an app")

	out, err := a.Contribute(context.Background(), cc)
	require.NoError(t, err)
	assert.Equal(t, "my contribution", out, "output is trimmed")

	assert.True(t, strings.HasPrefix(captured, "You are Sam, a Technical Architect."))
	assert.Contains(t, captured, "Goal: build an app")
	assert.Contains(t, captured, "system: New conversation started with goal: build an app")
	assert.Contains(t, captured, "project_manager: Any constraints?")
}

func TestAgent_Contribute_GatewayFailure(t *testing.T) {
	gw := &mockGateway{
		generateFn: func(_ context.Context, _ string) (string, error) {
			return "", &llm.Error{Code: llm.ErrUpstreamError, Message: "502", Retryable: true}
		},
	}

	a := New(testPersona(), gw, nil)
	_, err := a.Contribute(context.Background(), types.NewConversationContext(nil, "g"))
	require.Error(t, err)
	assert.Equal(t, types.ErrGeneration, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}

func TestAgent_CastVote_ParsesVerdict(t *testing.T) {
	gw := &mockGateway{
		generateFn: func(_ context.Context, prompt string) (string, error) {
			assert.Contains(t, prompt, "Title: Use React Native")
			return "VERDICT: APPROVE\nREASONING: Solid cross-platform choice.", nil
		},
	}

	a := New(testPersona(), gw, nil)
	p := types.Proposal{ID: "p-1", Title: "Use React Native", Description: "...", ProposedBy: "creative_strategist"}

	v, err := a.CastVote(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "p-1", v.ProposalID)
	assert.Equal(t, "technical_architect", v.AgentID)
	assert.True(t, v.Approve)
	assert.Equal(t, "Solid cross-platform choice.", v.Reasoning)
}

func TestAgent_CastVote_GatewayFailure(t *testing.T) {
	gw := &mockGateway{
		generateFn: func(_ context.Context, _ string) (string, error) {
			return "", &llm.Error{Code: llm.ErrRateLimited, Message: "429", Retryable: true}
		},
	}

	a := New(testPersona(), gw, nil)
	_, err := a.CastVote(context.Background(), types.NewProposal("t", "d", "x"))
	require.Error(t, err)
	assert.Equal(t, types.ErrGeneration, types.GetErrorCode(err))
}

func TestAgent_Propose_ParsesBlocks(t *testing.T) {
	gw := &mockGateway{
		generateFn: func(_ context.Context, _ string) (string, error) {
			return "TITLE: Native app\nDESCRIPTION: Build natively.\nTITLE: PWA\nDESCRIPTION: Ship a web app.", nil
		},
	}

	a := New(testPersona(), gw, nil)
	props, err := a.Propose(context.Background(), types.NewConversationContext(nil, "g"))
	require.NoError(t, err)
	require.Len(t, props, 2)
	assert.Equal(t, "Native app", props[0].Title)
	assert.Equal(t, "technical_architect", props[0].ProposedBy)
	assert.NotEmpty(t, props[0].ID)
	assert.Equal(t, "PWA", props[1].Title)
}

func TestAgent_ValidateOutput(t *testing.T) {
	a := New(testPersona(), &mockGateway{}, nil)
	assert.True(t, a.ValidateOutput("ok"))
	assert.False(t, a.ValidateOutput(""))
	assert.False(t, a.ValidateOutput("   \n\t"))

	capped := testPersona()
	capped.MaxResponseLen = 5
	b := New(capped, &mockGateway{}, nil)
	assert.True(t, b.ValidateOutput("12345"))
	assert.False(t, b.ValidateOutput("123456"))
}

func TestAgent_State(t *testing.T) {
	a := New(testPersona(), &mockGateway{}, nil)
	st := a.State()
	assert.Equal(t, "technical_architect", st.AgentID)
	assert.True(t, st.IsActive)
	assert.Empty(t, st.CurrentTask)
}
