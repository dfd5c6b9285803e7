package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationContext_RenderTranscript(t *testing.T) {
	cc := NewConversationContext([]Message{
		NewSystemMessage("New conversation started with goal: pick a stack"),
		NewMessage("technical_architect", "I suggest Go."),
		NewUserMessage("Sounds good."),
	}, "pick a stack")

	want := "system: New conversation started with goal: pick a stack\n" +
		"technical_architect: I suggest Go.\n" +
		"user: Sounds good."
	assert.Equal(t, want, cc.RenderTranscript())
}

func TestConversationContext_SnapshotIsolation(t *testing.T) {
	history := []Message{NewSystemMessage("seed")}
	cc := NewConversationContext(history, "goal")

	history[0].Content = "mutated"
	assert.Equal(t, "seed", cc.History[0].Content)
}

func TestMessage_FromAgent(t *testing.T) {
	assert.True(t, NewMessage("project_manager", "hi").FromAgent())
	assert.False(t, NewUserMessage("hi").FromAgent())
	assert.False(t, NewSystemMessage("hi").FromAgent())
}
