package types

import "strings"

// ConversationContext is the read-only view handed to an agent for one
// invocation: the full ordered transcript so far plus the conversation goal.
// It is assembled fresh per invocation and never mutated in place; the
// orchestrator keeps exclusive write access to the underlying transcript.
type ConversationContext struct {
	History []Message `json:"history"`
	Goal    string    `json:"goal"`
}

// NewConversationContext copies the transcript so the caller's slice cannot
// be mutated through the snapshot.
func NewConversationContext(history []Message, goal string) ConversationContext {
	h := make([]Message, len(history))
	copy(h, history)
	return ConversationContext{History: h, Goal: goal}
}

// RenderTranscript renders the transcript as "sender: content" lines,
// newline-joined, the form agents embed into generation prompts.
func (c ConversationContext) RenderTranscript() string {
	var b strings.Builder
	for i, m := range c.History {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.Sender)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}
