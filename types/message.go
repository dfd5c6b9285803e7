package types

import "time"

// Sender identifies who produced a transcript entry: an agent id or one of
// the reserved sentinels below.
const (
	SenderUser   = "user"
	SenderSystem = "system"
)

// MessageType classifies a transcript entry for consumers (storage, UI).
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeQuestion MessageType = "question"
	MessageTypeProposal MessageType = "proposal"
	MessageTypeVote     MessageType = "vote"
	MessageTypeDecision MessageType = "decision"
	MessageTypeSystem   MessageType = "system"
)

// Message is a single transcript entry. The transcript is append-only;
// insertion order is the conversation order and later entries see all
// earlier ones as context.
type Message struct {
	Sender               string      `json:"sender"`
	Content              string      `json:"content"`
	Type                 MessageType `json:"type,omitempty"`
	RequiresUserResponse bool        `json:"requires_user_response,omitempty"`
	Timestamp            time.Time   `json:"timestamp,omitempty"`
}

// NewMessage creates a message with the given sender and content.
func NewMessage(sender, content string) Message {
	return Message{
		Sender:    sender,
		Content:   content,
		Type:      MessageTypeText,
		Timestamp: time.Now(),
	}
}

// NewSystemMessage creates a message attributed to the system sentinel.
func NewSystemMessage(content string) Message {
	m := NewMessage(SenderSystem, content)
	m.Type = MessageTypeSystem
	return m
}

// NewUserMessage creates a message attributed to the user sentinel.
func NewUserMessage(content string) Message {
	return NewMessage(SenderUser, content)
}

// WithType sets the message type.
func (m Message) WithType(t MessageType) Message {
	m.Type = t
	return m
}

// FromAgent reports whether the message was produced by an agent rather
// than the user or system sentinels.
func (m Message) FromAgent() bool {
	return m.Sender != SenderUser && m.Sender != SenderSystem
}
