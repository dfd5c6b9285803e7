package storage

import "time"

// ConversationRecord is the persisted form of a conversation.
type ConversationRecord struct {
	ID              string    `gorm:"primaryKey;size:36"`
	GoalDescription string    `gorm:"not null"`
	Status          string    `gorm:"size:32;not null;index"`
	Phase           string    `gorm:"size:32;not null"`
	FinalSummary    string    `gorm:""`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`

	Messages []MessageRecord `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// TableName keeps the table name stable across drivers.
func (ConversationRecord) TableName() string { return "conversations" }

// MessageRecord is one persisted transcript entry. Seq preserves the
// append order of the transcript.
type MessageRecord struct {
	ID                   uint   `gorm:"primaryKey;autoIncrement"`
	ConversationID       string `gorm:"size:36;not null;index"`
	Seq                  int    `gorm:"not null"`
	Sender               string `gorm:"size:64;not null"`
	Content              string `gorm:"not null"`
	Type                 string `gorm:"size:16;not null"`
	RequiresUserResponse bool
	CreatedAt            time.Time `gorm:"autoCreateTime"`
}

// TableName keeps the table name stable across drivers.
func (MessageRecord) TableName() string { return "messages" }
