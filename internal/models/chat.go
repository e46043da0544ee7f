package models

import (
	"time"

	"gorm.io/datatypes"
)

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	StudentID string    `json:"student_id" gorm:"not null;size:64;index"`
	Role      ChatRole  `json:"role" gorm:"not null;size:20"`
	Content   string    `json:"content" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// ChatReply is what the tutor answers with, live or canned.
type ChatReply struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
