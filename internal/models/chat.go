package models

import "time"

// ConversationState is the lifecycle state of a conversation.
type ConversationState string

const (
	ConversationActive   ConversationState = "active"
	ConversationArchived ConversationState = "archived"
)

func (s ConversationState) Valid() bool {
	return s == ConversationActive || s == ConversationArchived
}

// Conversation is a private thread between one subscriber and one trainer.
type Conversation struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	SubscriberID  uint              `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"subscriber_id"`
	TrainerID     uint              `gorm:"not null;uniqueIndex:idx_conversation_pair;index" json:"trainer_id"`
	State         ConversationState `gorm:"type:varchar(20);default:'active';not null" json:"state"`
	LastMessage   string            `gorm:"type:text" json:"last_message"`
	LastMessageAt *time.Time        `json:"last_message_at,omitempty"`
	CreatedAt     time.Time         `gorm:"index" json:"created_at"`

	// CounterpartName is the other participant's name in listings.
	CounterpartName string `gorm:"->;-:migration" json:"counterpart_name,omitempty"`
}

// HasParticipant reports whether userID takes part in the conversation.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.SubscriberID == userID || c.TrainerID == userID
}

// Message is one entry of a conversation thread.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint      `gorm:"not null;index" json:"sender_id"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	Read           bool      `gorm:"column:is_read;default:false;not null" json:"read"`
	SentAt         time.Time `gorm:"not null;index" json:"sent_at"`
}
