package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is immutable once written except for Read.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	Timestamp      time.Time `json:"timestamp"`
}
