package models

import (
	"time"

	"github.com/google/uuid"
)

type Participant struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
}

// LastMessage is the denormalized copy of a conversation's newest message.
type LastMessage struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	SenderID  uuid.UUID `json:"sender_id"`
}

type Conversation struct {
	ID            uuid.UUID     `json:"id"`
	Participants  []Participant `json:"participants"`
	PropertyID    *uuid.UUID    `json:"property_id,omitempty"`
	PropertyTitle *string       `json:"property_title,omitempty"`
	LastMessage   *LastMessage  `json:"last_message,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// HasParticipant reports whether userID is one of the two members.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// ParticipantPair orders two ids so that (a,b) and (b,a) map to the same key.
func ParticipantPair(a, b uuid.UUID) (low, high uuid.UUID) {
	if a.String() < b.String() {
		return a, b
	}
	return b, a
}

// PropertyKey is the dedup component for an optional property reference.
func PropertyKey(propertyID *uuid.UUID) string {
	if propertyID == nil || *propertyID == uuid.Nil {
		return ""
	}
	return propertyID.String()
}
