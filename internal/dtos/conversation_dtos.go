package dtos

import (
	"github.com/google/uuid"

	"github.com/mhsenam/rentmio/internal/models"
)

type CreateConversationRequest struct {
	OtherUserID uuid.UUID  `json:"other_user_id" validate:"required"`
	PropertyID  *uuid.UUID `json:"property_id,omitempty"`
}

type CreateConversationResponse struct {
	Conversation *models.Conversation `json:"conversation"`
	Created      bool                 `json:"created"`
}

type ConversationListResponse struct {
	Conversations []*models.Conversation `json:"conversations"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type MessageListResponse struct {
	Messages []*models.Message `json:"messages"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}
