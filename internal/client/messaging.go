package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/routes"
)

func (c *Client) Conversations(ctx context.Context) ([]*models.Conversation, error) {
	var resp dtos.ConversationListResponse
	if err := c.do(ctx, request{method: http.MethodGet, route: routes.Conversations, auth: true}, &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// CreateConversation returns the existing conversation for the same pair
// and property when there is one; created tells the two cases apart.
func (c *Client) CreateConversation(ctx context.Context, otherUserID uuid.UUID, propertyID *uuid.UUID) (*models.Conversation, bool, error) {
	var resp dtos.CreateConversationResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		route:  routes.Conversations,
		body:   dtos.CreateConversationRequest{OtherUserID: otherUserID, PropertyID: propertyID},
		auth:   true,
	}, &resp)
	if err != nil {
		return nil, false, err
	}
	return resp.Conversation, resp.Created, nil
}

func (c *Client) Messages(ctx context.Context, conversationID uuid.UUID) ([]*models.Message, error) {
	var resp dtos.MessageListResponse
	if err := c.do(ctx, request{method: http.MethodGet, route: withID(routes.ConversationMessages, conversationID), auth: true}, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *Client) SendMessage(ctx context.Context, conversationID uuid.UUID, content string) (*models.Message, error) {
	var msg models.Message
	err := c.do(ctx, request{
		method: http.MethodPost,
		route:  withID(routes.ConversationMessages, conversationID),
		body:   dtos.SendMessageRequest{Content: content},
		auth:   true,
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) MarkRead(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	var resp dtos.MarkReadResponse
	if err := c.do(ctx, request{method: http.MethodPost, route: withID(routes.ConversationRead, conversationID), auth: true}, &resp); err != nil {
		return 0, err
	}
	return resp.Updated, nil
}
