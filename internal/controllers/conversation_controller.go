package controllers

import (
	"net/http"

	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/services"
	"github.com/mhsenam/rentmio/internal/utils"
)

type ConversationController struct {
	conversations *services.ConversationService
}

func NewConversationController(conversations *services.ConversationService) *ConversationController {
	return &ConversationController{conversations: conversations}
}

// GET /api/v1/conversations
func (c *ConversationController) ListHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ConversationListResponse{
		Conversations: c.conversations.ListForUser(r.Context(), userID),
	})
}

// POST /api/v1/conversations
//
// 201 when a new conversation was created, 200 when an existing one was
// returned.
func (c *ConversationController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "CreateConversationHandler")

	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.CreateConversationRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	conv, created, err := c.conversations.CreateOrGet(r.Context(), userID, req)
	if err != nil {
		logger.WithError(err).WithField("userID", userID).Warn("create conversation failed")
		utils.HandleAppError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	utils.RespondWithJSON(w, status, dtos.CreateConversationResponse{Conversation: conv, Created: created})
}

// GET /api/v1/conversations/{id}/messages
func (c *ConversationController) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	convID, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	msgs, err := c.conversations.ListMessages(r.Context(), userID, convID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageListResponse{Messages: msgs})
}

// POST /api/v1/conversations/{id}/messages
func (c *ConversationController) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	convID, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.SendMessageRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	msg, err := c.conversations.SendMessage(r.Context(), userID, convID, req.Content)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, msg)
}

// POST /api/v1/conversations/{id}/read
func (c *ConversationController) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	convID, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	n, err := c.conversations.MarkRead(r.Context(), userID, convID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MarkReadResponse{Updated: n})
}
