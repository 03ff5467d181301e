package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mhsenam/rentmio/internal/constants"
	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/repositories"
	"github.com/mhsenam/rentmio/internal/utils"
)

type ConversationService struct {
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	profiles      repositories.ProfileRepository
	props         repositories.PropertyRepository
	notifier      Notifier
}

func NewConversationService(
	conversations repositories.ConversationRepository,
	messages repositories.MessageRepository,
	profiles repositories.ProfileRepository,
	props repositories.PropertyRepository,
	notifier Notifier,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		profiles:      profiles,
		props:         props,
		notifier:      notifier,
	}
}

func conversationNotFound() error {
	return utils.NewAppError(http.StatusNotFound, utils.ErrCodeNotFound, "Conversation not found", nil)
}

// ListForUser degrades to an empty list on read failure.
func (s *ConversationService) ListForUser(ctx context.Context, userID uuid.UUID) []*models.Conversation {
	convs, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		utils.Logger.WithError(err).WithField("userID", userID).Error("conversations read failed")
		return []*models.Conversation{}
	}
	if convs == nil {
		return []*models.Conversation{}
	}
	return convs
}

// CreateOrGet returns the one conversation between the caller and the
// other user about the optional property. The other participant gets an
// email the first time it is created.
func (s *ConversationService) CreateOrGet(
	ctx context.Context,
	userID uuid.UUID,
	req dtos.CreateConversationRequest,
) (*models.Conversation, bool, error) {
	if req.OtherUserID == userID {
		return nil, false, utils.NewAppError(http.StatusBadRequest, utils.ErrCodeValidation, "You cannot start a conversation with yourself", repositories.ErrInvalidParticipants)
	}

	me, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	other, err := s.profiles.GetByID(ctx, req.OtherUserID)
	if err != nil {
		return nil, false, err
	}
	if me == nil || other == nil {
		return nil, false, utils.NewAppError(http.StatusNotFound, utils.ErrCodeNotFound, "User not found", nil)
	}

	var title *string
	if req.PropertyID != nil && *req.PropertyID != uuid.Nil {
		p, err := s.props.GetByID(ctx, *req.PropertyID)
		if err != nil {
			return nil, false, err
		}
		if p == nil {
			return nil, false, propertyNotFound(nil)
		}
		title = &p.Title
	}

	participants := []models.Participant{
		{ID: me.ID, DisplayName: me.DisplayName, PhotoURL: me.PhotoURL},
		{ID: other.ID, DisplayName: other.DisplayName, PhotoURL: other.PhotoURL},
	}
	conv, created, err := s.conversations.CreateOrGet(ctx, participants, req.PropertyID, title)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidParticipants) {
			return nil, false, utils.NewAppError(http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), err)
		}
		return nil, false, err
	}

	if created {
		utils.Logger.WithFields(logrus.Fields{"conversationID": conv.ID, "userID": userID}).Info("conversation created")
		s.notifyNewConversation(ctx, me, other, title)
	}
	return conv, created, nil
}

func (s *ConversationService) notifyNewConversation(ctx context.Context, from, to *models.UserProfile, title *string) {
	if s.notifier == nil || to.Email == "" {
		return
	}
	about := "your listing"
	if title != nil {
		about = *title
	}
	subject := fmt.Sprintf(constants.EmailSubjectNewConversation, about)
	plain := fmt.Sprintf("%s started a conversation with you about %s. Open Rentmio to reply.", from.DisplayName, about)
	html := fmt.Sprintf(newConversationEmailHTML, from.DisplayName, about, time.Now().Year())
	if err := s.notifier.SendEmail(ctx, to.DisplayName, to.Email, subject, plain, html); err != nil {
		utils.Logger.WithError(err).WithField("to", to.ID).Warn("new conversation email failed")
	}
}

// member loads the conversation and checks that userID takes part in it.
func (s *ConversationService) member(ctx context.Context, userID, conversationID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, conversationNotFound()
	}
	if !conv.HasParticipant(userID) {
		return nil, utils.NewAppError(http.StatusForbidden, utils.ErrCodeForbidden, "You are not part of this conversation", nil)
	}
	return conv, nil
}

func (s *ConversationService) ListMessages(ctx context.Context, userID, conversationID uuid.UUID) ([]*models.Message, error) {
	if _, err := s.member(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	return msgs, nil
}

func (s *ConversationService) SendMessage(ctx context.Context, userID, conversationID uuid.UUID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, utils.NewAppError(http.StatusBadRequest, utils.ErrCodeValidation, "Message cannot be empty", nil)
	}
	if _, err := s.member(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	m := &models.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        content,
	}
	if err := s.messages.Send(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *ConversationService) MarkRead(ctx context.Context, userID, conversationID uuid.UUID) (int64, error) {
	if _, err := s.member(ctx, userID, conversationID); err != nil {
		return 0, err
	}
	return s.messages.MarkRead(ctx, conversationID, userID)
}
