// Package inbox drives the messaging view: one selected conversation,
// its messages, and a composer.
package inbox

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/utils"
)

var (
	ErrNoConversation      = errors.New("no conversation selected")
	ErrUnknownConversation = errors.New("conversation is not in the inbox")
	ErrSendInProgress      = errors.New("a message is already being sent")
)

// Backend is satisfied by *client.Client.
type Backend interface {
	Conversations(ctx context.Context) ([]*models.Conversation, error)
	Messages(ctx context.Context, conversationID uuid.UUID) ([]*models.Message, error)
	SendMessage(ctx context.Context, conversationID uuid.UUID, content string) (*models.Message, error)
	MarkRead(ctx context.Context, conversationID uuid.UUID) (int64, error)
}

// DeepLink targets a conversation from elsewhere, e.g. a property's
// contact button, optionally carrying a message to send on arrival.
// Origin identifies where the draft came from; it defaults to the draft
// text itself.
type DeepLink struct {
	ConversationID uuid.UUID
	Draft          string
	Origin         string
}

func (l DeepLink) draftKey() string {
	origin := l.Origin
	if origin == "" {
		origin = strings.TrimSpace(l.Draft)
	}
	return l.ConversationID.String() + "|" + origin
}

type pendingDraft struct {
	conversationID uuid.UUID
	content        string
	key            string
}

type Controller struct {
	api Backend

	sending atomic.Bool

	mu            sync.RWMutex
	conversations []*models.Conversation
	selected      uuid.UUID
	messages      []*models.Message
	input         string
	pending       *pendingDraft
	sent          map[string]struct{}
}

func NewController(api Backend) *Controller {
	return &Controller{api: api, sent: map[string]struct{}{}}
}

// Activate loads the conversation list and selects the deep-link target
// when it is in the list, otherwise the newest conversation. A draft that
// arrives with the target is sent once per origin, however many times the
// same link is activated.
func (c *Controller) Activate(ctx context.Context, link *DeepLink) error {
	convs, err := c.api.Conversations(ctx)
	if err != nil {
		utils.Logger.WithError(err).Warn("conversation list read failed")
		convs = nil
	}
	if convs == nil {
		convs = []*models.Conversation{}
	}

	target := uuid.Nil
	if len(convs) > 0 {
		target = convs[0].ID
	}

	c.mu.Lock()
	c.conversations = convs
	c.pending = nil
	if link != nil {
		for _, conv := range convs {
			if conv.ID != link.ConversationID {
				continue
			}
			target = conv.ID
			if draft := strings.TrimSpace(link.Draft); draft != "" {
				c.pending = &pendingDraft{conversationID: conv.ID, content: draft, key: link.draftKey()}
			}
			break
		}
	}
	c.mu.Unlock()

	if err != nil {
		return err
	}
	if target == uuid.Nil {
		c.mu.Lock()
		c.selected = uuid.Nil
		c.messages = []*models.Message{}
		c.mu.Unlock()
		return nil
	}

	if err := c.Select(ctx, target); err != nil {
		return err
	}
	return c.autoSend(ctx, target)
}

func (c *Controller) autoSend(ctx context.Context, conversationID uuid.UUID) error {
	c.mu.Lock()
	p := c.pending
	if p == nil || p.conversationID != conversationID {
		c.mu.Unlock()
		return nil
	}
	c.pending = nil
	if _, done := c.sent[p.key]; done {
		c.mu.Unlock()
		return nil
	}
	c.sent[p.key] = struct{}{}
	c.mu.Unlock()

	if err := c.Send(ctx, p.content); err != nil {
		// not delivered, so a later activation may try again
		c.mu.Lock()
		delete(c.sent, p.key)
		c.mu.Unlock()
		return err
	}
	return nil
}

// Select shows the messages of one listed conversation and marks the
// other side's messages read.
func (c *Controller) Select(ctx context.Context, conversationID uuid.UUID) error {
	c.mu.Lock()
	found := false
	for _, conv := range c.conversations {
		if conv.ID == conversationID {
			found = true
			break
		}
	}
	if !found {
		c.mu.Unlock()
		return ErrUnknownConversation
	}
	c.selected = conversationID
	c.mu.Unlock()

	if err := c.reload(ctx, conversationID); err != nil {
		return err
	}
	if _, err := c.api.MarkRead(ctx, conversationID); err != nil {
		utils.Logger.WithError(err).WithField("conversationID", conversationID).Warn("mark read failed")
	}
	return nil
}

// reload replaces the displayed messages unless the selection moved on.
func (c *Controller) reload(ctx context.Context, conversationID uuid.UUID) error {
	msgs, err := c.api.Messages(ctx, conversationID)
	if err != nil {
		return err
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == conversationID {
		c.messages = msgs
	}
	return nil
}

// Send posts content to the selected conversation, clears the composer,
// and reloads the full message list. Blank content is ignored.
func (c *Controller) Send(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	c.mu.RLock()
	convID := c.selected
	c.mu.RUnlock()
	if convID == uuid.Nil {
		return ErrNoConversation
	}

	if !c.sending.CompareAndSwap(false, true) {
		return ErrSendInProgress
	}
	defer c.sending.Store(false)

	if _, err := c.api.SendMessage(ctx, convID, content); err != nil {
		return err
	}

	c.mu.Lock()
	c.input = ""
	c.mu.Unlock()
	return c.reload(ctx, convID)
}

// SendInput sends the composer's current text.
func (c *Controller) SendInput(ctx context.Context) error {
	return c.Send(ctx, c.Input())
}

func (c *Controller) SetInput(s string) {
	c.mu.Lock()
	c.input = s
	c.mu.Unlock()
}

func (c *Controller) Input() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.input
}

func (c *Controller) Conversations() []*models.Conversation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.Conversation, len(c.conversations))
	copy(out, c.conversations)
	return out
}

func (c *Controller) Messages() []*models.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Selected returns uuid.Nil when nothing is selected.
func (c *Controller) Selected() uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

func (c *Controller) Sending() bool { return c.sending.Load() }
