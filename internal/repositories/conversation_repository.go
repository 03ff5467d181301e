package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/mhsenam/rentmio/internal/models"
)

var ErrInvalidParticipants = errors.New("a conversation needs exactly two distinct participants")

type ConversationRepository interface {
	// CreateOrGet returns the single conversation for the participant pair
	// and property, creating it if needed. The bool is true on creation.
	CreateOrGet(
		ctx context.Context,
		participants []models.Participant,
		propertyID *uuid.UUID,
		propertyTitle *string,
	) (*models.Conversation, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error)
}

type conversationRepo struct {
	db DB
}

func NewConversationRepository(db DB) ConversationRepository {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) CreateOrGet(
	ctx context.Context,
	participants []models.Participant,
	propertyID *uuid.UUID,
	propertyTitle *string,
) (*models.Conversation, bool, error) {
	if len(participants) != 2 || participants[0].ID == participants[1].ID {
		return nil, false, ErrInvalidParticipants
	}
	low, high := models.ParticipantPair(participants[0].ID, participants[1].ID)
	key := models.PropertyKey(propertyID)
	if key == "" {
		propertyID = nil
	}

	raw, err := json.Marshal(participants)
	if err != nil {
		return nil, false, err
	}

	tag, err := r.db.Exec(ctx, `
        INSERT INTO conversations (
            id, participants, participant_low, participant_high,
            property_id, property_key, property_title, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        ON CONFLICT (participant_low, participant_high, property_key) DO NOTHING
    `, uuid.New(), raw, low, high, propertyID, key, propertyTitle)
	if err != nil {
		return nil, false, err
	}

	row := r.db.QueryRow(ctx, baseSelectConversation()+`
        WHERE participant_low=$1 AND participant_high=$2 AND property_key=$3
    `, low, high, key)
	conv, err := scanConversation(row)
	if err != nil {
		return nil, false, err
	}
	if conv == nil {
		return nil, false, pgx.ErrNoRows
	}
	return conv, tag.RowsAffected() == 1, nil
}

func (r *conversationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	return scanConversation(r.db.QueryRow(ctx, baseSelectConversation()+" WHERE id=$1", id))
}

func (r *conversationRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	rows, err := r.db.Query(ctx, baseSelectConversation()+`
        WHERE participant_low=$1 OR participant_high=$1
        ORDER BY updated_at DESC, id DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanConversation)
}

func baseSelectConversation() string {
	return `
        SELECT
            id, participants, property_id, property_title,
            last_message_content, last_message_at, last_message_sender_id,
            created_at, updated_at
        FROM conversations
    `
}

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	var (
		c          models.Conversation
		raw        []byte
		lmContent  *string
		lmAt       *time.Time
		lmSenderID *uuid.UUID
	)
	err := row.Scan(
		&c.ID,
		&raw,
		&c.PropertyID,
		&c.PropertyTitle,
		&lmContent,
		&lmAt,
		&lmSenderID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &c.Participants); err != nil {
		return nil, err
	}
	if lmContent != nil && lmAt != nil && lmSenderID != nil {
		c.LastMessage = &models.LastMessage{
			Content:   *lmContent,
			Timestamp: *lmAt,
			SenderID:  *lmSenderID,
		}
	}
	return &c, nil
}
