package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/mhsenam/rentmio/internal/models"
)

type MessageRepository interface {
	// Send stores the message unread and bumps the conversation's
	// last_message and updated_at in the same transaction.
	Send(ctx context.Context, m *models.Message) error
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*models.Message, error)
	// MarkRead flags every unread message not sent by userID and returns the count.
	MarkRead(ctx context.Context, conversationID, userID uuid.UUID) (int64, error)
}

type messageRepo struct {
	db DB
}

func NewMessageRepository(db DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Send(ctx context.Context, m *models.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.Read = false

	return WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
            INSERT INTO messages (id, conversation_id, sender_id, content, read, created_at)
            VALUES ($1, $2, $3, $4, FALSE, NOW())
            RETURNING created_at
        `, m.ID, m.ConversationID, m.SenderID, m.Content).Scan(&m.Timestamp)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
            UPDATE conversations
               SET last_message_content=$2, last_message_at=$3, last_message_sender_id=$4, updated_at=$3
             WHERE id=$1
        `, m.ConversationID, m.Content, m.Timestamp, m.SenderID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}

func (r *messageRepo) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*models.Message, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, conversation_id, sender_id, content, read, created_at
        FROM messages
        WHERE conversation_id=$1
        ORDER BY created_at ASC, id ASC
    `, conversationID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMessage)
}

func (r *messageRepo) MarkRead(ctx context.Context, conversationID, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE messages SET read=TRUE
         WHERE conversation_id=$1 AND sender_id <> $2 AND read=FALSE
    `, conversationID, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var m models.Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.Read, &m.Timestamp)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
