package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/utils"
)

// TokenRepository stores refresh and password-reset tokens. Raw tokens
// never reach the database; only utils.HashToken output is persisted.
type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error
	GetRefreshToken(ctx context.Context, raw string) (*models.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, raw string) error
	DeleteRefreshTokensForUser(ctx context.Context, userID uuid.UUID) error

	CreatePasswordReset(ctx context.Context, userID uuid.UUID, raw string, expiresAt time.Time) error
	// ConsumePasswordReset marks a valid reset used, stores the new hash and
	// revokes every refresh token of the user, all in one transaction.
	// Returns uuid.Nil when the token is unknown, used or expired.
	ConsumePasswordReset(ctx context.Context, raw, newPasswordHash string) (uuid.UUID, error)

	CleanupExpired(ctx context.Context) (int64, error)
}

type tokenRepo struct {
	db DB
}

func NewTokenRepository(db DB) TokenRepository {
	return &tokenRepo{db: db}
}

func (r *tokenRepo) CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `
        INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
        VALUES ($1, $2, $3, $4, NOW())
    `, t.ID, t.UserID, utils.HashToken(t.Token), t.ExpiresAt)
	return err
}

func (r *tokenRepo) GetRefreshToken(ctx context.Context, raw string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := r.db.QueryRow(ctx, `
        SELECT id, user_id, expires_at, created_at
        FROM refresh_tokens
        WHERE token_hash=$1
    `, utils.HashToken(raw)).Scan(&t.ID, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t.Token = raw
	return &t, nil
}

func (r *tokenRepo) DeleteRefreshToken(ctx context.Context, raw string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash=$1`, utils.HashToken(raw))
	return err
}

func (r *tokenRepo) DeleteRefreshTokensForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id=$1`, userID)
	return err
}

func (r *tokenRepo) CreatePasswordReset(ctx context.Context, userID uuid.UUID, raw string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO password_resets (id, user_id, token_hash, expires_at, created_at)
        VALUES ($1, $2, $3, $4, NOW())
    `, uuid.New(), userID, utils.HashToken(raw), expiresAt)
	return err
}

func (r *tokenRepo) ConsumePasswordReset(ctx context.Context, raw, newPasswordHash string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
            UPDATE password_resets SET used_at=NOW()
             WHERE token_hash=$1 AND used_at IS NULL AND expires_at > NOW()
            RETURNING user_id
        `, utils.HashToken(raw)).Scan(&userID)
		if err != nil {
			if err == pgx.ErrNoRows {
				userID = uuid.Nil
				return nil
			}
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE identities SET password_hash=$2 WHERE id=$1`, userID, newPasswordHash); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id=$1`, userID)
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}

func (r *tokenRepo) CleanupExpired(ctx context.Context) (int64, error) {
	var total int64
	err := WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
		if err != nil {
			return err
		}
		total += tag.RowsAffected()
		tag, err = tx.Exec(ctx, `DELETE FROM password_resets WHERE expires_at < NOW() OR used_at IS NOT NULL`)
		if err != nil {
			return err
		}
		total += tag.RowsAffected()
		return nil
	})
	return total, err
}
