package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/utils"
)

type IdentityRepository interface {
	// CreateWithProfile writes the identity and its mirrored profile in one
	// transaction. A duplicate email yields utils.ErrEmailExists.
	CreateWithProfile(ctx context.Context, id *models.Identity) (*models.UserProfile, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	GetByProviderSubject(ctx context.Context, provider models.AuthProvider, subject string) (*models.Identity, error)

	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type identityRepo struct {
	db DB
}

func NewIdentityRepository(db DB) IdentityRepository {
	return &identityRepo{db: db}
}

func (r *identityRepo) CreateWithProfile(ctx context.Context, id *models.Identity) (*models.UserProfile, error) {
	id.Email = utils.NormalizeEmail(id.Email)
	if id.ID == uuid.Nil {
		id.ID = uuid.New()
	}
	if id.Provider == "" {
		id.Provider = models.AuthProviderPassword
	}
	profile := models.NewProfileFromIdentity(id)

	err := WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
            INSERT INTO identities (id, email, password_hash, provider, provider_subject, display_name, photo_url, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
            RETURNING created_at
        `, id.ID, id.Email, id.PasswordHash, id.Provider, id.ProviderSubject, id.DisplayName, id.PhotoURL,
		).Scan(&id.CreatedAt)
		if err != nil {
			if IsUniqueViolation(err, "identities_email_key") {
				return utils.ErrEmailExists
			}
			return err
		}
		return insertProfile(ctx, tx, profile)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *identityRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	return scanIdentity(r.db.QueryRow(ctx, baseSelectIdentity()+" WHERE id=$1", id))
}

func (r *identityRepo) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return scanIdentity(r.db.QueryRow(ctx, baseSelectIdentity()+" WHERE email=$1", utils.NormalizeEmail(email)))
}

func (r *identityRepo) GetByProviderSubject(
	ctx context.Context,
	provider models.AuthProvider,
	subject string,
) (*models.Identity, error) {
	return scanIdentity(r.db.QueryRow(ctx,
		baseSelectIdentity()+" WHERE provider=$1 AND provider_subject=$2", provider, subject))
}

func (r *identityRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE identities SET password_hash=$2 WHERE id=$1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrNoRowsUpdated
	}
	return nil
}

func baseSelectIdentity() string {
	return `
        SELECT id, email, password_hash, provider, provider_subject, display_name, photo_url, created_at
        FROM identities
    `
}

func scanIdentity(row pgx.Row) (*models.Identity, error) {
	var i models.Identity
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.Provider,
		&i.ProviderSubject,
		&i.DisplayName,
		&i.PhotoURL,
		&i.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &i, nil
}
