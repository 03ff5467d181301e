package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/mhsenam/rentmio/internal/models"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)
	// CreateIfMissing inserts p unless a profile with the same id exists,
	// and returns whichever row is stored.
	CreateIfMissing(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error)

	// UpdateIfVersion patches the profile and mirrors display name and
	// photo onto the identity in one transaction.
	UpdateIfVersion(ctx context.Context, p *models.UserProfile, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.UserProfile) error) error
}

type profileRepo struct {
	*BaseVersionedRepo[*models.UserProfile]
	db DB
}

func NewProfileRepository(db DB) ProfileRepository {
	r := &profileRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectProfile()+" WHERE id=$1", scanProfile)
	return r
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *profileRepo) CreateIfMissing(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	if err := insertProfile(ctx, r.db, p); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, p.ID)
}

func (r *profileRepo) UpdateIfVersion(ctx context.Context, p *models.UserProfile, expected int64) (pgconn.CommandTag, error) {
	var tag pgconn.CommandTag
	err := WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		tag, err = tx.Exec(ctx, `
            UPDATE user_profiles SET
                display_name=$1, photo_url=$2, bio=$3, phone_number=$4,
                updated_at=NOW(), row_version=row_version+1
            WHERE id=$5 AND row_version=$6
        `, p.DisplayName, p.PhotoURL, p.Bio, p.PhoneNumber, p.ID, expected)
		if err != nil || tag.RowsAffected() == 0 {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE identities SET display_name=$2, photo_url=$3 WHERE id=$1`,
			p.ID, p.DisplayName, p.PhotoURL)
		return err
	})
	return tag, err
}

func (r *profileRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.UserProfile) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func insertProfile(ctx context.Context, db DB, p *models.UserProfile) error {
	_, err := db.Exec(ctx, `
        INSERT INTO user_profiles (id, email, display_name, photo_url, bio, phone_number, created_at, updated_at, row_version)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW(), 1)
        ON CONFLICT (id) DO NOTHING
    `, p.ID, p.Email, p.DisplayName, p.PhotoURL, p.Bio, p.PhoneNumber)
	if err != nil {
		return err
	}
	p.RowVersion = 1
	return nil
}

func baseSelectProfile() string {
	return `
        SELECT id, email, display_name, photo_url, bio, phone_number, created_at, updated_at, row_version
        FROM user_profiles
    `
}

func scanProfile(row pgx.Row) (*models.UserProfile, error) {
	var p models.UserProfile
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.DisplayName,
		&p.PhotoURL,
		&p.Bio,
		&p.PhoneNumber,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
