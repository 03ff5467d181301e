package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/mhsenam/rentmio/internal/models"
)

type FavoriteRepository interface {
	// Add is idempotent; adding an existing favorite is not an error.
	Add(ctx context.Context, userID, propertyID uuid.UUID) error
	// Remove deletes every matching row and returns how many were removed.
	Remove(ctx context.Context, userID, propertyID uuid.UUID) (int64, error)
	Exists(ctx context.Context, userID, propertyID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Favorite, error)
	// ListProperties resolves the user's favorites to live properties,
	// newest favorite first. Deleted properties are skipped.
	ListProperties(ctx context.Context, userID uuid.UUID) ([]*models.Property, error)
}

type favoriteRepo struct {
	db DB
}

func NewFavoriteRepository(db DB) FavoriteRepository {
	return &favoriteRepo{db: db}
}

func (r *favoriteRepo) Add(ctx context.Context, userID, propertyID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO favorites (id, user_id, property_id, created_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (user_id, property_id) DO NOTHING
    `, uuid.New(), userID, propertyID)
	return err
}

func (r *favoriteRepo) Remove(ctx context.Context, userID, propertyID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM favorites WHERE user_id=$1 AND property_id=$2`, userID, propertyID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *favoriteRepo) Exists(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id=$1 AND property_id=$2)`,
		userID, propertyID,
	).Scan(&ok)
	return ok, err
}

func (r *favoriteRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Favorite, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, user_id, property_id, created_at
        FROM favorites
        WHERE user_id=$1
        ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFavorite)
}

func (r *favoriteRepo) ListProperties(ctx context.Context, userID uuid.UUID) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, `
        SELECT
            p.id, p.owner_id, p.owner_name, p.owner_image, p.title, p.description,
            p.location, p.city, p.price, p.price_type, p.images, p.bedrooms, p.bathrooms,
            p.guests, p.amenities, p.featured, p.rating, p.review_count,
            p.latitude, p.longitude, p.time_zone, p.property_type, p.status,
            p.created_at, p.updated_at, p.row_version
        FROM favorites f
        JOIN properties p ON p.id = f.property_id
        WHERE f.user_id=$1 AND p.status <> 'deleted'
        ORDER BY f.created_at DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProperty)
}

func scanFavorite(row pgx.Row) (*models.Favorite, error) {
	var f models.Favorite
	if err := row.Scan(&f.ID, &f.UserID, &f.PropertyID, &f.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}
