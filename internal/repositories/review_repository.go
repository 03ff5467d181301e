package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/mhsenam/rentmio/internal/models"
)

var ErrAlreadyReviewed = errors.New("user already reviewed this property")

type ReviewRepository interface {
	// CreateAndRecompute stores the review and refreshes the property's
	// rating and review_count in the same transaction.
	CreateAndRecompute(ctx context.Context, rv *models.Review) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Review, error)
}

type reviewRepo struct {
	db DB
}

func NewReviewRepository(db DB) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) CreateAndRecompute(ctx context.Context, rv *models.Review) error {
	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	return WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
            INSERT INTO reviews (id, property_id, user_id, user_name, user_photo, rating, comment, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
            RETURNING created_at
        `, rv.ID, rv.PropertyID, rv.UserID, rv.UserName, rv.UserPhoto, rv.Rating, rv.Comment,
		).Scan(&rv.CreatedAt)
		if err != nil {
			if IsUniqueViolation(err, "") {
				return ErrAlreadyReviewed
			}
			return err
		}

		_, err = tx.Exec(ctx, `
            UPDATE properties p SET
                rating = s.avg_rating,
                review_count = s.cnt,
                updated_at = NOW()
            FROM (
                SELECT COALESCE(ROUND(AVG(rating)::numeric, 2), 0) AS avg_rating, COUNT(*) AS cnt
                FROM reviews WHERE property_id=$1
            ) s
            WHERE p.id=$1
        `, rv.PropertyID)
		return err
	})
}

func (r *reviewRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Review, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, property_id, user_id, user_name, user_photo, rating, comment, created_at
        FROM reviews
        WHERE property_id=$1
        ORDER BY created_at DESC
    `, propertyID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row pgx.Row) (*models.Review, error) {
		var rv models.Review
		err := row.Scan(&rv.ID, &rv.PropertyID, &rv.UserID, &rv.UserName, &rv.UserPhoto,
			&rv.Rating, &rv.Comment, &rv.CreatedAt)
		if err != nil {
			return nil, err
		}
		return &rv, nil
	})
}
