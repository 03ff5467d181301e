package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/utils"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Property, error)
	ListFeatured(ctx context.Context, limit int) ([]*models.Property, error)
	ListAvailable(ctx context.Context, f models.PropertyFilter, after *PageAfter, limit int) ([]*models.Property, error)
	TextSearch(ctx context.Context, term string, f models.PropertyFilter, after *PageAfter, limit int) ([]*models.Property, error)

	// Activate attaches the uploaded images and makes the row listable.
	Activate(ctx context.Context, id uuid.UUID, images []string) error

	UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error

	SoftDeleteCascade(ctx context.Context, id uuid.UUID) error
	DeletePending(ctx context.Context, id uuid.UUID) error
	ListStalePending(ctx context.Context, olderThan time.Time) ([]*models.Property, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type propertyRepo struct {
	*BaseVersionedRepo[*models.Property]
	db DB
}

func NewPropertyRepository(db DB) PropertyRepository {
	r := &propertyRepo{db: db}
	selectStmt := baseSelectProperty() + " WHERE id=$1 AND status <> 'deleted'"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanProperty)
	return r
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	if p.Status == "" {
		p.Status = models.PropertyStatusPendingImages
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	return r.db.QueryRow(ctx, `
        INSERT INTO properties (
            id, owner_id, owner_name, owner_image, title, description,
            location, city, price, price_type, images, bedrooms, bathrooms,
            guests, amenities, featured, latitude, longitude, time_zone,
            property_type, status, created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21, NOW(), NOW(), 1)
        RETURNING created_at, updated_at, row_version
    `,
		p.ID,
		p.OwnerID,
		p.OwnerName,
		p.OwnerImage,
		p.Title,
		p.Description,
		p.Location,
		p.City,
		p.Price,
		p.PriceType,
		p.Images,
		p.Bedrooms,
		p.Bathrooms,
		p.Guests,
		p.Amenities,
		p.Featured,
		p.Latitude,
		p.Longitude,
		p.TimeZone,
		p.PropertyType,
		p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt, &p.RowVersion)
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *propertyRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, baseSelectProperty()+
		" WHERE owner_id=$1 AND status <> 'deleted' ORDER BY created_at DESC, id DESC", ownerID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProperty)
}

func (r *propertyRepo) ListFeatured(ctx context.Context, limit int) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, baseSelectProperty()+
		" WHERE featured AND status='available' ORDER BY created_at DESC, id DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProperty)
}

func (r *propertyRepo) ListAvailable(
	ctx context.Context,
	f models.PropertyFilter,
	after *PageAfter,
	limit int,
) ([]*models.Property, error) {
	sql, args := buildListingQuery(f, after, limit)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProperty)
}

func (r *propertyRepo) TextSearch(
	ctx context.Context,
	term string,
	f models.PropertyFilter,
	after *PageAfter,
	limit int,
) ([]*models.Property, error) {
	sql, args := buildTextSearchQuery(term, f, after, limit)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProperty)
}

func (r *propertyRepo) Activate(ctx context.Context, id uuid.UUID, images []string) error {
	if len(images) == 0 {
		return errors.New("activate: property needs at least one image")
	}
	return WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM properties WHERE id=$1 FOR UPDATE`, id).Scan(&status)
		if err != nil {
			return err
		}
		if status != string(models.PropertyStatusPendingImages) {
			return utils.ErrNoRowsUpdated
		}
		_, err = tx.Exec(ctx, `
            UPDATE properties
               SET images=$2, status='available', updated_at=NOW(), row_version=row_version+1
             WHERE id=$1
        `, id, images)
		return err
	})
}

func (r *propertyRepo) UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
        UPDATE properties SET
            title=$1, description=$2, location=$3, city=$4, price=$5,
            price_type=$6, bedrooms=$7, bathrooms=$8, guests=$9, amenities=$10,
            property_type=$11, latitude=$12, longitude=$13, time_zone=$14,
            featured=$15, status=$16, updated_at=NOW(), row_version=row_version+1
        WHERE id=$17 AND row_version=$18 AND status <> 'deleted'
    `,
		p.Title, p.Description, p.Location, p.City, p.Price,
		p.PriceType, p.Bedrooms, p.Bathrooms, p.Guests, p.Amenities,
		p.PropertyType, p.Latitude, p.Longitude, p.TimeZone,
		p.Featured, p.Status, p.ID, expected,
	)
}

func (r *propertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

// SoftDeleteCascade marks the property deleted, drops its favorites and
// cancels its pending bookings. Conversations keep their title snapshot.
func (r *propertyRepo) SoftDeleteCascade(ctx context.Context, id uuid.UUID) error {
	return WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            UPDATE properties
               SET status='deleted', featured=FALSE, updated_at=NOW(), row_version=row_version+1
             WHERE id=$1 AND status <> 'deleted'
        `, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		if _, err := tx.Exec(ctx, `DELETE FROM favorites WHERE property_id=$1`, id); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
            UPDATE bookings
               SET status='cancelled', row_version=row_version+1
             WHERE property_id=$1 AND status='pending'
        `, id)
		return err
	})
}

func (r *propertyRepo) DeletePending(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id=$1 AND status='pending-images'`, id)
	return err
}

func (r *propertyRepo) ListStalePending(ctx context.Context, olderThan time.Time) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, baseSelectProperty()+
		" WHERE status='pending-images' AND created_at < $1 ORDER BY created_at", olderThan)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProperty)
}

func baseSelectProperty() string {
	return `
        SELECT
            id, owner_id, owner_name, owner_image, title, description,
            location, city, price, price_type, images, bedrooms, bathrooms,
            guests, amenities, featured, rating, review_count,
            latitude, longitude, time_zone, property_type, status,
            created_at, updated_at, row_version
        FROM properties
    `
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.OwnerName,
		&p.OwnerImage,
		&p.Title,
		&p.Description,
		&p.Location,
		&p.City,
		&p.Price,
		&p.PriceType,
		&p.Images,
		&p.Bedrooms,
		&p.Bathrooms,
		&p.Guests,
		&p.Amenities,
		&p.Featured,
		&p.Rating,
		&p.ReviewCount,
		&p.Latitude,
		&p.Longitude,
		&p.TimeZone,
		&p.PropertyType,
		&p.Status,
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
