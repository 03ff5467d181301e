package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/mhsenam/rentmio/internal/models"
)

var ErrBookingOverlap = errors.New("the requested dates overlap an existing booking")

type BookingRepository interface {
	// CreateIfAvailable inserts b unless a pending or confirmed booking of
	// the same property overlaps its dates. The property row is locked for
	// the duration of the check.
	CreateIfAvailable(ctx context.Context, b *models.Booking) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Booking, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Booking, error)

	UpdateIfVersion(ctx context.Context, b *models.Booking, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Booking) error) error
}

type bookingRepo struct {
	*BaseVersionedRepo[*models.Booking]
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	r := &bookingRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectBooking()+" WHERE id=$1", scanBooking)
	return r
}

func (r *bookingRepo) CreateIfAvailable(ctx context.Context, b *models.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = models.BookingStatusPending
	}

	return WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM properties WHERE id=$1 FOR UPDATE`, b.PropertyID).Scan(&status)
		if err != nil {
			return err
		}
		if status != string(models.PropertyStatusAvailable) {
			return pgx.ErrNoRows
		}

		var overlap bool
		err = tx.QueryRow(ctx, `
            SELECT EXISTS (
                SELECT 1 FROM bookings
                 WHERE property_id=$1
                   AND status IN ('pending', 'confirmed')
                   AND start_date < $3 AND end_date > $2
            )
        `, b.PropertyID, b.StartDate, b.EndDate).Scan(&overlap)
		if err != nil {
			return err
		}
		if overlap {
			return ErrBookingOverlap
		}

		return tx.QueryRow(ctx, `
            INSERT INTO bookings (
                id, property_id, property_title, property_image, tenant_id, tenant_name,
                owner_id, start_date, end_date, guests, total_price, status, created_at, row_version
            ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12, NOW(), 1)
            RETURNING created_at, row_version
        `,
			b.ID, b.PropertyID, b.PropertyTitle, b.PropertyImage, b.TenantID, b.TenantName,
			b.OwnerID, b.StartDate, b.EndDate, b.Guests, b.TotalPrice, b.Status,
		).Scan(&b.CreatedAt, &b.RowVersion)
	})
}

func (r *bookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *bookingRepo) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Booking, error) {
	rows, err := r.db.Query(ctx, baseSelectBooking()+" WHERE tenant_id=$1 ORDER BY created_at DESC", tenantID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBooking)
}

func (r *bookingRepo) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Booking, error) {
	rows, err := r.db.Query(ctx, baseSelectBooking()+" WHERE owner_id=$1 ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBooking)
}

func (r *bookingRepo) UpdateIfVersion(ctx context.Context, b *models.Booking, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
        UPDATE bookings SET status=$1, row_version=row_version+1
        WHERE id=$2 AND row_version=$3
    `, b.Status, b.ID, expected)
}

func (r *bookingRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Booking) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func baseSelectBooking() string {
	return `
        SELECT
            id, property_id, property_title, property_image, tenant_id, tenant_name,
            owner_id, start_date, end_date, guests, total_price, status, created_at, row_version
        FROM bookings
    `
}

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID,
		&b.PropertyID,
		&b.PropertyTitle,
		&b.PropertyImage,
		&b.TenantID,
		&b.TenantName,
		&b.OwnerID,
		&b.StartDate,
		&b.EndDate,
		&b.Guests,
		&b.TotalPrice,
		&b.Status,
		&b.CreatedAt,
		&b.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
