package repositories

import (
	"context"

	"github.com/jackc/pgx/v4"

	"github.com/mhsenam/rentmio/internal/models"
)

type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ListExperiences(ctx context.Context, limit int) ([]*models.Experience, error)

	UpsertCategory(ctx context.Context, c *models.Category) error
	UpsertExperience(ctx context.Context, e *models.Experience) error
}

type catalogRepo struct {
	db DB
}

func NewCatalogRepository(db DB) CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, image, count FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row pgx.Row) (*models.Category, error) {
		var c models.Category
		if err := row.Scan(&c.ID, &c.Name, &c.Image, &c.Count); err != nil {
			return nil, err
		}
		return &c, nil
	})
}

func (r *catalogRepo) ListExperiences(ctx context.Context, limit int) ([]*models.Experience, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, title, description, location, price, image, images, rating, review_count,
               host_id, host_name, host_image, duration, languages, included, created_at
        FROM experiences
        ORDER BY rating DESC, created_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanExperience)
}

func (r *catalogRepo) UpsertCategory(ctx context.Context, c *models.Category) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO categories (id, name, image, count)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (name) DO UPDATE SET image=EXCLUDED.image, count=EXCLUDED.count
    `, c.ID, c.Name, c.Image, c.Count)
	return err
}

func (r *catalogRepo) UpsertExperience(ctx context.Context, e *models.Experience) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO experiences (
            id, title, description, location, price, image, images, rating, review_count,
            host_id, host_name, host_image, duration, languages, included, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15, NOW())
        ON CONFLICT (id) DO NOTHING
    `,
		e.ID, e.Title, e.Description, e.Location, e.Price, e.Image, nonNil(e.Images),
		e.Rating, e.ReviewCount, e.HostID, e.HostName, e.HostImage, e.Duration,
		nonNil(e.Languages), nonNil(e.Included),
	)
	return err
}

func scanExperience(row pgx.Row) (*models.Experience, error) {
	var e models.Experience
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.Price, &e.Image, &e.Images,
		&e.Rating, &e.ReviewCount, &e.HostID, &e.HostName, &e.HostImage, &e.Duration,
		&e.Languages, &e.Included, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
