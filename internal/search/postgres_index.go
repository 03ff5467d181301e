package search

import (
	"context"

	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/repositories"
)

// TextSearcher is implemented by repositories.PropertyRepository.
type TextSearcher interface {
	TextSearch(ctx context.Context, term string, f models.PropertyFilter, after *repositories.PageAfter, limit int) ([]*models.Property, error)
}

// PostgresTextIndex does case-insensitive substring matching over title,
// description and location.
type PostgresTextIndex struct {
	repo TextSearcher
}

func NewPostgresTextIndex(repo TextSearcher) *PostgresTextIndex {
	return &PostgresTextIndex{repo: repo}
}

func (p *PostgresTextIndex) Search(
	ctx context.Context,
	term string,
	f models.PropertyFilter,
	after *repositories.PageAfter,
	limit int,
) ([]*models.Property, error) {
	return p.repo.TextSearch(ctx, term, f, after, limit)
}
