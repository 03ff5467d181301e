package services

import (
	"context"
	"strconv"

	"github.com/mhsenam/rentmio/internal/cache"
	"github.com/mhsenam/rentmio/internal/constants"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/repositories"
	"github.com/mhsenam/rentmio/internal/utils"
)

// CatalogService serves the reference lists shown on the home screen.
// Both reads are cached and degrade to empty lists.
type CatalogService struct {
	repo  repositories.CatalogRepository
	cache *cache.TwoLevel
}

func NewCatalogService(repo repositories.CatalogRepository, c *cache.TwoLevel) *CatalogService {
	return &CatalogService{repo: repo, cache: c}
}

func (s *CatalogService) ListCategories(ctx context.Context) []*models.Category {
	const key = "categories"
	var cached []*models.Category
	if s.cache != nil && s.cache.GetJSON(ctx, constants.CatalogCacheNamespace, key, &cached) {
		return cached
	}

	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		utils.Logger.WithError(err).Error("categories read failed")
		return []*models.Category{}
	}
	if cats == nil {
		cats = []*models.Category{}
	}
	if s.cache != nil {
		s.cache.SetJSON(ctx, constants.CatalogCacheNamespace, key, cats)
	}
	return cats
}

func (s *CatalogService) ListExperiences(ctx context.Context, limit int) []*models.Experience {
	if limit <= 0 {
		limit = constants.DefaultExperienceLimit
	}
	if limit > constants.MaxExperienceLimit {
		limit = constants.MaxExperienceLimit
	}
	key := cache.Key("experiences", map[string]string{"limit": strconv.Itoa(limit)})

	var cached []*models.Experience
	if s.cache != nil && s.cache.GetJSON(ctx, constants.CatalogCacheNamespace, key, &cached) {
		return cached
	}

	exps, err := s.repo.ListExperiences(ctx, limit)
	if err != nil {
		utils.Logger.WithError(err).Error("experiences read failed")
		return []*models.Experience{}
	}
	if exps == nil {
		exps = []*models.Experience{}
	}
	if s.cache != nil {
		s.cache.SetJSON(ctx, constants.CatalogCacheNamespace, key, exps)
	}
	return exps
}

// Invalidate drops every cached catalog list; used after seeding.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, constants.CatalogCacheNamespace)
	}
}
