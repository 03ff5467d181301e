package services

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/repositories"
	"github.com/mhsenam/rentmio/internal/utils"
)

type FavoriteService struct {
	favorites repositories.FavoriteRepository
	props     repositories.PropertyRepository
}

func NewFavoriteService(favorites repositories.FavoriteRepository, props repositories.PropertyRepository) *FavoriteService {
	return &FavoriteService{favorites: favorites, props: props}
}

// Add is idempotent. Only live listings can be favorited.
func (s *FavoriteService) Add(ctx context.Context, userID, propertyID uuid.UUID) error {
	p, err := s.props.GetByID(ctx, propertyID)
	if err != nil {
		return err
	}
	if p == nil || p.Status == models.PropertyStatusPendingImages {
		return propertyNotFound(nil)
	}
	return s.favorites.Add(ctx, userID, propertyID)
}

func (s *FavoriteService) Remove(ctx context.Context, userID, propertyID uuid.UUID) error {
	n, err := s.favorites.Remove(ctx, userID, propertyID)
	if err != nil {
		return err
	}
	if n == 0 {
		return utils.NewAppError(http.StatusNotFound, utils.ErrCodeNotFound, ErrFavoriteNotFound.Error(), ErrFavoriteNotFound)
	}
	return nil
}

func (s *FavoriteService) IsFavorite(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	return s.favorites.Exists(ctx, userID, propertyID)
}

// ListProperties degrades to an empty list on read failure.
func (s *FavoriteService) ListProperties(ctx context.Context, userID uuid.UUID) []*models.Property {
	props, err := s.favorites.ListProperties(ctx, userID)
	if err != nil {
		utils.Logger.WithError(err).WithField("userID", userID).Error("favorite properties read failed")
		return []*models.Property{}
	}
	if props == nil {
		return []*models.Property{}
	}
	return props
}
