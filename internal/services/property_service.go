package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/sirupsen/logrus"

	"github.com/mhsenam/rentmio/internal/cache"
	"github.com/mhsenam/rentmio/internal/constants"
	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/events"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/repositories"
	"github.com/mhsenam/rentmio/internal/search"
	"github.com/mhsenam/rentmio/internal/storage"
	"github.com/mhsenam/rentmio/internal/utils"
)

// PropertySearcher is satisfied by *search.Searcher.
type PropertySearcher interface {
	Search(ctx context.Context, q search.Query, cursor string, pageSize int) (*search.Page, error)
}

type PropertyService struct {
	props     repositories.PropertyRepository
	profiles  repositories.ProfileRepository
	blobs     storage.BlobStore
	optimizer *storage.ImageOptimizer
	publisher events.Publisher
	searcher  PropertySearcher
	cache     *cache.TwoLevel
}

func NewPropertyService(
	props repositories.PropertyRepository,
	profiles repositories.ProfileRepository,
	blobs storage.BlobStore,
	optimizer *storage.ImageOptimizer,
	publisher events.Publisher,
	searcher PropertySearcher,
	c *cache.TwoLevel,
) *PropertyService {
	return &PropertyService{
		props:     props,
		profiles:  profiles,
		blobs:     blobs,
		optimizer: optimizer,
		publisher: publisher,
		searcher:  searcher,
		cache:     c,
	}
}

func propertyNotFound(err error) error {
	return utils.NewAppError(http.StatusNotFound, utils.ErrCodeNotFound, "Property not found", err)
}

// AddProperty creates a listing together with its images. The row is
// inserted as pending-images, the images are uploaded, and one
// transaction attaches them and makes the listing available. Any failure
// after the insert removes the uploaded blobs and the pending row.
func (s *PropertyService) AddProperty(
	ctx context.Context,
	ownerID uuid.UUID,
	req dtos.CreatePropertyRequest,
	images []Upload,
) (*models.Property, error) {
	logger := utils.Logger.WithFields(logrus.Fields{"op": "AddProperty", "ownerID": ownerID})

	if len(images) == 0 {
		return nil, utils.NewAppError(http.StatusBadRequest, utils.ErrCodeValidation, "At least one image is required", ErrNoImages)
	}
	if len(images) > utils.MaxPropertyImages {
		return nil, utils.NewAppError(http.StatusBadRequest, utils.ErrCodeValidation,
			fmt.Sprintf("At most %d images are allowed", utils.MaxPropertyImages), ErrTooManyImages)
	}

	optimized := make([][]byte, len(images))
	for i, img := range images {
		data, err := s.optimizer.Optimize(img.Data)
		if err != nil {
			if errors.Is(err, storage.ErrImageTooLarge) {
				return nil, utils.NewAppError(http.StatusRequestEntityTooLarge, utils.ErrCodeFileTooLarge, err.Error(), err)
			}
			return nil, utils.NewAppError(http.StatusBadRequest, utils.ErrCodeInvalidPayload,
				fmt.Sprintf("Image %q could not be read", img.Filename), err)
		}
		optimized[i] = data
	}

	owner, err := s.profiles.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, utils.NewAppError(http.StatusForbidden, utils.ErrCodeForbidden, "Complete your profile before listing a property", nil)
	}

	p := &models.Property{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		OwnerName:    owner.DisplayName,
		OwnerImage:   owner.PhotoURL,
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Location:     strings.TrimSpace(req.Location),
		City:         strings.TrimSpace(req.City),
		Price:        req.Price,
		PriceType:    models.PriceType(req.PriceType),
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		Guests:       req.Guests,
		Amenities:    req.Amenities,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		TimeZone:     utils.TimeZoneName(req.Latitude, req.Longitude),
		PropertyType: strings.TrimSpace(req.PropertyType),
		Status:       models.PropertyStatusPendingImages,
	}
	if err := s.props.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create pending property: %w", err)
	}
	logger = logger.WithField("propertyID", p.ID)

	urls := make([]string, 0, len(optimized))
	keys := make([]string, 0, len(optimized))
	fail := func(cause error) (*models.Property, error) {
		s.compensate(p.ID, keys, logger)
		return nil, cause
	}

	for _, data := range optimized {
		key := storage.PropertyImageKey(p.ID)
		url, err := s.blobs.Put(ctx, key, bytes.NewReader(data))
		if err != nil {
			return fail(fmt.Errorf("upload image: %w", err))
		}
		keys = append(keys, key)
		urls = append(urls, url)
	}

	if err := s.props.Activate(ctx, p.ID, urls); err != nil {
		return fail(fmt.Errorf("activate property: %w", err))
	}
	p.Images = urls
	p.Status = models.PropertyStatusAvailable
	p.RowVersion++

	s.publish(ctx, events.ActionCreate, p.ID)
	logger.WithField("images", len(urls)).Info("property listed")
	return p, nil
}

// compensate runs with a fresh context so a cancelled request still
// cleans up. Leftovers are removed by the pending-images sweeper.
func (s *PropertyService) compensate(id uuid.UUID, keys []string, logger *logrus.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, key := range keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			logger.WithError(err).WithField("key", key).Warn("compensation: blob delete failed")
		}
	}
	if err := s.props.DeletePending(ctx, id); err != nil {
		logger.WithError(err).Error("compensation: pending row delete failed; sweeper will retry")
	}
}

func (s *PropertyService) publish(ctx context.Context, action events.Action, id uuid.UUID) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.PropertyEvent{Action: action, PropertyID: id}); err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{
			"action":     action,
			"propertyID": id,
		}).Warn("property event publish failed")
	}
}

// loadOwned returns the property if it exists and belongs to ownerID.
func (s *PropertyService) loadOwned(ctx context.Context, ownerID, propertyID uuid.UUID) (*models.Property, error) {
	p, err := s.props.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, propertyNotFound(nil)
	}
	if p.OwnerID != ownerID {
		return nil, utils.NewAppError(http.StatusForbidden, utils.ErrCodeForbidden, "You do not own this property", nil)
	}
	return p, nil
}

func (s *PropertyService) UpdateProperty(
	ctx context.Context,
	ownerID, propertyID uuid.UUID,
	req dtos.UpdatePropertyRequest,
) (*models.Property, error) {
	if _, err := s.loadOwned(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}

	var updated *models.Property
	err := s.props.UpdateWithRetry(ctx, propertyID, func(p *models.Property) error {
		if p.OwnerID != ownerID {
			return utils.NewAppError(http.StatusForbidden, utils.ErrCodeForbidden, "You do not own this property", nil)
		}
		applyPropertyPatch(p, req)
		if req.Status != nil {
			next := models.PropertyStatus(*req.Status)
			if p.Status != models.PropertyStatusAvailable && p.Status != models.PropertyStatusBooked {
				return utils.NewAppError(http.StatusConflict, utils.ErrCodeConflict, "Property status cannot be changed yet", nil)
			}
			p.Status = next
		}
		updated = p
		return nil
	})
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, propertyNotFound(err)
	case errors.Is(err, utils.ErrRowVersionConflict):
		return nil, utils.NewAppError(http.StatusConflict, utils.ErrCodeRowVersionConflict, "Property was modified concurrently; try again", err)
	case err != nil:
		return nil, err
	}

	s.publish(ctx, events.ActionUpdate, propertyID)
	return updated, nil
}

func applyPropertyPatch(p *models.Property, req dtos.UpdatePropertyRequest) {
	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.Location != nil {
		p.Location = strings.TrimSpace(*req.Location)
	}
	if req.City != nil {
		p.City = strings.TrimSpace(*req.City)
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.PriceType != nil {
		p.PriceType = models.PriceType(*req.PriceType)
	}
	if req.Bedrooms != nil {
		p.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		p.Bathrooms = *req.Bathrooms
	}
	if req.Guests != nil {
		p.Guests = *req.Guests
	}
	if req.PropertyType != nil {
		p.PropertyType = strings.TrimSpace(*req.PropertyType)
	}
	if req.Amenities != nil {
		p.Amenities = *req.Amenities
	}
}

// DeleteProperty soft-deletes the listing. Favorites go and pending
// bookings are cancelled in the same transaction; conversations stay.
func (s *PropertyService) DeleteProperty(ctx context.Context, ownerID, propertyID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, ownerID, propertyID); err != nil {
		return err
	}
	if err := s.props.SoftDeleteCascade(ctx, propertyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return propertyNotFound(err)
		}
		return err
	}
	s.publish(ctx, events.ActionDelete, propertyID)
	utils.Logger.WithFields(logrus.Fields{"propertyID": propertyID, "ownerID": ownerID}).Info("property deleted")
	return nil
}

// GetProperty hides listings that are still waiting for their images.
func (s *PropertyService) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	p, err := s.props.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Status == models.PropertyStatusPendingImages {
		return nil, propertyNotFound(nil)
	}
	return p, nil
}

// GetFeatured never fails; read errors degrade to an empty list.
func (s *PropertyService) GetFeatured(ctx context.Context) []*models.Property {
	key := fmt.Sprintf("featured:%d", constants.FeaturedLimit)
	var cached []*models.Property
	if s.cache != nil && s.cache.GetJSON(ctx, search.CacheNamespace, key, &cached) {
		return cached
	}

	props, err := s.props.ListFeatured(ctx, constants.FeaturedLimit)
	if err != nil {
		utils.Logger.WithError(err).Error("featured properties read failed")
		return []*models.Property{}
	}
	if props == nil {
		props = []*models.Property{}
	}
	if s.cache != nil {
		s.cache.SetJSON(ctx, search.CacheNamespace, key, props)
	}
	return props
}

func (s *PropertyService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Property, error) {
	props, err := s.props.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if props == nil {
		props = []*models.Property{}
	}
	return props, nil
}

func (s *PropertyService) Search(ctx context.Context, q search.Query, cursor string, pageSize int) (*search.Page, error) {
	page, err := s.searcher.Search(ctx, q, cursor, pageSize)
	if errors.Is(err, search.ErrInvalidCursor) {
		return nil, utils.NewAppError(http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid cursor", err)
	}
	return page, err
}

// SweepPendingImages deletes abandoned uploads: listings still in
// pending-images after PendingImagesMaxAge, together with their blobs.
func (s *PropertyService) SweepPendingImages(ctx context.Context) (int, error) {
	stale, err := s.props.ListStalePending(ctx, time.Now().Add(-constants.PendingImagesMaxAge))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, p := range stale {
		logger := utils.Logger.WithField("propertyID", p.ID)
		if err := s.blobs.DeletePrefix(ctx, storage.PropertyPrefix(p.ID)); err != nil {
			logger.WithError(err).Warn("sweeper: blob cleanup failed; will retry")
			continue
		}
		if err := s.props.DeletePending(ctx, p.ID); err != nil {
			logger.WithError(err).Warn("sweeper: pending row delete failed; will retry")
			continue
		}
		removed++
	}
	if removed > 0 {
		utils.Logger.Infof("sweeper: removed %d abandoned listings", removed)
	}
	return removed, nil
}
