package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/events"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/repositories"
	"github.com/mhsenam/rentmio/internal/utils"
)

type ReviewService struct {
	reviews  repositories.ReviewRepository
	props    repositories.PropertyRepository
	profiles repositories.ProfileRepository
	// publisher announces the rating change so cached pages refresh.
	publisher events.Publisher
}

func NewReviewService(
	reviews repositories.ReviewRepository,
	props repositories.PropertyRepository,
	profiles repositories.ProfileRepository,
	publisher events.Publisher,
) *ReviewService {
	return &ReviewService{reviews: reviews, props: props, profiles: profiles, publisher: publisher}
}

// AddReview allows one review per user and property. Hosts cannot
// review their own listings.
func (s *ReviewService) AddReview(
	ctx context.Context,
	userID, propertyID uuid.UUID,
	req dtos.CreateReviewRequest,
) (*models.Review, error) {
	comment := strings.TrimSpace(req.Comment)
	if req.Rating < 1 || req.Rating > 5 || comment == "" {
		return nil, utils.NewAppError(http.StatusBadRequest, utils.ErrCodeValidation, "Rating must be 1 to 5 and a comment is required", nil)
	}

	p, err := s.props.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Status == models.PropertyStatusPendingImages {
		return nil, propertyNotFound(nil)
	}
	if p.OwnerID == userID {
		return nil, utils.NewAppError(http.StatusForbidden, utils.ErrCodeForbidden, "You cannot review your own property", nil)
	}

	author, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, utils.NewAppError(http.StatusNotFound, utils.ErrCodeNotFound, "User not found", nil)
	}

	rv := &models.Review{
		ID:         uuid.New(),
		PropertyID: propertyID,
		UserID:     userID,
		UserName:   author.DisplayName,
		UserPhoto:  author.PhotoURL,
		Rating:     req.Rating,
		Comment:    comment,
	}
	if err := s.reviews.CreateAndRecompute(ctx, rv); err != nil {
		if errors.Is(err, repositories.ErrAlreadyReviewed) {
			return nil, utils.NewAppError(http.StatusConflict, utils.ErrCodeConflict, "You already reviewed this property", err)
		}
		return nil, err
	}
	if s.publisher != nil {
		ev := events.PropertyEvent{Action: events.ActionUpdate, PropertyID: propertyID}
		if err := s.publisher.Publish(ctx, ev); err != nil {
			utils.Logger.WithError(err).WithField("propertyID", propertyID).Warn("review event publish failed")
		}
	}
	return rv, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, propertyID uuid.UUID) ([]*models.Review, error) {
	list, err := s.reviews.ListByProperty(ctx, propertyID)
	if list == nil && err == nil {
		list = []*models.Review{}
	}
	return list, err
}
