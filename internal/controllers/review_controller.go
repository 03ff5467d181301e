package controllers

import (
	"net/http"

	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/services"
	"github.com/mhsenam/rentmio/internal/utils"
)

type ReviewController struct {
	reviews *services.ReviewService
}

func NewReviewController(reviews *services.ReviewService) *ReviewController {
	return &ReviewController{reviews: reviews}
}

// GET /api/v1/properties/{id}/reviews
func (c *ReviewController) ListHandler(w http.ResponseWriter, r *http.Request) {
	propertyID, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	reviews, err := c.reviews.ListReviews(r.Context(), propertyID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ReviewListResponse{Reviews: reviews})
}

// POST /api/v1/properties/{id}/reviews
func (c *ReviewController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	propertyID, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.CreateReviewRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	review, err := c.reviews.AddReview(r.Context(), userID, propertyID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, review)
}
