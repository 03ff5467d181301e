package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/services"
	"github.com/mhsenam/rentmio/internal/utils"
)

type BookingController struct {
	bookings *services.BookingService
}

func NewBookingController(bookings *services.BookingService) *BookingController {
	return &BookingController{bookings: bookings}
}

// POST /api/v1/bookings/quote
func (c *BookingController) QuoteHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.QuoteRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	quote, err := c.bookings.Quote(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, quote)
}

// POST /api/v1/bookings
func (c *BookingController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "CreateBookingHandler")

	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.CreateBookingRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	b, err := c.bookings.RequestBooking(r.Context(), userID, req)
	if err != nil {
		logger.WithError(err).WithField("userID", userID).Warn("booking request failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, b)
}

// GET /api/v1/bookings/mine
func (c *BookingController) ListMineHandler(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, c.bookings.ListForTenant)
}

// GET /api/v1/bookings/hosting
func (c *BookingController) ListHostingHandler(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, c.bookings.ListForOwner)
}

func (c *BookingController) list(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(context.Context, uuid.UUID) ([]*models.Booking, error),
) {
	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	bookings, err := fetch(r.Context(), userID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.BookingListResponse{Bookings: bookings})
}

// POST /api/v1/bookings/{id}/confirm
func (c *BookingController) ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.bookings.Confirm)
}

// POST /api/v1/bookings/{id}/decline
func (c *BookingController) DeclineHandler(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.bookings.Decline)
}

// POST /api/v1/bookings/{id}/cancel
func (c *BookingController) CancelHandler(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.bookings.Cancel)
}

func (c *BookingController) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(context.Context, uuid.UUID, uuid.UUID) (*models.Booking, error),
) {
	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	bookingID, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	b, err := apply(r.Context(), userID, bookingID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, b)
}
