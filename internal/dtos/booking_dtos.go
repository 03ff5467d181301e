package dtos

import (
	"github.com/google/uuid"

	"github.com/mhsenam/rentmio/internal/models"
)

// DateLayout is the wire format of booking dates.
const DateLayout = "2006-01-02"

type QuoteRequest struct {
	PropertyID uuid.UUID `json:"property_id" validate:"required"`
	StartDate  string    `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string    `json:"end_date" validate:"required,datetime=2006-01-02"`
	Adults     int       `json:"adults" validate:"gte=1,lte=50"`
	Children   int       `json:"children" validate:"gte=0,lte=50"`
}

type QuoteResponse struct {
	PropertyID    uuid.UUID `json:"property_id"`
	Nights        int       `json:"nights"`
	NightlyPrice  float64   `json:"nightly_price"`
	Subtotal      float64   `json:"subtotal"`
	ServiceFee    float64   `json:"service_fee"`
	CleaningFee   float64   `json:"cleaning_fee"`
	Total         float64   `json:"total"`
	Guests        int       `json:"guests"`
	TimeZone      string    `json:"time_zone"`
	HolidayNights []string  `json:"holiday_nights"`
}

type CreateBookingRequest struct {
	QuoteRequest
}

type BookingListResponse struct {
	Bookings []*models.Booking `json:"bookings"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required,min=1,max=2000"`
}

type ReviewListResponse struct {
	Reviews []*models.Review `json:"reviews"`
}

type CategoryListResponse struct {
	Categories []*models.Category `json:"categories"`
}

type ExperienceListResponse struct {
	Experiences []*models.Experience `json:"experiences"`
}
