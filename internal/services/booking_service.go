package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/sirupsen/logrus"

	"github.com/mhsenam/rentmio/internal/constants"
	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/repositories"
	"github.com/mhsenam/rentmio/internal/utils"
)

type BookingService struct {
	bookings repositories.BookingRepository
	props    repositories.PropertyRepository
	profiles repositories.ProfileRepository
	notifier Notifier
	now      func() time.Time
}

func NewBookingService(
	bookings repositories.BookingRepository,
	props repositories.PropertyRepository,
	profiles repositories.ProfileRepository,
	notifier Notifier,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		props:    props,
		profiles: profiles,
		notifier: notifier,
		now:      time.Now,
	}
}

func badBooking(msg string) error {
	return utils.NewAppError(http.StatusBadRequest, utils.ErrCodeValidation, msg, nil)
}

func bookingNotFound(err error) error {
	return utils.NewAppError(http.StatusNotFound, utils.ErrCodeNotFound, "Booking not found", err)
}

type stay struct {
	start, end time.Time
	nights     int
}

// parseStay reads both dates as calendar days in the property's zone.
func (s *BookingService) parseStay(loc *time.Location, startStr, endStr string) (*stay, error) {
	start, err := time.ParseInLocation(dtos.DateLayout, startStr, loc)
	if err != nil {
		return nil, badBooking("Invalid check-in date")
	}
	end, err := time.ParseInLocation(dtos.DateLayout, endStr, loc)
	if err != nil {
		return nil, badBooking("Invalid check-out date")
	}

	// Count calendar days on UTC midnights so DST shifts do not skew it.
	su := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	eu := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	nights := int(eu.Sub(su).Hours() / 24)
	if nights < 1 {
		return nil, badBooking("Check-out must be at least one night after check-in")
	}

	today := s.now().In(loc)
	todayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
	if start.Before(todayStart) {
		return nil, badBooking("Check-in date cannot be in the past")
	}
	return &stay{start: start, end: end, nights: nights}, nil
}

// Quote prices a stay without reserving it.
func (s *BookingService) Quote(ctx context.Context, req dtos.QuoteRequest) (*dtos.QuoteResponse, error) {
	q, _, _, err := s.quote(ctx, req)
	return q, err
}

func (s *BookingService) quote(ctx context.Context, req dtos.QuoteRequest) (*dtos.QuoteResponse, *models.Property, *stay, error) {
	p, err := s.props.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, nil, nil, err
	}
	if p == nil || !p.Listable() {
		return nil, nil, nil, propertyNotFound(nil)
	}

	guests := req.Adults + req.Children
	if guests < 1 {
		return nil, nil, nil, badBooking("At least one guest is required")
	}
	if guests > p.Guests {
		return nil, nil, nil, badBooking(fmt.Sprintf("This property hosts at most %d guests", p.Guests))
	}

	loc := utils.LoadLocationOrUTC(p.TimeZone)
	st, err := s.parseStay(loc, req.StartDate, req.EndDate)
	if err != nil {
		return nil, nil, nil, err
	}

	subtotal := p.Price * float64(st.nights)
	serviceFee := math.Round(constants.ServiceFeeRate * subtotal)
	return &dtos.QuoteResponse{
		PropertyID:    p.ID,
		Nights:        st.nights,
		NightlyPrice:  p.Price,
		Subtotal:      subtotal,
		ServiceFee:    serviceFee,
		CleaningFee:   constants.CleaningFee,
		Total:         subtotal + serviceFee + constants.CleaningFee,
		Guests:        guests,
		TimeZone:      loc.String(),
		HolidayNights: utils.HolidayNights(st.start, st.end, dtos.DateLayout),
	}, p, st, nil
}

// RequestBooking creates a pending booking at the quoted total and texts
// the host when they have a phone number on file.
func (s *BookingService) RequestBooking(ctx context.Context, tenantID uuid.UUID, req dtos.CreateBookingRequest) (*models.Booking, error) {
	quote, p, st, err := s.quote(ctx, req.QuoteRequest)
	if err != nil {
		return nil, err
	}
	if p.OwnerID == tenantID {
		return nil, badBooking("You cannot book your own property")
	}

	tenant, err := s.profiles.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, utils.NewAppError(http.StatusNotFound, utils.ErrCodeNotFound, "User not found", nil)
	}

	b := &models.Booking{
		ID:            uuid.New(),
		PropertyID:    p.ID,
		PropertyTitle: p.Title,
		TenantID:      tenantID,
		TenantName:    tenant.DisplayName,
		OwnerID:       p.OwnerID,
		StartDate:     st.start,
		EndDate:       st.end,
		Guests:        quote.Guests,
		TotalPrice:    quote.Total,
		Status:        models.BookingStatusPending,
	}
	if len(p.Images) > 0 {
		b.PropertyImage = p.Images[0]
	}

	if err := s.bookings.CreateIfAvailable(ctx, b); err != nil {
		switch {
		case errors.Is(err, repositories.ErrBookingOverlap):
			return nil, utils.NewAppError(http.StatusConflict, utils.ErrCodeConflict, "Those dates are no longer available", err)
		case errors.Is(err, pgx.ErrNoRows):
			return nil, propertyNotFound(err)
		}
		return nil, err
	}

	utils.Logger.WithFields(logrus.Fields{"bookingID": b.ID, "propertyID": p.ID, "tenantID": tenantID}).Info("booking requested")
	s.notifyHost(ctx, b)
	return b, nil
}

func (s *BookingService) notifyHost(ctx context.Context, b *models.Booking) {
	if s.notifier == nil {
		return
	}
	host, err := s.profiles.GetByID(ctx, b.OwnerID)
	if err != nil || host == nil || host.PhoneNumber == nil || *host.PhoneNumber == "" {
		return
	}
	body := fmt.Sprintf(constants.SMSBookingRequest,
		b.TenantName, b.PropertyTitle, b.StartDate.Format(dtos.DateLayout), b.EndDate.Format(dtos.DateLayout))
	if err := s.notifier.SendSMS(ctx, *host.PhoneNumber, body); err != nil {
		utils.Logger.WithError(err).WithField("bookingID", b.ID).Warn("host booking SMS failed")
	}
}

// transition applies a status change under optimistic locking after
// checking who may make it and from which states.
func (s *BookingService) transition(
	ctx context.Context,
	actorID, bookingID uuid.UUID,
	allowed func(b *models.Booking) bool,
	from []models.BookingStatus,
	to models.BookingStatus,
) (*models.Booking, error) {
	var updated *models.Booking
	err := s.bookings.UpdateWithRetry(ctx, bookingID, func(b *models.Booking) error {
		if !allowed(b) {
			return utils.NewAppError(http.StatusForbidden, utils.ErrCodeForbidden, "You cannot change this booking", nil)
		}
		ok := false
		for _, st := range from {
			if b.Status == st {
				ok = true
				break
			}
		}
		if !ok {
			return utils.NewAppError(http.StatusConflict, utils.ErrCodeConflict,
				fmt.Sprintf("Booking is %s", b.Status), nil)
		}
		b.Status = to
		updated = b
		return nil
	})
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, bookingNotFound(err)
	case errors.Is(err, utils.ErrRowVersionConflict):
		return nil, utils.NewAppError(http.StatusConflict, utils.ErrCodeRowVersionConflict, "Booking was modified concurrently; try again", err)
	case err != nil:
		return nil, err
	}
	utils.Logger.WithFields(logrus.Fields{"bookingID": bookingID, "actorID": actorID, "status": to}).Info("booking status changed")
	return updated, nil
}

func (s *BookingService) Confirm(ctx context.Context, ownerID, bookingID uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, ownerID, bookingID,
		func(b *models.Booking) bool { return b.OwnerID == ownerID },
		[]models.BookingStatus{models.BookingStatusPending},
		models.BookingStatusConfirmed)
}

func (s *BookingService) Decline(ctx context.Context, ownerID, bookingID uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, ownerID, bookingID,
		func(b *models.Booking) bool { return b.OwnerID == ownerID },
		[]models.BookingStatus{models.BookingStatusPending},
		models.BookingStatusCancelled)
}

func (s *BookingService) Cancel(ctx context.Context, tenantID, bookingID uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, tenantID, bookingID,
		func(b *models.Booking) bool { return b.TenantID == tenantID },
		[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed},
		models.BookingStatusCancelled)
}

func (s *BookingService) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Booking, error) {
	list, err := s.bookings.ListForTenant(ctx, tenantID)
	if list == nil && err == nil {
		list = []*models.Booking{}
	}
	return list, err
}

func (s *BookingService) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Booking, error) {
	list, err := s.bookings.ListForOwner(ctx, ownerID)
	if list == nil && err == nil {
		list = []*models.Booking{}
	}
	return list, err
}
