package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/routes"
)

func (c *Client) Quote(ctx context.Context, req dtos.QuoteRequest) (*dtos.QuoteResponse, error) {
	var resp dtos.QuoteResponse
	if err := c.do(ctx, request{method: http.MethodPost, route: routes.BookingQuote, body: req, auth: true}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RequestBooking(ctx context.Context, req dtos.QuoteRequest) (*models.Booking, error) {
	var b models.Booking
	err := c.do(ctx, request{
		method: http.MethodPost,
		route:  routes.Bookings,
		body:   dtos.CreateBookingRequest{QuoteRequest: req},
		auth:   true,
	}, &b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) listBookings(ctx context.Context, route string) ([]*models.Booking, error) {
	var resp dtos.BookingListResponse
	if err := c.do(ctx, request{method: http.MethodGet, route: route, auth: true}, &resp); err != nil {
		return nil, err
	}
	return resp.Bookings, nil
}

func (c *Client) MyBookings(ctx context.Context) ([]*models.Booking, error) {
	return c.listBookings(ctx, routes.BookingsMine)
}

func (c *Client) HostBookings(ctx context.Context) ([]*models.Booking, error) {
	return c.listBookings(ctx, routes.BookingsHost)
}

func (c *Client) transitionBooking(ctx context.Context, route string, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := c.do(ctx, request{method: http.MethodPost, route: withID(route, id), auth: true}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) ConfirmBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return c.transitionBooking(ctx, routes.BookingConfirm, id)
}

func (c *Client) DeclineBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return c.transitionBooking(ctx, routes.BookingDecline, id)
}

func (c *Client) CancelBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return c.transitionBooking(ctx, routes.BookingCancel, id)
}

func (c *Client) Reviews(ctx context.Context, propertyID uuid.UUID) ([]*models.Review, error) {
	var resp dtos.ReviewListResponse
	if err := c.do(ctx, request{method: http.MethodGet, route: withID(routes.PropertyReviews, propertyID)}, &resp); err != nil {
		return nil, err
	}
	return resp.Reviews, nil
}

func (c *Client) AddReview(ctx context.Context, propertyID uuid.UUID, rating int, comment string) (*models.Review, error) {
	var r models.Review
	err := c.do(ctx, request{
		method: http.MethodPost,
		route:  withID(routes.PropertyReviews, propertyID),
		body:   dtos.CreateReviewRequest{Rating: rating, Comment: comment},
		auth:   true,
	}, &r)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
