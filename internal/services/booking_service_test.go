package services

import (
	"context"
	"net/http"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/utils"
)

type bookingFixture struct {
	svc      *BookingService
	bookings *memBookings
	props    *memProps
	profiles *memProfiles
	notifier *fakeNotifier
	owner    uuid.UUID
	tenant   uuid.UUID
	property *models.Property
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	f := &bookingFixture{
		bookings: newMemBookings(),
		props:    newMemProps(),
		profiles: newMemProfiles(),
		notifier: &fakeNotifier{},
		owner:    uuid.New(),
		tenant:   uuid.New(),
	}
	f.profiles.put(&models.UserProfile{ID: f.owner, DisplayName: "Hana Host", PhoneNumber: utils.Ptr("+15550002222")})
	f.profiles.put(&models.UserProfile{ID: f.tenant, DisplayName: "Tom Tenant"})
	f.property = f.props.put(&models.Property{
		OwnerID:  f.owner,
		Title:    "Lake house",
		Price:    100,
		Guests:   4,
		Images:   []string{"http://img/lake.jpg"},
		TimeZone: "America/Chicago",
		Status:   models.PropertyStatusAvailable,
	})

	f.svc = NewBookingService(f.bookings, f.props, f.profiles, f.notifier)
	f.svc.now = func() time.Time { return time.Date(2030, time.June, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *bookingFixture) quoteReq(start, end string, adults, children int) dtos.QuoteRequest {
	return dtos.QuoteRequest{PropertyID: f.property.ID, StartDate: start, EndDate: end, Adults: adults, Children: children}
}

func TestQuoteTotals(t *testing.T) {
	f := newBookingFixture(t)

	q, err := f.svc.Quote(context.Background(), f.quoteReq("2030-07-03", "2030-07-06", 2, 1))
	require.NoError(t, err)

	assert.Equal(t, 3, q.Nights)
	assert.Equal(t, 300.0, q.Subtotal)
	assert.Equal(t, 36.0, q.ServiceFee)
	assert.Equal(t, 60.0, q.CleaningFee)
	assert.Equal(t, 396.0, q.Total)
	assert.Equal(t, 3, q.Guests)
	assert.Equal(t, "America/Chicago", q.TimeZone)
	assert.Equal(t, []string{"2030-07-04"}, q.HolidayNights)
}

func TestQuoteRejectsBadStays(t *testing.T) {
	f := newBookingFixture(t)
	cases := map[string]dtos.QuoteRequest{
		"too many guests":    f.quoteReq("2030-07-03", "2030-07-06", 4, 1),
		"no guests":          f.quoteReq("2030-07-03", "2030-07-06", 0, 0),
		"zero nights":        f.quoteReq("2030-07-03", "2030-07-03", 1, 0),
		"check-out first":    f.quoteReq("2030-07-06", "2030-07-03", 1, 0),
		"past check-in":      f.quoteReq("2030-05-20", "2030-05-22", 1, 0),
		"malformed check-in": f.quoteReq("07/03/2030", "2030-07-06", 1, 0),
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Quote(context.Background(), req)
			requireAppError(t, err, http.StatusBadRequest)
		})
	}
}

func TestQuoteCountsNightsAcrossDST(t *testing.T) {
	f := newBookingFixture(t)
	f.svc.now = func() time.Time { return time.Date(2030, time.March, 1, 0, 0, 0, 0, time.UTC) }

	// US clocks spring forward on 2030-03-10
	q, err := f.svc.Quote(context.Background(), f.quoteReq("2030-03-09", "2030-03-12", 1, 0))
	require.NoError(t, err)
	assert.Equal(t, 3, q.Nights)
}

func TestQuoteUnknownProperty(t *testing.T) {
	f := newBookingFixture(t)
	req := f.quoteReq("2030-07-03", "2030-07-06", 1, 0)
	req.PropertyID = uuid.New()

	_, err := f.svc.Quote(context.Background(), req)
	requireAppError(t, err, http.StatusNotFound)
}

func TestRequestBooking(t *testing.T) {
	f := newBookingFixture(t)
	req := dtos.CreateBookingRequest{QuoteRequest: f.quoteReq("2030-07-03", "2030-07-06", 2, 0)}

	b, err := f.svc.RequestBooking(context.Background(), f.tenant, req)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, b.Status)
	assert.Equal(t, 396.0, b.TotalPrice)
	assert.Equal(t, "Tom Tenant", b.TenantName)
	assert.Equal(t, "http://img/lake.jpg", b.PropertyImage)

	require.Len(t, f.notifier.sms, 1)
	assert.Equal(t, "+15550002222", f.notifier.sms[0].to)
	assert.Contains(t, f.notifier.sms[0].body, "Tom Tenant requested Lake house from 2030-07-03 to 2030-07-06")

	overlapping := dtos.CreateBookingRequest{QuoteRequest: f.quoteReq("2030-07-05", "2030-07-08", 1, 0)}
	_, err = f.svc.RequestBooking(context.Background(), f.tenant, overlapping)
	requireAppError(t, err, http.StatusConflict)

	adjacent := dtos.CreateBookingRequest{QuoteRequest: f.quoteReq("2030-07-06", "2030-07-08", 1, 0)}
	_, err = f.svc.RequestBooking(context.Background(), f.tenant, adjacent)
	require.NoError(t, err, "check-out day is free for the next guest")
}

func TestRequestBookingOwnProperty(t *testing.T) {
	f := newBookingFixture(t)
	req := dtos.CreateBookingRequest{QuoteRequest: f.quoteReq("2030-07-03", "2030-07-06", 1, 0)}

	_, err := f.svc.RequestBooking(context.Background(), f.owner, req)
	requireAppError(t, err, http.StatusBadRequest)
	assert.Empty(t, f.bookings.rows)
}

func TestBookingTransitions(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	req := dtos.CreateBookingRequest{QuoteRequest: f.quoteReq("2030-07-03", "2030-07-06", 1, 0)}
	b, err := f.svc.RequestBooking(ctx, f.tenant, req)
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, f.tenant, b.ID)
	requireAppError(t, err, http.StatusForbidden)

	confirmed, err := f.svc.Confirm(ctx, f.owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)

	_, err = f.svc.Decline(ctx, f.owner, b.ID)
	requireAppError(t, err, http.StatusConflict)

	_, err = f.svc.Cancel(ctx, f.owner, b.ID)
	requireAppError(t, err, http.StatusForbidden)

	cancelled, err := f.svc.Cancel(ctx, f.tenant, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	_, err = f.svc.Cancel(ctx, f.tenant, uuid.New())
	requireAppError(t, err, http.StatusNotFound)

	// cancelled bookings release their dates
	_, err = f.svc.RequestBooking(ctx, f.tenant, req)
	require.NoError(t, err)
}

func TestBookingListsNeverNil(t *testing.T) {
	f := newBookingFixture(t)
	tenantList, err := f.svc.ListForTenant(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, tenantList)

	ownerList, err := f.svc.ListForOwner(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, ownerList)
}
