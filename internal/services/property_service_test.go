package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhsenam/rentmio/internal/cache"
	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/events"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/search"
	"github.com/mhsenam/rentmio/internal/storage"
	"github.com/mhsenam/rentmio/internal/utils"
)

type propertyFixture struct {
	svc      *PropertyService
	props    *memProps
	profiles *memProfiles
	blobs    *memBlobs
	pub      *fakePublisher
	owner    uuid.UUID
}

func newPropertyFixture(t *testing.T) *propertyFixture {
	t.Helper()
	props := newMemProps()
	profiles := newMemProfiles()
	blobs := newMemBlobs()
	pub := &fakePublisher{}
	owner := uuid.New()
	profiles.put(&models.UserProfile{ID: owner, Email: "host@example.com", DisplayName: "Hana Host"})

	searcher := search.NewSearcher(props, search.NewPostgresTextIndex(props), nil)
	svc := NewPropertyService(props, profiles, blobs, storage.NewImageOptimizer(), pub, searcher, cache.New(nil))
	return &propertyFixture{svc: svc, props: props, profiles: profiles, blobs: blobs, pub: pub, owner: owner}
}

func validCreateRequest() dtos.CreatePropertyRequest {
	return dtos.CreatePropertyRequest{
		Title:        "Cozy flat in the old town",
		Description:  strings.Repeat("A quiet flat with everything you need. ", 3),
		Location:     "Old Town, Prague",
		City:         "Prague",
		Price:        120,
		PriceType:    "night",
		Bedrooms:     2,
		Bathrooms:    1,
		Guests:       4,
		PropertyType: "apartment",
	}
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 12))))
	return buf.Bytes()
}

func smallImages(t *testing.T, n int) []Upload {
	t.Helper()
	out := make([]Upload, n)
	for i := range out {
		out[i] = Upload{Filename: "photo.png", Data: tinyPNG(t)}
	}
	return out
}

func requireAppError(t *testing.T, err error, status int) *utils.AppError {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, status, appErr.StatusCode)
	return appErr
}

func TestAddPropertyRequiresImages(t *testing.T) {
	f := newPropertyFixture(t)

	_, err := f.svc.AddProperty(context.Background(), f.owner, validCreateRequest(), nil)

	requireAppError(t, err, http.StatusBadRequest)
	assert.ErrorIs(t, err, ErrNoImages)
	assert.Empty(t, f.props.rows, "no row may be created without images")
}

func TestAddPropertyRejectsTooManyImages(t *testing.T) {
	f := newPropertyFixture(t)

	_, err := f.svc.AddProperty(context.Background(), f.owner, validCreateRequest(), smallImages(t, utils.MaxPropertyImages+1))

	requireAppError(t, err, http.StatusBadRequest)
	assert.Empty(t, f.props.rows)
}

func TestAddPropertyPublishesAvailableListing(t *testing.T) {
	f := newPropertyFixture(t)

	p, err := f.svc.AddProperty(context.Background(), f.owner, validCreateRequest(), smallImages(t, 3))
	require.NoError(t, err)

	assert.Equal(t, models.PropertyStatusAvailable, p.Status)
	require.Len(t, p.Images, 3)
	for _, url := range p.Images {
		assert.True(t, strings.HasPrefix(url, memBlobBase+"properties/"+p.ID.String()+"/"), url)
	}
	assert.Equal(t, "Hana Host", p.OwnerName)
	assert.Equal(t, "UTC", p.TimeZone)

	stored := f.props.raw(p.ID)
	require.NotNil(t, stored)
	assert.True(t, stored.Listable())
	assert.Equal(t, []events.PropertyEvent{{Action: events.ActionCreate, PropertyID: p.ID}}, f.pub.events)
}

func TestAddPropertyCompensatesFailedUpload(t *testing.T) {
	f := newPropertyFixture(t)
	f.blobs.failAfter = 1

	_, err := f.svc.AddProperty(context.Background(), f.owner, validCreateRequest(), smallImages(t, 3))
	require.Error(t, err)

	assert.Zero(t, f.blobs.count(), "uploaded blobs are removed")
	assert.Empty(t, f.props.rows, "pending row is removed")
	assert.Len(t, f.props.deleted, 1)
	assert.Empty(t, f.pub.events)
}

func TestAddPropertyCompensatesFailedActivation(t *testing.T) {
	f := newPropertyFixture(t)
	f.props.activateErr = errors.New("tx aborted")

	_, err := f.svc.AddProperty(context.Background(), f.owner, validCreateRequest(), smallImages(t, 2))
	require.Error(t, err)

	assert.Zero(t, f.blobs.count())
	assert.Empty(t, f.props.rows)
	assert.Empty(t, f.pub.events)
}

func TestAddPropertyRejectsUnreadableLargeImage(t *testing.T) {
	f := newPropertyFixture(t)
	big := Upload{Filename: "huge.jpg", Data: make([]byte, utils.MaxUploadBytes+1)}

	_, err := f.svc.AddProperty(context.Background(), f.owner, validCreateRequest(), []Upload{big})

	requireAppError(t, err, http.StatusBadRequest)
	assert.Empty(t, f.props.rows, "images are checked before any write")
}

func TestAddPropertyRejectsSmallNonImage(t *testing.T) {
	f := newPropertyFixture(t)
	page := Upload{Filename: "photo.jpg", Data: []byte("<html><script>alert(1)</script></html>")}

	_, err := f.svc.AddProperty(context.Background(), f.owner, validCreateRequest(), append(smallImages(t, 1), page))

	appErr := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, utils.ErrCodeInvalidPayload, appErr.Code)
	assert.ErrorIs(t, err, storage.ErrNotAnImage)
	assert.Empty(t, f.props.rows)
	assert.Zero(t, f.blobs.count())
	assert.Empty(t, f.pub.events)
}

func seedListing(f *propertyFixture, mutate func(p *models.Property)) *models.Property {
	p := &models.Property{
		OwnerID:      f.owner,
		Title:        "Seeded listing",
		City:         "Prague",
		Price:        100,
		Images:       []string{"http://img/1.jpg"},
		Guests:       2,
		PropertyType: "apartment",
		Status:       models.PropertyStatusAvailable,
	}
	if mutate != nil {
		mutate(p)
	}
	return f.props.put(p)
}

func TestUpdatePropertyOwnerOnly(t *testing.T) {
	f := newPropertyFixture(t)
	p := seedListing(f, nil)

	_, err := f.svc.UpdateProperty(context.Background(), uuid.New(), p.ID, dtos.UpdatePropertyRequest{Price: utils.Ptr(200.0)})
	requireAppError(t, err, http.StatusForbidden)

	updated, err := f.svc.UpdateProperty(context.Background(), f.owner, p.ID, dtos.UpdatePropertyRequest{
		Price:  utils.Ptr(200.0),
		Status: utils.Ptr("booked"),
	})
	require.NoError(t, err)
	assert.Equal(t, 200.0, updated.Price)
	assert.Equal(t, models.PropertyStatusBooked, f.props.raw(p.ID).Status)
	assert.Equal(t, int64(2), f.props.raw(p.ID).RowVersion)
	assert.Equal(t, events.ActionUpdate, f.pub.events[0].Action)
}

func TestUpdatePropertyCannotSkipImageUpload(t *testing.T) {
	f := newPropertyFixture(t)
	p := seedListing(f, func(p *models.Property) {
		p.Status = models.PropertyStatusPendingImages
		p.Images = nil
	})

	_, err := f.svc.UpdateProperty(context.Background(), f.owner, p.ID, dtos.UpdatePropertyRequest{Status: utils.Ptr("available")})
	requireAppError(t, err, http.StatusConflict)
	assert.Equal(t, models.PropertyStatusPendingImages, f.props.raw(p.ID).Status)
}

func TestDeleteProperty(t *testing.T) {
	f := newPropertyFixture(t)
	p := seedListing(f, nil)

	err := f.svc.DeleteProperty(context.Background(), uuid.New(), p.ID)
	requireAppError(t, err, http.StatusForbidden)

	require.NoError(t, f.svc.DeleteProperty(context.Background(), f.owner, p.ID))
	assert.Equal(t, []uuid.UUID{p.ID}, f.props.cascaded)
	assert.Equal(t, models.PropertyStatusDeleted, f.props.raw(p.ID).Status)
	assert.Equal(t, events.ActionDelete, f.pub.events[0].Action)

	err = f.svc.DeleteProperty(context.Background(), f.owner, p.ID)
	requireAppError(t, err, http.StatusNotFound)
}

func TestGetPropertyHidesPendingListings(t *testing.T) {
	f := newPropertyFixture(t)
	pending := seedListing(f, func(p *models.Property) { p.Status = models.PropertyStatusPendingImages })

	_, err := f.svc.GetProperty(context.Background(), pending.ID)
	requireAppError(t, err, http.StatusNotFound)

	_, err = f.svc.GetProperty(context.Background(), uuid.New())
	requireAppError(t, err, http.StatusNotFound)
}

func TestGetFeaturedDegradesToEmpty(t *testing.T) {
	f := newPropertyFixture(t)
	f.props.listErr = errors.New("connection reset")

	got := f.svc.GetFeatured(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetFeaturedLimitsToFour(t *testing.T) {
	f := newPropertyFixture(t)
	for i := 0; i < 6; i++ {
		seedListing(f, func(p *models.Property) {
			p.Featured = true
			p.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		})
	}
	assert.Len(t, f.svc.GetFeatured(context.Background()), 4)
}

func TestSearchRejectsBadCursor(t *testing.T) {
	f := newPropertyFixture(t)
	_, err := f.svc.Search(context.Background(), search.StructuredQuery{}, "%%%", 10)
	requireAppError(t, err, http.StatusBadRequest)
}

func TestSweepPendingImages(t *testing.T) {
	f := newPropertyFixture(t)
	stale := seedListing(f, func(p *models.Property) {
		p.Status = models.PropertyStatusPendingImages
		p.CreatedAt = time.Now().Add(-2 * time.Hour)
	})
	fresh := seedListing(f, func(p *models.Property) {
		p.Status = models.PropertyStatusPendingImages
		p.CreatedAt = time.Now()
	})
	live := seedListing(f, func(p *models.Property) { p.CreatedAt = time.Now().Add(-48 * time.Hour) })

	f.blobs.objects[storage.PropertyImageKey(stale.ID)] = []byte("orphan")
	f.blobs.objects[storage.PropertyImageKey(live.ID)] = []byte("keep")

	n, err := f.svc.SweepPendingImages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Nil(t, f.props.raw(stale.ID))
	assert.NotNil(t, f.props.raw(fresh.ID))
	assert.NotNil(t, f.props.raw(live.ID))
	assert.Equal(t, 1, f.blobs.count())
}
