package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/repositories"
	"github.com/mhsenam/rentmio/internal/utils"
)

const (
	DefaultHostID    = "22222222-2222-4222-8222-222222222222"
	DefaultHostEmail = "host@rentmio.local"
	// DefaultHostPassword is only ever used for local demo data.
	DefaultHostPassword = "rentmio-demo-host"

	// SentinelPropertyID is used to check if listings have already been seeded.
	SentinelPropertyID = "33333333-3333-4333-8333-333333333301"
)

type seedProperty struct {
	id           string
	title        string
	description  string
	location     string
	city         string
	price        float64
	bedrooms     int
	bathrooms    float64
	guests       int
	propertyType string
	featured     bool
	lat, lng     float64
	images       []string
	amenities    []string
}

var seedProperties = []seedProperty{
	{
		id:           SentinelPropertyID,
		title:        "Sunny loft near the river",
		description:  "Bright open-plan loft with floor-to-ceiling windows, a fully equipped kitchen and a short walk to the riverside parks.",
		location:     "Riverside, Austin",
		city:         "Austin",
		price:        145,
		bedrooms:     1,
		bathrooms:    1,
		guests:       2,
		propertyType: "apartment",
		featured:     true,
		lat:          30.2672,
		lng:          -97.7431,
		images:       []string{"https://images.unsplash.com/photo-1502672260266-1c1ef2d93688"},
		amenities:    []string{"wifi", "kitchen", "air conditioning"},
	},
	{
		id:           "33333333-3333-4333-8333-333333333302",
		title:        "Family house with garden",
		description:  "Spacious three bedroom home with a private garden, barbecue area and parking for two cars. Quiet street close to schools.",
		location:     "Hyde Park, Austin",
		city:         "Austin",
		price:        260,
		bedrooms:     3,
		bathrooms:    2,
		guests:       6,
		propertyType: "house",
		featured:     true,
		lat:          30.3050,
		lng:          -97.7290,
		images:       []string{"https://images.unsplash.com/photo-1568605114967-8130f3a36994"},
		amenities:    []string{"wifi", "parking", "garden", "washer"},
	},
	{
		id:           "33333333-3333-4333-8333-333333333303",
		title:        "Mountain cabin retreat",
		description:  "Cozy timber cabin with a wood stove and mountain views. Hiking trails start at the door and the village is ten minutes away.",
		location:     "Estes Park, Colorado",
		city:         "Estes Park",
		price:        190,
		bedrooms:     2,
		bathrooms:    1.5,
		guests:       4,
		propertyType: "cabin",
		featured:     false,
		lat:          40.3772,
		lng:          -105.5217,
		images:       []string{"https://images.unsplash.com/photo-1449158743715-0a90ebb6d2d8"},
		amenities:    []string{"fireplace", "kitchen", "parking"},
	},
	{
		id:           "33333333-3333-4333-8333-333333333304",
		title:        "Downtown studio with skyline view",
		description:  "Compact studio on the 20th floor with skyline views, gym access and a 24 hour concierge. Ideal for business travellers.",
		location:     "Downtown, Chicago",
		city:         "Chicago",
		price:        120,
		bedrooms:     0,
		bathrooms:    1,
		guests:       2,
		propertyType: "apartment",
		featured:     true,
		lat:          41.8781,
		lng:          -87.6298,
		images:       []string{"https://images.unsplash.com/photo-1522708323590-d24dbb6b0267"},
		amenities:    []string{"wifi", "gym", "elevator"},
	},
}

var seedCategories = []models.Category{
	{Name: "Apartments", Image: "https://images.unsplash.com/photo-1545324418-cc1a3fa10c00", Count: utils.Ptr(2)},
	{Name: "Houses", Image: "https://images.unsplash.com/photo-1570129477492-45c003edd2be", Count: utils.Ptr(1)},
	{Name: "Cabins", Image: "https://images.unsplash.com/photo-1510798831971-661eb04b3739", Count: utils.Ptr(1)},
	{Name: "Villas", Image: "https://images.unsplash.com/photo-1613490493576-7fde63acd811"},
}

// SeedAllTestData inserts the demo host, listings and reference data.
// It is idempotent: categories upsert by name, experiences by id, and
// listings are skipped once the sentinel property exists.
func SeedAllTestData(
	ctx context.Context,
	identityRepo repositories.IdentityRepository,
	propRepo repositories.PropertyRepository,
	catalogRepo repositories.CatalogRepository,
) error {
	host, err := seedDefaultHost(ctx, identityRepo)
	if err != nil {
		return err
	}

	for i := range seedCategories {
		c := seedCategories[i]
		c.ID = uuid.New()
		if err := catalogRepo.UpsertCategory(ctx, &c); err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
	}

	experiences := []models.Experience{
		{
			ID:          uuid.MustParse("44444444-4444-4444-8444-444444444401"),
			Title:       "Sunset kayak tour",
			Description: "Paddle Lady Bird Lake at golden hour with a local guide.",
			Location:    "Austin",
			Price:       65,
			Image:       "https://images.unsplash.com/photo-1472745433479-4556f22e32c2",
			Rating:      4.9,
			ReviewCount: 128,
			Duration:    120,
			Languages:   []string{"English", "Spanish"},
			Included:    []string{"kayak", "life jacket", "snacks"},
		},
		{
			ID:          uuid.MustParse("44444444-4444-4444-8444-444444444402"),
			Title:       "Rocky Mountain photo walk",
			Description: "Half-day photography hike with a professional wildlife photographer.",
			Location:    "Estes Park",
			Price:       95,
			Image:       "https://images.unsplash.com/photo-1464822759023-fed622ff2c3b",
			Rating:      4.7,
			ReviewCount: 54,
			Duration:    240,
			Languages:   []string{"English"},
			Included:    []string{"trail snacks", "photo edits"},
		},
	}
	for i := range experiences {
		e := &experiences[i]
		e.HostID = host.ID
		e.HostName = host.DisplayName
		if err := catalogRepo.UpsertExperience(ctx, e); err != nil {
			return fmt.Errorf("seed experience %q: %w", e.Title, err)
		}
	}

	// IDEMPOTENCY CHECK: listings are seeded as a batch.
	sentinelID := uuid.MustParse(SentinelPropertyID)
	if existing, err := propRepo.GetByID(ctx, sentinelID); err != nil {
		return fmt.Errorf("failed to check for sentinel property: %w", err)
	} else if existing != nil {
		utils.Logger.Info("seeding: demo listings already present; skipping")
		return nil
	}

	for _, sp := range seedProperties {
		lat, lng := sp.lat, sp.lng
		p := &models.Property{
			ID:           uuid.MustParse(sp.id),
			OwnerID:      host.ID,
			OwnerName:    host.DisplayName,
			OwnerImage:   host.PhotoURL,
			Title:        sp.title,
			Description:  sp.description,
			Location:     sp.location,
			City:         sp.city,
			Price:        sp.price,
			PriceType:    models.PriceTypeNight,
			Bedrooms:     sp.bedrooms,
			Bathrooms:    sp.bathrooms,
			Guests:       sp.guests,
			Amenities:    sp.amenities,
			Featured:     sp.featured,
			Latitude:     &lat,
			Longitude:    &lng,
			TimeZone:     utils.TimeZoneName(&lat, &lng),
			PropertyType: sp.propertyType,
		}
		if err := propRepo.Create(ctx, p); err != nil {
			if repositories.IsUniqueViolation(err, "properties_pkey") {
				utils.Logger.Infof("seeding: property (id=%s) already exists; skipping", p.ID)
				continue
			}
			return fmt.Errorf("seed property %q: %w", sp.title, err)
		}
		if err := propRepo.Activate(ctx, p.ID, sp.images); err != nil {
			return fmt.Errorf("activate seeded property %q: %w", sp.title, err)
		}
	}

	utils.Logger.Infof("seeding: created %d demo listings for host id=%s", len(seedProperties), host.ID)
	return nil
}

func seedDefaultHost(ctx context.Context, identityRepo repositories.IdentityRepository) (*models.Identity, error) {
	hostID := uuid.MustParse(DefaultHostID)

	if existing, err := identityRepo.GetByID(ctx, hostID); err != nil {
		return nil, fmt.Errorf("check existing host: %w", err)
	} else if existing != nil {
		utils.Logger.Info("seeding: default host already present; skipping")
		return existing, nil
	}

	hash, err := utils.HashPassword(DefaultHostPassword)
	if err != nil {
		return nil, err
	}
	host := &models.Identity{
		ID:           hostID,
		Email:        DefaultHostEmail,
		PasswordHash: &hash,
		Provider:     models.AuthProviderPassword,
		DisplayName:  "Demo Host",
	}
	if _, err := identityRepo.CreateWithProfile(ctx, host); err != nil {
		if errors.Is(err, utils.ErrEmailExists) {
			utils.Logger.Infof("seeding: host email %s already registered; skipping", DefaultHostEmail)
			return identityRepo.GetByEmail(ctx, DefaultHostEmail)
		}
		return nil, fmt.Errorf("create default host: %w", err)
	}

	utils.Logger.Infof("seeding: created default host id=%s", hostID)
	return host, nil
}
