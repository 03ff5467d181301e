package models

import (
	"time"

	"github.com/google/uuid"
)

type PropertyStatus string

const (
	PropertyStatusAvailable     PropertyStatus = "available"
	PropertyStatusBooked        PropertyStatus = "booked"
	PropertyStatusPendingImages PropertyStatus = "pending-images"
	PropertyStatusDeleted       PropertyStatus = "deleted"
)

type PriceType string

const (
	PriceTypeNight PriceType = "night"
	PriceTypeWeek  PriceType = "week"
	PriceTypeMonth PriceType = "month"
)

// Property is a rental listing. Images are blob URLs in display order.
type Property struct {
	Versioned

	ID           uuid.UUID      `json:"id"`
	OwnerID      uuid.UUID      `json:"owner_id"`
	OwnerName    string         `json:"owner_name"`
	OwnerImage   *string        `json:"owner_image,omitempty"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Location     string         `json:"location"`
	City         string         `json:"city"`
	Price        float64        `json:"price"`
	PriceType    PriceType      `json:"price_type"`
	Images       []string       `json:"images"`
	Bedrooms     int            `json:"bedrooms"`
	Bathrooms    float64        `json:"bathrooms"`
	Guests       int            `json:"guests"`
	Amenities    []string       `json:"amenities"`
	Featured     bool           `json:"featured"`
	Rating       float64        `json:"rating"`
	ReviewCount  int            `json:"review_count"`
	Latitude     *float64       `json:"latitude,omitempty"`
	Longitude    *float64       `json:"longitude,omitempty"`
	TimeZone     string         `json:"time_zone"`
	PropertyType string         `json:"property_type"`
	Status       PropertyStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (p *Property) GetID() string { return p.ID.String() }

// Listable reports whether the property may appear in search results.
func (p *Property) Listable() bool {
	return p.Status == PropertyStatusAvailable && len(p.Images) > 0
}
