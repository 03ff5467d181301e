package dtos

import "github.com/mhsenam/rentmio/internal/models"

// CreatePropertyRequest holds the text fields of the multipart listing
// form. Images travel as repeated "images" file parts.
type CreatePropertyRequest struct {
	Title        string   `validate:"required,min=10,max=100"`
	Description  string   `validate:"required,min=50,max=2000"`
	Location     string   `validate:"required,min=2"`
	City         string   `validate:"required,min=2"`
	Price        float64  `validate:"required,gte=10,lte=10000"`
	PriceType    string   `validate:"required,oneof=night week month"`
	Bedrooms     int      `validate:"gte=0,lte=50"`
	Bathrooms    float64  `validate:"gte=0,lte=50"`
	Guests       int      `validate:"required,gte=1,lte=100"`
	PropertyType string   `validate:"required,min=2"`
	Amenities    []string `validate:"dive,min=1"`
	Latitude     *float64 `validate:"omitempty,latitude"`
	Longitude    *float64 `validate:"omitempty,longitude"`
}

type UpdatePropertyRequest struct {
	Title        *string   `json:"title,omitempty" validate:"omitempty,min=10,max=100"`
	Description  *string   `json:"description,omitempty" validate:"omitempty,min=50,max=2000"`
	Location     *string   `json:"location,omitempty" validate:"omitempty,min=2"`
	City         *string   `json:"city,omitempty" validate:"omitempty,min=2"`
	Price        *float64  `json:"price,omitempty" validate:"omitempty,gte=10,lte=10000"`
	PriceType    *string   `json:"price_type,omitempty" validate:"omitempty,oneof=night week month"`
	Bedrooms     *int      `json:"bedrooms,omitempty" validate:"omitempty,gte=0,lte=50"`
	Bathrooms    *float64  `json:"bathrooms,omitempty" validate:"omitempty,gte=0,lte=50"`
	Guests       *int      `json:"guests,omitempty" validate:"omitempty,gte=1,lte=100"`
	PropertyType *string   `json:"property_type,omitempty" validate:"omitempty,min=2"`
	Amenities    *[]string `json:"amenities,omitempty"`
	Status       *string   `json:"status,omitempty" validate:"omitempty,oneof=available booked"`
}

// PropertyPageResponse is one page of search results.
type PropertyPageResponse struct {
	Properties []*models.Property `json:"properties"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

type PropertyListResponse struct {
	Properties []*models.Property `json:"properties"`
}

type FavoriteStatusResponse struct {
	PropertyID string `json:"property_id"`
	IsFavorite bool   `json:"is_favorite"`
}

// Query parameters of GET /properties.
const (
	ParamTerm         = "q"
	ParamMinPrice     = "min_price"
	ParamMaxPrice     = "max_price"
	ParamBedrooms     = "bedrooms"
	ParamBathrooms    = "bathrooms"
	ParamLocation     = "location"
	ParamPropertyType = "property_type"
	ParamCursor       = "cursor"
	ParamLimit        = "limit"
)
