package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/routes"
	"github.com/mhsenam/rentmio/internal/search"
)

// withID fills the single {placeholder} of a route template.
func withID(route string, id uuid.UUID) string {
	start := strings.IndexByte(route, '{')
	end := strings.IndexByte(route, '}')
	if start < 0 || end < start {
		return route
	}
	return route[:start] + id.String() + route[end+1:]
}

// SearchParams is one page request. Query picks the strategy: a
// search.TextSearchQuery sends its term, a search.StructuredQuery does not.
type SearchParams struct {
	Query  search.Query
	Cursor string
	Limit  int
}

func (p SearchParams) values() url.Values {
	v := url.Values{}
	var f models.PropertyFilter
	if p.Query != nil {
		f = p.Query.Constraints()
		if tq, ok := p.Query.(search.TextSearchQuery); ok {
			v.Set(dtos.ParamTerm, tq.Term)
		}
	}
	if f.MinPrice != nil {
		v.Set(dtos.ParamMinPrice, strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		v.Set(dtos.ParamMaxPrice, strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if f.Bedrooms != nil {
		v.Set(dtos.ParamBedrooms, strconv.Itoa(*f.Bedrooms))
	}
	if f.Bathrooms != nil {
		v.Set(dtos.ParamBathrooms, strconv.FormatFloat(*f.Bathrooms, 'f', -1, 64))
	}
	if f.Location != nil {
		v.Set(dtos.ParamLocation, *f.Location)
	}
	if f.PropertyType != nil {
		v.Set(dtos.ParamPropertyType, *f.PropertyType)
	}
	if p.Cursor != "" {
		v.Set(dtos.ParamCursor, p.Cursor)
	}
	if p.Limit > 0 {
		v.Set(dtos.ParamLimit, strconv.Itoa(p.Limit))
	}
	return v
}

func (c *Client) SearchProperties(ctx context.Context, p SearchParams) (*dtos.PropertyPageResponse, error) {
	var resp dtos.PropertyPageResponse
	if err := c.do(ctx, request{method: http.MethodGet, route: routes.Properties, query: p.values()}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) FeaturedProperties(ctx context.Context) ([]*models.Property, error) {
	var resp dtos.PropertyListResponse
	if err := c.do(ctx, request{method: http.MethodGet, route: routes.PropertiesFeatured}, &resp); err != nil {
		return nil, err
	}
	return resp.Properties, nil
}

// GetProperty returns nil, nil when the property does not exist.
func (c *Client) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var p models.Property
	err := c.do(ctx, request{method: http.MethodGet, route: withID(routes.Property, id)}, &p)
	if IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) MyProperties(ctx context.Context) ([]*models.Property, error) {
	var resp dtos.PropertyListResponse
	if err := c.do(ctx, request{method: http.MethodGet, route: routes.PropertiesMine, auth: true}, &resp); err != nil {
		return nil, err
	}
	return resp.Properties, nil
}

func (c *Client) CreateProperty(ctx context.Context, req dtos.CreatePropertyRequest, images []File) (*models.Property, error) {
	form := newMultipart()
	form.field("title", req.Title)
	form.field("description", req.Description)
	form.field("location", req.Location)
	form.field("city", req.City)
	form.field("price", strconv.FormatFloat(req.Price, 'f', -1, 64))
	form.field("price_type", req.PriceType)
	form.field("bedrooms", strconv.Itoa(req.Bedrooms))
	form.field("bathrooms", strconv.FormatFloat(req.Bathrooms, 'f', -1, 64))
	form.field("guests", strconv.Itoa(req.Guests))
	form.field("property_type", req.PropertyType)
	for _, a := range req.Amenities {
		form.field("amenities", a)
	}
	if req.Latitude != nil {
		form.field("latitude", strconv.FormatFloat(*req.Latitude, 'f', -1, 64))
	}
	if req.Longitude != nil {
		form.field("longitude", strconv.FormatFloat(*req.Longitude, 'f', -1, 64))
	}
	for _, img := range images {
		form.file("images", img)
	}

	var p models.Property
	if err := c.do(ctx, request{method: http.MethodPost, route: routes.Properties, form: form, auth: true}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProperty(ctx context.Context, id uuid.UUID, req dtos.UpdatePropertyRequest) (*models.Property, error) {
	var p models.Property
	if err := c.do(ctx, request{method: http.MethodPatch, route: withID(routes.Property, id), body: req, auth: true}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, request{method: http.MethodDelete, route: withID(routes.Property, id), auth: true}, nil)
}

func (c *Client) Favorites(ctx context.Context) ([]*models.Property, error) {
	var resp dtos.PropertyListResponse
	if err := c.do(ctx, request{method: http.MethodGet, route: routes.Favorites, auth: true}, &resp); err != nil {
		return nil, err
	}
	return resp.Properties, nil
}

func (c *Client) AddFavorite(ctx context.Context, propertyID uuid.UUID) error {
	return c.do(ctx, request{method: http.MethodPost, route: withID(routes.Favorite, propertyID), auth: true}, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, propertyID uuid.UUID) error {
	return c.do(ctx, request{method: http.MethodDelete, route: withID(routes.Favorite, propertyID), auth: true}, nil)
}

func (c *Client) IsFavorite(ctx context.Context, propertyID uuid.UUID) (bool, error) {
	var resp dtos.FavoriteStatusResponse
	if err := c.do(ctx, request{method: http.MethodGet, route: withID(routes.Favorite, propertyID), auth: true}, &resp); err != nil {
		return false, err
	}
	return resp.IsFavorite, nil
}

func (c *Client) Categories(ctx context.Context) ([]*models.Category, error) {
	var resp dtos.CategoryListResponse
	if err := c.do(ctx, request{method: http.MethodGet, route: routes.CatalogCategories}, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (c *Client) Experiences(ctx context.Context, limit int) ([]*models.Experience, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set(dtos.ParamLimit, strconv.Itoa(limit))
	}
	var resp dtos.ExperienceListResponse
	if err := c.do(ctx, request{method: http.MethodGet, route: routes.CatalogExperiences, query: q}, &resp); err != nil {
		return nil, err
	}
	return resp.Experiences, nil
}
