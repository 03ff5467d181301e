package search

import (
	"strconv"
	"strings"

	"github.com/mhsenam/rentmio/internal/models"
)

// Query is either a StructuredQuery or a TextSearchQuery. The two
// strategies are never merged: a term routes the whole request to the
// text index.
type Query interface {
	Constraints() models.PropertyFilter
	cacheParams() map[string]string
}

// StructuredQuery runs the fixed-order predicate listing against Postgres.
type StructuredQuery struct {
	Filter models.PropertyFilter
}

// TextSearchQuery runs against the text index, which applies Filter itself.
type TextSearchQuery struct {
	Term   string
	Filter models.PropertyFilter
}

// NewQuery picks the strategy: a non-blank term selects text search.
func NewQuery(term string, f models.PropertyFilter) Query {
	if t := strings.TrimSpace(term); t != "" {
		return TextSearchQuery{Term: t, Filter: f}
	}
	return StructuredQuery{Filter: f}
}

func (q StructuredQuery) Constraints() models.PropertyFilter { return q.Filter }

func (q StructuredQuery) cacheParams() map[string]string {
	p := filterParams(q.Filter)
	p["strategy"] = "structured"
	return p
}

func (q TextSearchQuery) Constraints() models.PropertyFilter { return q.Filter }

func (q TextSearchQuery) cacheParams() map[string]string {
	p := filterParams(q.Filter)
	p["strategy"] = "text"
	p["term"] = strings.ToLower(q.Term)
	return p
}

func filterParams(f models.PropertyFilter) map[string]string {
	p := map[string]string{}
	if f.MinPrice != nil {
		p["min_price"] = strconv.FormatFloat(*f.MinPrice, 'f', -1, 64)
	}
	if f.MaxPrice != nil {
		p["max_price"] = strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64)
	}
	if f.Bedrooms != nil {
		p["bedrooms"] = strconv.Itoa(*f.Bedrooms)
	}
	if f.Bathrooms != nil {
		p["bathrooms"] = strconv.FormatFloat(*f.Bathrooms, 'f', -1, 64)
	}
	if f.PropertyType != nil {
		p["property_type"] = *f.PropertyType
	}
	if f.Location != nil {
		p["location"] = *f.Location
	}
	return p
}
