package search

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/mhsenam/rentmio/internal/cache"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/repositories"
	"github.com/mhsenam/rentmio/internal/utils"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50

	// CacheNamespace is invalidated on every property write.
	CacheNamespace = "search"
)

// Page is one slice of results. NextCursor is empty at end of results.
type Page struct {
	Properties []*models.Property `json:"properties"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

// Lister is the structured listing path.
type Lister interface {
	ListAvailable(ctx context.Context, f models.PropertyFilter, after *repositories.PageAfter, limit int) ([]*models.Property, error)
}

// TextIndex is the free-text path. Implementations apply the structured
// filter themselves and only ever return available properties.
type TextIndex interface {
	Search(ctx context.Context, term string, f models.PropertyFilter, after *repositories.PageAfter, limit int) ([]*models.Property, error)
}

type Searcher struct {
	lister Lister
	text   TextIndex
	cache  *cache.TwoLevel
}

// NewSearcher wires both strategies; c may be nil to disable caching.
func NewSearcher(lister Lister, text TextIndex, c *cache.TwoLevel) *Searcher {
	return &Searcher{lister: lister, text: text, cache: c}
}

// ClampPageSize applies the default and the upper bound.
func ClampPageSize(n int) int {
	if n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

func (s *Searcher) Search(ctx context.Context, q Query, cursor string, pageSize int) (*Page, error) {
	pageSize = ClampPageSize(pageSize)
	after, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	var key string
	if s.cache != nil {
		params := q.cacheParams()
		params["cursor"] = cursor
		params["size"] = strconv.Itoa(pageSize)
		key = cache.Key("page", params)

		var cached Page
		if s.cache.GetJSON(ctx, CacheNamespace, key, &cached) {
			return &cached, nil
		}
	}

	var props []*models.Property
	switch qq := q.(type) {
	case TextSearchQuery:
		props, err = s.text.Search(ctx, qq.Term, qq.Filter, after, pageSize)
	case StructuredQuery:
		props, err = s.lister.ListAvailable(ctx, qq.Filter, after, pageSize)
	default:
		return nil, ErrUnknownQuery
	}
	if err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{
			"strategy": q.cacheParams()["strategy"],
		}).Error("property search failed")
		return nil, err
	}

	page := &Page{Properties: make([]*models.Property, 0, len(props))}
	for _, p := range props {
		// the mongo index can lag a status change
		if p.Listable() {
			page.Properties = append(page.Properties, p)
		}
	}
	if len(props) == pageSize {
		page.NextCursor = EncodeCursor(props[len(props)-1])
	}

	if s.cache != nil {
		s.cache.SetJSON(ctx, CacheNamespace, key, page)
	}
	return page, nil
}
