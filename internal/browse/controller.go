// Package browse owns the filter state and accumulated results of one
// property listing view.
package browse

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mhsenam/rentmio/internal/client"
	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/search"
	"github.com/mhsenam/rentmio/internal/utils"
)

const DefaultPageSize = 8

// DefaultPriceRange is what ClearFilters resets to.
var DefaultPriceRange = PriceRange{Min: 0, Max: 1000}

// Fetcher is satisfied by *client.Client.
type Fetcher interface {
	SearchProperties(ctx context.Context, p client.SearchParams) (*dtos.PropertyPageResponse, error)
}

type PriceRange struct {
	Min float64
	Max float64
}

// Filter is the user-facing filter set. A blank Term means structured
// listing; anything else routes the query to text search.
type Filter struct {
	Term string
	models.PropertyFilter
}

// Query converts the filter into its search strategy.
func (f Filter) Query() search.Query {
	return search.NewQuery(f.Term, f.PropertyFilter)
}

type Controller struct {
	api      Fetcher
	pageSize int

	loading atomic.Bool

	mu         sync.RWMutex
	filter     Filter
	cursor     string
	properties []*models.Property
	hasMore    bool
	fetched    bool
	err        error
	// generation discards pages that belong to a replaced filter set
	generation uint64
}

func NewController(api Fetcher) *Controller {
	return &Controller{api: api, pageSize: DefaultPageSize}
}

// WithPageSize overrides DefaultPageSize; non-positive values are ignored.
func (c *Controller) WithPageSize(n int) *Controller {
	if n > 0 {
		c.pageSize = n
	}
	return c
}

// ApplyFilters replaces the filter set with f plus the explicit price
// range and reloads from the first page.
func (c *Controller) ApplyFilters(ctx context.Context, f Filter, pr PriceRange) error {
	f.Term = strings.TrimSpace(f.Term)
	f.MinPrice = utils.Ptr(pr.Min)
	f.MaxPrice = utils.Ptr(pr.Max)
	return c.restart(ctx, f)
}

// ClearFilters resets to the full default price range with no other
// constraint and reloads from the first page.
func (c *Controller) ClearFilters(ctx context.Context) error {
	return c.ApplyFilters(ctx, Filter{}, DefaultPriceRange)
}

func (c *Controller) restart(ctx context.Context, f Filter) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.filter = f
	c.cursor = ""
	c.properties = nil
	c.hasMore = false
	c.fetched = false
	c.err = nil
	c.mu.Unlock()

	c.loading.Store(true)
	return c.fetch(ctx, gen, f, "")
}

// LoadMore appends the next page. It does nothing while a fetch is in
// flight or once the last page has been seen.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.RLock()
	more, gen, f, cursor := c.hasMore, c.generation, c.filter, c.cursor
	c.mu.RUnlock()
	if !more {
		return nil
	}
	if !c.loading.CompareAndSwap(false, true) {
		return nil
	}
	return c.fetch(ctx, gen, f, cursor)
}

func (c *Controller) fetch(ctx context.Context, gen uint64, f Filter, cursor string) error {
	page, err := c.api.SearchProperties(ctx, client.SearchParams{
		Query:  f.Query(),
		Cursor: cursor,
		Limit:  c.pageSize,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		// a newer filter set owns the loading flag now
		return err
	}
	c.loading.Store(false)
	if err != nil {
		c.err = err
		return err
	}

	c.properties = append(c.properties, page.Properties...)
	c.cursor = page.NextCursor
	// the server only hands out a cursor after a full page
	c.hasMore = page.NextCursor != ""
	c.fetched = true
	return nil
}

// Properties returns a copy of the accumulated list.
func (c *Controller) Properties() []*models.Property {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.Property, len(c.properties))
	copy(out, c.properties)
	return out
}

func (c *Controller) Filter() Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

func (c *Controller) HasMore() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hasMore
}

func (c *Controller) Loading() bool { return c.loading.Load() }

// Err is the error of the last fetch, if it failed.
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Empty reports the "no results" state: the first page came back empty
// without an error.
func (c *Controller) Empty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetched && c.err == nil && len(c.properties) == 0
}
