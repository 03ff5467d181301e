package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mhsenam/rentmio/internal/models"
)

type propertyGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
}

// DocumentIndex is the write side of a text index.
type DocumentIndex interface {
	Upsert(ctx context.Context, p *models.Property) error
	Remove(ctx context.Context, id uuid.UUID) error
}

type invalidator interface {
	Invalidate(ctx context.Context, ns string)
}

// Indexer reacts to property events by dropping cached search pages and,
// when a document index is configured, syncing it.
type Indexer struct {
	props     propertyGetter
	index     DocumentIndex
	cache     invalidator
	namespace string
}

// NewIndexer accepts nil index and nil cache.
func NewIndexer(props propertyGetter, index DocumentIndex, cache invalidator, namespace string) *Indexer {
	return &Indexer{props: props, index: index, cache: cache, namespace: namespace}
}

func (ix *Indexer) Handle(ctx context.Context, ev PropertyEvent) error {
	if ix.cache != nil {
		ix.cache.Invalidate(ctx, ix.namespace)
	}
	if ix.index == nil {
		return nil
	}

	if ev.Action == ActionDelete {
		return ix.index.Remove(ctx, ev.PropertyID)
	}

	p, err := ix.props.GetByID(ctx, ev.PropertyID)
	if err != nil {
		return fmt.Errorf("load property %s: %w", ev.PropertyID, err)
	}
	if p == nil || !p.Listable() {
		return ix.index.Remove(ctx, ev.PropertyID)
	}
	return ix.index.Upsert(ctx, p)
}
