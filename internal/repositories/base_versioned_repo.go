package repositories

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// BaseVersionedRepo is embedded by repositories whose rows carry a
// row_version column. It owns the single-row lookup that the retry loop
// re-reads on every attempt.
type BaseVersionedRepo[T RowVersioned] struct {
	db       DB
	byIDStmt string
	scanRow  func(pgx.Row) (T, error)
}

func NewBaseRepo[T RowVersioned](db DB, byIDStmt string, scanRow func(pgx.Row) (T, error)) *BaseVersionedRepo[T] {
	return &BaseVersionedRepo[T]{db: db, byIDStmt: byIDStmt, scanRow: scanRow}
}

func (b *BaseVersionedRepo[T]) GetByID(ctx context.Context, id string) (T, error) {
	return b.scanRow(b.db.QueryRow(ctx, b.byIDStmt, id))
}

func (b *BaseVersionedRepo[T]) UpdateWithRetry(
	ctx context.Context,
	id string,
	mutate func(T) error,
	save CompareAndSetFunc[T],
) error {
	return WithRetry(ctx, defaultUpdateAttempts, id, b.GetByID, save, mutate)
}
