package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/mhsenam/rentmio/internal/utils"
)

// defaultUpdateAttempts bounds how often a lost compare-and-set is replayed
// before the caller sees ErrRowVersionConflict.
const defaultUpdateAttempts = 3

// RowVersioned is implemented by pointer models that embed models.Versioned.
// Listings, bookings and profiles all qualify.
type RowVersioned interface {
	comparable
	GetID() string
	GetRowVersion() int64
	SetRowVersion(int64)
}

// FetchFunc loads the current row. A nil result means the row is gone.
type FetchFunc[T RowVersioned] func(ctx context.Context, id string) (T, error)

// CompareAndSetFunc writes entity only when the stored row_version still
// equals expected; zero affected rows signals a concurrent writer.
type CompareAndSetFunc[T RowVersioned] func(ctx context.Context, entity T, expected int64) (pgconn.CommandTag, error)

// WithRetry applies mutate to a fresh copy of the row and persists it with
// compare-and-set, replaying up to attempts times when another writer wins.
func WithRetry[T RowVersioned](
	ctx context.Context,
	attempts int,
	id string,
	fetch FetchFunc[T],
	save CompareAndSetFunc[T],
	mutate func(T) error,
) error {
	for i := 0; i < attempts; i++ {
		done, err := applyOnce(ctx, id, fetch, save, mutate)
		if err != nil || done {
			return err
		}
		utils.Logger.WithField("id", id).WithField("attempt", i+1).Debug("row_version moved underneath update, replaying")
	}
	return fmt.Errorf("%w: gave up on %q after %d attempts", utils.ErrRowVersionConflict, id, attempts)
}

// applyOnce reports done=false only when the write lost a race.
func applyOnce[T RowVersioned](
	ctx context.Context,
	id string,
	fetch FetchFunc[T],
	save CompareAndSetFunc[T],
	mutate func(T) error,
) (bool, error) {
	var missing T
	entity, err := fetch(ctx, id)
	switch {
	case err != nil:
		return false, err
	case entity == missing:
		return false, pgx.ErrNoRows
	}

	seen := entity.GetRowVersion()
	if err := mutate(entity); err != nil {
		return false, err
	}

	tag, err := save(ctx, entity, seen)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}
	entity.SetRowVersion(seen + 1)
	return true, nil
}
