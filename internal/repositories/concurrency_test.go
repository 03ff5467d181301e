package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/require"

	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/utils"
)

type stubStore struct {
	row   *models.Booking
	races int
	calls int
}

func (s *stubStore) get(_ context.Context, _ string) (*models.Booking, error) {
	if s.row == nil {
		return nil, nil
	}
	cp := *s.row
	return &cp, nil
}

func (s *stubStore) update(_ context.Context, b *models.Booking, expected int64) (pgconn.CommandTag, error) {
	s.calls++
	if s.races > 0 {
		s.races--
		s.row.RowVersion++
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	if expected != s.row.RowVersion {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	s.row.Status = b.Status
	s.row.RowVersion++
	return pgconn.CommandTag("UPDATE 1"), nil
}

func TestWithRetrySucceedsAfterLostRace(t *testing.T) {
	st := &stubStore{row: &models.Booking{Versioned: models.Versioned{RowVersion: 1}}, races: 1}

	err := WithRetry(context.Background(), 3, "b1", st.get, st.update, func(b *models.Booking) error {
		b.Status = models.BookingStatusConfirmed
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 2, st.calls)
	require.Equal(t, models.BookingStatusConfirmed, st.row.Status)
}

func TestWithRetryGivesUpWithConflict(t *testing.T) {
	st := &stubStore{row: &models.Booking{Versioned: models.Versioned{RowVersion: 1}}, races: 10}

	err := WithRetry(context.Background(), 3, "b1", st.get, st.update, func(*models.Booking) error { return nil })

	require.ErrorIs(t, err, utils.ErrRowVersionConflict)
	require.Equal(t, 3, st.calls)
}

func TestWithRetryMissingEntity(t *testing.T) {
	st := &stubStore{}
	err := WithRetry(context.Background(), 3, "gone", st.get, st.update, func(*models.Booking) error { return nil })
	require.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestWithRetryMutateErrorStops(t *testing.T) {
	st := &stubStore{row: &models.Booking{}}
	boom := errors.New("boom")
	err := WithRetry(context.Background(), 3, "b1", st.get, st.update, func(*models.Booking) error { return boom })
	require.ErrorIs(t, err, boom)
	require.Zero(t, st.calls)
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "uq_conversation_pair_property"}
	require.True(t, IsUniqueViolation(err, ""))
	require.True(t, IsUniqueViolation(err, "uq_conversation_pair_property"))
	require.False(t, IsUniqueViolation(err, "other"))
	require.False(t, IsUniqueViolation(errors.New("x"), ""))
}
