package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgconn"

	"github.com/mhsenam/rentmio/internal/repositories"
	"github.com/mhsenam/rentmio/internal/utils"
)

// One retry on transient network errors (EOF, closed connection).
const cleanupRetryDelay = 3 * time.Second

// TokenCleanupService removes expired refresh tokens and password resets each night.
type TokenCleanupService struct {
	tokens repositories.TokenRepository
	delay  time.Duration
}

func NewTokenCleanupService(tokens repositories.TokenRepository) *TokenCleanupService {
	return &TokenCleanupService{tokens: tokens, delay: cleanupRetryDelay}
}

// runWithRetry executes op(ctx) and, if it returns a transient network
// error, waits a moment then retries once.
func (s *TokenCleanupService) runWithRetry(ctx context.Context, op func(context.Context) (int64, error)) (int64, error) {
	n, err := op(ctx)
	if err == nil {
		return n, nil
	}
	if errors.Is(err, io.EOF) || pgconn.SafeToRetry(err) ||
		strings.Contains(err.Error(), "connection was closed") {
		utils.Logger.WithError(err).Warn("token cleanup hit transient DB error; retrying once")
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(s.delay):
		}
		return op(ctx)
	}
	return 0, err
}

func (s *TokenCleanupService) CleanupDaily(ctx context.Context) error {
	n, err := s.runWithRetry(ctx, s.tokens.CleanupExpired)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to cleanup expired tokens")
		return err
	}
	utils.Logger.Infof("Daily token cleanup completed; %d rows removed.", n)
	return nil
}
