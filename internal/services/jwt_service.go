package services

import (
	"context"
	"crypto/rsa"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mhsenam/rentmio/internal/config"
	"github.com/mhsenam/rentmio/internal/middleware"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/repositories"
	"github.com/mhsenam/rentmio/internal/utils"
)

// refreshTokenBytes yields a 64 character hex token.
const refreshTokenBytes = 32

// ---------------------------------------------------------------------
// JWTService interface
// ---------------------------------------------------------------------

type JWTService interface {
	GenerateAccessToken(ctx context.Context, subjectID uuid.UUID) (string, error)
	// GenerateRefreshToken stores the hash and returns the raw token.
	GenerateRefreshToken(ctx context.Context, subjectID uuid.UUID) (string, error)
	// RefreshToken rotates the pair: the old refresh token is removed
	// before the new pair is issued.
	RefreshToken(ctx context.Context, refreshToken string) (access, refresh string, subjectID uuid.UUID, err error)
	Logout(ctx context.Context, refreshToken string) error
	AccessTokenTTL() time.Duration
}

// ---------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------

type jwtService struct {
	privateKey    *rsa.PrivateKey
	tokenExpiry   time.Duration
	refreshExpiry time.Duration
	tokenRepo     repositories.TokenRepository
}

func NewJWTService(cfg *config.Config, tokenRepo repositories.TokenRepository) JWTService {
	return &jwtService{
		privateKey:    cfg.RSAPrivateKey,
		tokenExpiry:   cfg.TokenExpiry,
		refreshExpiry: cfg.RefreshTokenExpiry,
		tokenRepo:     tokenRepo,
	}
}

func (j *jwtService) AccessTokenTTL() time.Duration { return j.tokenExpiry }

func (j *jwtService) GenerateAccessToken(_ context.Context, subjectID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": middleware.TokenIssuer,
		"sub": subjectID.String(),
		"exp": now.Add(j.tokenExpiry).Unix(),
		"iat": now.Unix(),
		"jti": uuid.NewString(),
	}
	return j.signClaims(claims)
}

func (j *jwtService) GenerateRefreshToken(ctx context.Context, subjectID uuid.UUID) (string, error) {
	raw, err := utils.RandomToken(refreshTokenBytes)
	if err != nil {
		return "", err
	}
	rt := &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    subjectID,
		Token:     raw,
		ExpiresAt: time.Now().Add(j.refreshExpiry),
		CreatedAt: time.Now(),
	}
	if err := j.tokenRepo.CreateRefreshToken(ctx, rt); err != nil {
		return "", err
	}
	return raw, nil
}

func (j *jwtService) RefreshToken(ctx context.Context, refreshToken string) (string, string, uuid.UUID, error) {
	oldToken, err := j.tokenRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		utils.Logger.WithError(err).Error("refresh token lookup failed in jwtService.RefreshToken")
		return "", "", uuid.Nil, err
	}
	if oldToken == nil {
		return "", "", uuid.Nil, ErrInvalidRefreshToken
	}
	if time.Now().After(oldToken.ExpiresAt) {
		_ = j.tokenRepo.DeleteRefreshToken(ctx, refreshToken)
		return "", "", uuid.Nil, ErrRefreshTokenExpired
	}

	// remove old refresh
	if err := j.tokenRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		utils.Logger.WithError(err).Error("failed to remove old refresh token in jwtService.RefreshToken")
		return "", "", uuid.Nil, err
	}

	access, err := j.GenerateAccessToken(ctx, oldToken.UserID)
	if err != nil {
		return "", "", uuid.Nil, err
	}
	refresh, err := j.GenerateRefreshToken(ctx, oldToken.UserID)
	if err != nil {
		return "", "", uuid.Nil, err
	}
	return access, refresh, oldToken.UserID, nil
}

// Logout is a no-op for unknown tokens.
func (j *jwtService) Logout(ctx context.Context, refreshToken string) error {
	if err := j.tokenRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		utils.Logger.WithError(err).Error("failed to remove token in jwtService.Logout")
		return err
	}
	return nil
}

func (j *jwtService) signClaims(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(j.privateKey)
}
