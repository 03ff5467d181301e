package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mhsenam/rentmio/internal/config"
	"github.com/mhsenam/rentmio/internal/constants"
	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/repositories"
	"github.com/mhsenam/rentmio/internal/storage"
	"github.com/mhsenam/rentmio/internal/utils"
)

const resetTokenBytes = 32

type AuthService interface {
	SignUp(ctx context.Context, req dtos.SignUpRequest) (*dtos.AuthResponse, error)
	Login(ctx context.Context, req dtos.LoginRequest) (*dtos.AuthResponse, error)
	SignInWithGoogle(ctx context.Context, idToken string) (*dtos.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dtos.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error

	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error

	// ResolveSession maps an optional authenticated user id to a session.
	ResolveSession(ctx context.Context, userID string, authenticated bool) *dtos.SessionResponse
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req dtos.UpdateProfileRequest, photo *Upload) (*models.UserProfile, error)
}

type authService struct {
	cfg        *config.Config
	identities repositories.IdentityRepository
	profiles   repositories.ProfileRepository
	tokens     repositories.TokenRepository
	jwt        JWTService
	google     GoogleVerifier
	notifier   Notifier
	blobs      storage.BlobStore
	optimizer  *storage.ImageOptimizer
}

func NewAuthService(
	cfg *config.Config,
	identities repositories.IdentityRepository,
	profiles repositories.ProfileRepository,
	tokens repositories.TokenRepository,
	jwtService JWTService,
	google GoogleVerifier,
	notifier Notifier,
	blobs storage.BlobStore,
	optimizer *storage.ImageOptimizer,
) AuthService {
	return &authService{
		cfg:        cfg,
		identities: identities,
		profiles:   profiles,
		tokens:     tokens,
		jwt:        jwtService,
		google:     google,
		notifier:   notifier,
		blobs:      blobs,
		optimizer:  optimizer,
	}
}

func invalidCredentials() error {
	return utils.NewAppError(http.StatusUnauthorized, utils.ErrCodeInvalidCredentials, "Invalid email or password", utils.ErrInvalidCredentials)
}

// ---------------------------------------------------------------------
// Sign-up / Login
// ---------------------------------------------------------------------

func (s *authService) SignUp(ctx context.Context, req dtos.SignUpRequest) (*dtos.AuthResponse, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	identity := &models.Identity{
		Email:        req.Email,
		PasswordHash: &hash,
		Provider:     models.AuthProviderPassword,
		DisplayName:  strings.TrimSpace(req.DisplayName),
	}
	profile, err := s.identities.CreateWithProfile(ctx, identity)
	if err != nil {
		if errors.Is(err, utils.ErrEmailExists) {
			return nil, utils.NewAppError(http.StatusConflict, utils.ErrCodeEmailExists, "An account with this email already exists", err)
		}
		return nil, err
	}

	utils.Logger.WithField("userID", identity.ID).Info("identity created")
	return s.issue(ctx, identity.ID, profile)
}

func (s *authService) Login(ctx context.Context, req dtos.LoginRequest) (*dtos.AuthResponse, error) {
	identity, err := s.identities.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if identity == nil || identity.PasswordHash == nil {
		return nil, invalidCredentials()
	}
	if !utils.CheckPasswordHash(req.Password, *identity.PasswordHash) {
		return nil, invalidCredentials()
	}
	return s.issue(ctx, identity.ID, nil)
}

// SignInWithGoogle links by provider subject first, then by verified
// email, and otherwise creates a new identity.
func (s *authService) SignInWithGoogle(ctx context.Context, idToken string) (*dtos.AuthResponse, error) {
	gid, err := s.google.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, ErrInvalidGoogleToken) {
			return nil, utils.NewAppError(http.StatusUnauthorized, utils.ErrCodeInvalidCredentials, "Google sign-in failed", err)
		}
		return nil, utils.NewAppError(http.StatusBadGateway, utils.ErrCodeExternalServiceFailure, "Could not reach Google", err)
	}

	identity, err := s.identities.GetByProviderSubject(ctx, models.AuthProviderGoogle, gid.Subject)
	if err != nil {
		return nil, err
	}
	if identity == nil && gid.EmailVerified {
		if identity, err = s.identities.GetByEmail(ctx, gid.Email); err != nil {
			return nil, err
		}
	}
	if identity != nil {
		return s.issue(ctx, identity.ID, nil)
	}

	identity = &models.Identity{
		Email:           gid.Email,
		Provider:        models.AuthProviderGoogle,
		ProviderSubject: &gid.Subject,
		DisplayName:     gid.Name,
	}
	if gid.Picture != "" {
		identity.PhotoURL = &gid.Picture
	}
	if identity.DisplayName == "" {
		identity.DisplayName = strings.Split(gid.Email, "@")[0]
	}
	profile, err := s.identities.CreateWithProfile(ctx, identity)
	if err != nil {
		if errors.Is(err, utils.ErrEmailExists) {
			return nil, utils.NewAppError(http.StatusConflict, utils.ErrCodeEmailExists, "An account with this email already exists", err)
		}
		return nil, err
	}
	return s.issue(ctx, identity.ID, profile)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dtos.AuthResponse, error) {
	access, refresh, _, err := s.jwt.RefreshToken(ctx, refreshToken)
	switch {
	case errors.Is(err, ErrInvalidRefreshToken):
		return nil, utils.NewAppError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid refresh token", err)
	case errors.Is(err, ErrRefreshTokenExpired):
		return nil, utils.NewAppError(http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Refresh token expired", err)
	case err != nil:
		return nil, err
	}
	return &dtos.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwt.AccessTokenTTL().Seconds()),
	}, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	return s.jwt.Logout(ctx, refreshToken)
}

func (s *authService) issue(ctx context.Context, userID uuid.UUID, profile *models.UserProfile) (*dtos.AuthResponse, error) {
	access, err := s.jwt.GenerateAccessToken(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return &dtos.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwt.AccessTokenTTL().Seconds()),
		Profile:      profile,
	}, nil
}

// ---------------------------------------------------------------------
// Password reset
// ---------------------------------------------------------------------

// RequestPasswordReset never reveals whether the email is registered.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	logger := utils.Logger.WithField("op", "RequestPasswordReset")

	identity, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if identity == nil || identity.PasswordHash == nil {
		logger.Debug("no password identity for email; nothing to send")
		return nil
	}

	raw, err := utils.RandomToken(resetTokenBytes)
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(s.cfg.PasswordResetExpiry)
	if err := s.tokens.CreatePasswordReset(ctx, identity.ID, raw, expiresAt); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.cfg.AppUrl, "/"), url.QueryEscape(raw))
	minutes := int(s.cfg.PasswordResetExpiry.Minutes())
	plain := fmt.Sprintf("Reset your password: %s\nThe link expires in %d minutes.", link, minutes)
	html := fmt.Sprintf(passwordResetEmailHTML, link, link, minutes, time.Now().Year())

	if err := s.notifier.SendEmail(ctx, identity.DisplayName, identity.Email, constants.EmailSubjectPasswordReset, plain, html); err != nil {
		logger.WithError(err).WithField("userID", identity.ID).Error("password reset email failed")
		return err
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	userID, err := s.tokens.ConsumePasswordReset(ctx, token, hash)
	if err != nil {
		return err
	}
	if userID == uuid.Nil {
		return utils.NewAppError(http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid or expired reset token", nil)
	}
	utils.Logger.WithField("userID", userID).Info("password reset; all refresh tokens revoked")
	return nil
}

// ---------------------------------------------------------------------
// Session / Profile
// ---------------------------------------------------------------------

func (s *authService) ResolveSession(ctx context.Context, userID string, authenticated bool) *dtos.SessionResponse {
	if !authenticated {
		return &dtos.SessionResponse{State: dtos.SessionAnonymous}
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return &dtos.SessionResponse{State: dtos.SessionAnonymous}
	}

	resp := &dtos.SessionResponse{State: dtos.SessionAuthenticated, UserID: uid.String()}
	profile, err := s.loadOrCreateProfile(ctx, uid)
	switch {
	case errors.Is(err, errIdentityGone):
		return &dtos.SessionResponse{State: dtos.SessionAnonymous}
	case err != nil:
		utils.Logger.WithError(err).WithField("userID", uid).Error("session profile load failed")
		resp.Error = ErrProfileLoadFailed.Error()
		return resp
	}
	resp.Profile = profile
	return resp
}

var errIdentityGone = errors.New("identity no longer exists")

// loadOrCreateProfile backfills a missing profile from the identity record.
func (s *authService) loadOrCreateProfile(ctx context.Context, uid uuid.UUID) (*models.UserProfile, error) {
	profile, err := s.profiles.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	identity, err := s.identities.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, errIdentityGone
	}
	utils.Logger.WithField("userID", uid).Info("profile missing; creating from identity")
	return s.profiles.CreateIfMissing(ctx, models.NewProfileFromIdentity(identity))
}

func (s *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	profile, err := s.loadOrCreateProfile(ctx, userID)
	if errors.Is(err, errIdentityGone) {
		return nil, utils.NewAppError(http.StatusNotFound, utils.ErrCodeNotFound, "User not found", err)
	}
	return profile, err
}

// UpdateProfile uploads the optional photo first, then patches the
// profile under optimistic locking. A failed patch removes the new blob.
func (s *authService) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	req dtos.UpdateProfileRequest,
	photo *Upload,
) (*models.UserProfile, error) {
	logger := utils.Logger.WithFields(logrus.Fields{"op": "UpdateProfile", "userID": userID})

	if _, err := s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	var newPhotoURL, newPhotoKey string
	if photo != nil {
		data, err := s.optimizer.Optimize(photo.Data)
		if err != nil {
			if errors.Is(err, storage.ErrImageTooLarge) {
				return nil, utils.NewAppError(http.StatusRequestEntityTooLarge, utils.ErrCodeFileTooLarge, err.Error(), err)
			}
			return nil, utils.NewAppError(http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Unsupported image", err)
		}
		newPhotoKey = storage.ProfilePhotoKey(userID, photo.Filename)
		if newPhotoURL, err = s.blobs.Put(ctx, newPhotoKey, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("upload profile photo: %w", err)
		}
	}

	var oldPhotoURL *string
	var updated *models.UserProfile
	err := s.profiles.UpdateWithRetry(ctx, userID, func(p *models.UserProfile) error {
		if req.DisplayName != nil {
			p.DisplayName = strings.TrimSpace(*req.DisplayName)
		}
		if req.Bio != nil {
			p.Bio = req.Bio
		}
		if req.PhoneNumber != nil {
			p.PhoneNumber = req.PhoneNumber
		}
		if newPhotoURL != "" {
			oldPhotoURL = p.PhotoURL
			p.PhotoURL = &newPhotoURL
		}
		updated = p
		return nil
	})
	if err != nil {
		if newPhotoKey != "" {
			if delErr := s.blobs.Delete(ctx, newPhotoKey); delErr != nil {
				logger.WithError(delErr).Warn("failed to remove orphaned profile photo")
			}
		}
		if errors.Is(err, utils.ErrRowVersionConflict) {
			return nil, utils.NewAppError(http.StatusConflict, utils.ErrCodeRowVersionConflict, "Profile was modified concurrently; try again", err)
		}
		return nil, err
	}

	if oldPhotoURL != nil {
		if key, ok := s.blobs.KeyFromURL(*oldPhotoURL); ok {
			if err := s.blobs.Delete(ctx, key); err != nil {
				logger.WithError(err).Warn("failed to remove previous profile photo")
			}
		}
	}
	logger.Info("profile updated")
	return updated, nil
}
