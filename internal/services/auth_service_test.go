package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhsenam/rentmio/internal/config"
	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/storage"
	"github.com/mhsenam/rentmio/internal/utils"
)

type stubGoogle struct {
	id  *GoogleIdentity
	err error
}

func (s stubGoogle) Verify(context.Context, string) (*GoogleIdentity, error) { return s.id, s.err }

type authFixture struct {
	svc        AuthService
	cfg        *config.Config
	identities *memIdentities
	profiles   *memProfiles
	tokens     *memTokens
	notifier   *fakeNotifier
	blobs      *memBlobs
}

func newAuthFixture(t *testing.T, google GoogleVerifier) *authFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	cfg := &config.Config{
		AppUrl:              "http://localhost:8080",
		RSAPrivateKey:       key,
		RSAPublicKey:        &key.PublicKey,
		TokenExpiry:         15 * time.Minute,
		RefreshTokenExpiry:  time.Hour,
		PasswordResetExpiry: 30 * time.Minute,
	}
	profiles := newMemProfiles()
	identities := newMemIdentities(profiles)
	tokens := newMemTokens(identities)
	notifier := &fakeNotifier{}
	blobs := newMemBlobs()

	svc := NewAuthService(cfg, identities, profiles, tokens, NewJWTService(cfg, tokens), google, notifier, blobs, storage.NewImageOptimizer())
	return &authFixture{
		svc:        svc,
		cfg:        cfg,
		identities: identities,
		profiles:   profiles,
		tokens:     tokens,
		notifier:   notifier,
		blobs:      blobs,
	}
}

func (f *authFixture) signUp(t *testing.T, email string) *dtos.AuthResponse {
	t.Helper()
	resp, err := f.svc.SignUp(context.Background(), dtos.SignUpRequest{
		Email:       email,
		Password:    "correct horse",
		DisplayName: "  Ada Tenant ",
	})
	require.NoError(t, err)
	return resp
}

func TestSignUpIssuesVerifiableTokens(t *testing.T) {
	f := newAuthFixture(t, nil)
	resp := f.signUp(t, "Ada@Example.com")

	require.NotNil(t, resp.Profile)
	assert.Equal(t, "ada@example.com", resp.Profile.Email)
	assert.Equal(t, "Ada Tenant", resp.Profile.DisplayName)
	assert.Len(t, resp.RefreshToken, 64)
	assert.Equal(t, int64(900), resp.ExpiresIn)

	parsed, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (any, error) { return f.cfg.RSAPublicKey, nil })
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, resp.Profile.ID.String(), sub)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t, nil)
	f.signUp(t, "ada@example.com")

	_, err := f.svc.SignUp(context.Background(), dtos.SignUpRequest{Email: "ADA@example.com", Password: "another one", DisplayName: "Ada"})
	appErr := requireAppError(t, err, http.StatusConflict)
	assert.Equal(t, utils.ErrCodeEmailExists, appErr.Code)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t, nil)
	f.signUp(t, "ada@example.com")

	_, err := f.svc.Login(context.Background(), dtos.LoginRequest{Email: "ada@example.com", Password: "wrong password"})
	requireAppError(t, err, http.StatusUnauthorized)

	_, err = f.svc.Login(context.Background(), dtos.LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
	requireAppError(t, err, http.StatusUnauthorized)

	resp, err := f.svc.Login(context.Background(), dtos.LoginRequest{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newAuthFixture(t, nil)
	first := f.signUp(t, "ada@example.com")

	second, err := f.svc.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = f.svc.Refresh(context.Background(), first.RefreshToken)
	requireAppError(t, err, http.StatusUnauthorized)

	require.NoError(t, f.svc.Logout(context.Background(), second.RefreshToken))
	_, err = f.svc.Refresh(context.Background(), second.RefreshToken)
	requireAppError(t, err, http.StatusUnauthorized)
}

func TestRefreshExpiredToken(t *testing.T) {
	f := newAuthFixture(t, nil)
	resp := f.signUp(t, "ada@example.com")
	f.tokens.refresh[utils.HashToken(resp.RefreshToken)].ExpiresAt = time.Now().Add(-time.Minute)

	_, err := f.svc.Refresh(context.Background(), resp.RefreshToken)
	appErr := requireAppError(t, err, http.StatusUnauthorized)
	assert.Equal(t, utils.ErrCodeTokenExpired, appErr.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t, nil)
	resp := f.signUp(t, "ada@example.com")
	userID := resp.Profile.ID

	require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "unknown@example.com"))
	assert.Empty(t, f.notifier.emails, "unknown addresses get no email")

	require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "ada@example.com"))
	require.Len(t, f.notifier.emails, 1)
	mail := f.notifier.emails[0]
	assert.Equal(t, "ada@example.com", mail.to)

	start := strings.Index(mail.plain, "token=")
	require.Positive(t, start)
	end := strings.Index(mail.plain[start:], "\n")
	token, err := url.QueryUnescape(mail.plain[start+len("token=") : start+end])
	require.NoError(t, err)

	require.NoError(t, f.svc.ResetPassword(context.Background(), token, "brand new secret"))
	assert.Zero(t, f.tokens.countFor(userID), "reset revokes every refresh token")

	err = f.svc.ResetPassword(context.Background(), token, "second attempt")
	requireAppError(t, err, http.StatusBadRequest)

	_, err = f.svc.Login(context.Background(), dtos.LoginRequest{Email: "ada@example.com", Password: "brand new secret"})
	require.NoError(t, err)
}

func TestSignInWithGoogle(t *testing.T) {
	gid := &GoogleIdentity{Subject: "g-123", Email: "grace@example.com", EmailVerified: true, Name: "Grace"}
	f := newAuthFixture(t, stubGoogle{id: gid})

	first, err := f.svc.SignInWithGoogle(context.Background(), "id-token")
	require.NoError(t, err)
	require.NotNil(t, first.Profile)
	assert.Equal(t, "Grace", first.Profile.DisplayName)

	again, err := f.svc.SignInWithGoogle(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Nil(t, again.Profile, "existing identities are not recreated")
	assert.Len(t, f.identities.rows, 1)
}

func TestSignInWithGoogleLinksVerifiedEmail(t *testing.T) {
	gid := &GoogleIdentity{Subject: "g-456", Email: "ada@example.com", EmailVerified: true}
	f := newAuthFixture(t, stubGoogle{id: gid})
	f.signUp(t, "ada@example.com")

	_, err := f.svc.SignInWithGoogle(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Len(t, f.identities.rows, 1)
}

func TestSignInWithGoogleErrors(t *testing.T) {
	f := newAuthFixture(t, stubGoogle{err: ErrInvalidGoogleToken})
	_, err := f.svc.SignInWithGoogle(context.Background(), "bad")
	requireAppError(t, err, http.StatusUnauthorized)

	f = newAuthFixture(t, stubGoogle{err: utils.ErrExternalServiceFailure})
	_, err = f.svc.SignInWithGoogle(context.Background(), "bad")
	requireAppError(t, err, http.StatusBadGateway)
}

func TestResolveSession(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	assert.Equal(t, dtos.SessionAnonymous, f.svc.ResolveSession(ctx, "", false).State)
	assert.Equal(t, dtos.SessionAnonymous, f.svc.ResolveSession(ctx, "not-a-uuid", true).State)
	assert.Equal(t, dtos.SessionAnonymous, f.svc.ResolveSession(ctx, uuid.NewString(), true).State,
		"a token for a deleted identity resolves to anonymous")

	resp := f.signUp(t, "ada@example.com")
	got := f.svc.ResolveSession(ctx, resp.Profile.ID.String(), true)
	assert.Equal(t, dtos.SessionAuthenticated, got.State)
	require.NotNil(t, got.Profile)
	assert.Empty(t, got.Error)
}

func TestResolveSessionBackfillsMissingProfile(t *testing.T) {
	f := newAuthFixture(t, nil)
	resp := f.signUp(t, "ada@example.com")
	delete(f.profiles.rows, resp.Profile.ID)

	got := f.svc.ResolveSession(context.Background(), resp.Profile.ID.String(), true)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "ada@example.com", got.Profile.Email)
	assert.Contains(t, f.profiles.rows, resp.Profile.ID)
}

func TestResolveSessionProfileLoadFailure(t *testing.T) {
	f := newAuthFixture(t, nil)
	resp := f.signUp(t, "ada@example.com")
	f.profiles.getErr = errors.New("connection refused")

	got := f.svc.ResolveSession(context.Background(), resp.Profile.ID.String(), true)
	assert.Equal(t, dtos.SessionAuthenticated, got.State)
	assert.Nil(t, got.Profile)
	assert.Equal(t, ErrProfileLoadFailed.Error(), got.Error)
}

func TestUpdateProfileReplacesPhoto(t *testing.T) {
	f := newAuthFixture(t, nil)
	resp := f.signUp(t, "ada@example.com")
	uid := resp.Profile.ID

	first, err := f.svc.UpdateProfile(context.Background(), uid, dtos.UpdateProfileRequest{
		Bio:         utils.Ptr("Loves old towns"),
		PhoneNumber: utils.Ptr("+15550001111"),
	}, &Upload{Filename: "me.png", Data: tinyPNG(t)})
	require.NoError(t, err)
	require.NotNil(t, first.PhotoURL)
	assert.Equal(t, "Loves old towns", utils.Val(first.Bio))
	assert.Equal(t, 1, f.blobs.count())

	second, err := f.svc.UpdateProfile(context.Background(), uid, dtos.UpdateProfileRequest{
		DisplayName: utils.Ptr("Ada L."),
	}, &Upload{Filename: "me-2.png", Data: tinyPNG(t)})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", second.DisplayName)
	assert.NotEqual(t, *first.PhotoURL, *second.PhotoURL)
	assert.Equal(t, 1, f.blobs.count(), "the previous photo is removed")
	assert.Equal(t, "+15550001111", utils.Val(second.PhoneNumber))
}

func TestUpdateProfileRejectsNonImagePhoto(t *testing.T) {
	f := newAuthFixture(t, nil)
	resp := f.signUp(t, "ada@example.com")

	_, err := f.svc.UpdateProfile(context.Background(), resp.Profile.ID, dtos.UpdateProfileRequest{
		Bio: utils.Ptr("never saved"),
	}, &Upload{Filename: "me.jpg", Data: []byte("plain text")})

	appErr := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, utils.ErrCodeInvalidPayload, appErr.Code)
	assert.Zero(t, f.blobs.count())

	p, err := f.svc.GetProfile(context.Background(), resp.Profile.ID)
	require.NoError(t, err)
	assert.Nil(t, p.Bio)
}

func TestGetProfileUnknownUser(t *testing.T) {
	f := newAuthFixture(t, nil)
	_, err := f.svc.GetProfile(context.Background(), uuid.New())
	requireAppError(t, err, http.StatusNotFound)

	resp := f.signUp(t, "ada@example.com")
	p, err := f.svc.GetProfile(context.Background(), resp.Profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Tenant", p.DisplayName)
}
