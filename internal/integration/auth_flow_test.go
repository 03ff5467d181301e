//go:build dev && integration

package integration

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhsenam/rentmio/internal/client"
	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/session"
	"github.com/mhsenam/rentmio/internal/utils"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	marker := filepath.Join(t.TempDir(), "session.json")

	api, err := client.New(baseURL)
	require.NoError(t, err)
	store := session.NewStore(api, marker)
	require.NoError(t, store.Load())
	require.NoError(t, store.Resolve(ctx))
	assert.Equal(t, session.Anonymous, store.Snapshot().State)

	email := "lifecycle-" + uniqueCity() + "@rentmio.test"
	require.NoError(t, store.SignUp(ctx, email, "correct-horse-battery", "Lifecycle User"))
	snap := store.Snapshot()
	require.Equal(t, session.Authenticated, snap.State)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "Lifecycle User", snap.Profile.DisplayName)

	// a second process restores the session from the marker
	api2, err := client.New(baseURL)
	require.NoError(t, err)
	restored := session.NewStore(api2, marker)
	require.NoError(t, restored.Load())
	assert.Equal(t, session.Initializing, restored.Snapshot().State)
	require.NoError(t, restored.Resolve(ctx))
	assert.Equal(t, snap.UserID, restored.Snapshot().UserID)

	updated, err := restored.UpdateProfile(ctx, client.ProfileUpdate{
		Bio:   utils.Ptr("Likes quiet places"),
		Photo: &client.File{Name: "me.png", Data: testPNG(t)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Likes quiet places", utils.Val(updated.Bio))
	assert.NotNil(t, updated.PhotoURL)

	require.NoError(t, restored.SignOut(ctx))
	assert.Equal(t, session.Anonymous, restored.Snapshot().State)
	assert.NoFileExists(t, marker)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ctx := context.Background()
	_, profile := newUser(t, ctx, "wrongpw")

	api, err := client.New(baseURL)
	require.NoError(t, err)
	_, err = api.Login(ctx, profile.Email, "not-the-password")

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, utils.ErrCodeInvalidCredentials, apiErr.Code)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	_, profile := newUser(t, ctx, "dup")

	api, err := client.New(baseURL)
	require.NoError(t, err)
	_, err = api.SignUp(ctx, profile.Email, "correct-horse-battery", "Someone Else")
	assert.True(t, client.IsStatus(err, http.StatusConflict), "got %v", err)
}

func TestRefreshRotatesTokens(t *testing.T) {
	ctx := context.Background()
	api, _ := newUser(t, ctx, "refresh")
	_, oldRefresh := api.Tokens()

	resp, err := api.Refresh(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, oldRefresh, resp.RefreshToken)

	// the rotated-out token is no longer accepted
	stale, err := client.New(baseURL)
	require.NoError(t, err)
	stale.SetTokens("", oldRefresh)
	_, err = stale.Refresh(ctx)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized), "got %v", err)
}

func TestPasswordResetNeverRevealsAccounts(t *testing.T) {
	ctx := context.Background()
	api, err := client.New(baseURL)
	require.NoError(t, err)

	assert.NoError(t, api.RequestPasswordReset(ctx, "nobody-"+uniqueCity()+"@rentmio.test"))
	err = api.ConfirmPasswordReset(ctx, strings.Repeat("0", 64), "a-new-password")
	assert.True(t, client.IsStatus(err, http.StatusBadRequest), "got %v", err)
}

func TestAnonymousSession(t *testing.T) {
	api, err := client.New(baseURL)
	require.NoError(t, err)
	resp, err := api.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dtos.SessionAnonymous, resp.State)
	assert.Nil(t, resp.Profile)
}
