package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/services"
	"github.com/mhsenam/rentmio/internal/utils"
)

// stubAuth implements only what each test sets; anything else panics.
type stubAuth struct {
	services.AuthService

	signUp       func(dtos.SignUpRequest) (*dtos.AuthResponse, error)
	resetRequest func(email string) error
	session      func(userID string, authenticated bool) *dtos.SessionResponse
	update       func(uuid.UUID, dtos.UpdateProfileRequest, *services.Upload) (*models.UserProfile, error)
}

func (s *stubAuth) SignUp(_ context.Context, req dtos.SignUpRequest) (*dtos.AuthResponse, error) {
	return s.signUp(req)
}

func (s *stubAuth) RequestPasswordReset(_ context.Context, email string) error {
	return s.resetRequest(email)
}

func (s *stubAuth) ResolveSession(_ context.Context, userID string, authenticated bool) *dtos.SessionResponse {
	return s.session(userID, authenticated)
}

func (s *stubAuth) UpdateProfile(
	_ context.Context,
	userID uuid.UUID,
	req dtos.UpdateProfileRequest,
	photo *services.Upload,
) (*models.UserProfile, error) {
	return s.update(userID, req, photo)
}

func TestSignUpHandler(t *testing.T) {
	var got dtos.SignUpRequest
	c := NewAuthController(&stubAuth{signUp: func(req dtos.SignUpRequest) (*dtos.AuthResponse, error) {
		got = req
		return &dtos.AuthResponse{AccessToken: "a", RefreshToken: "r", ExpiresIn: 900}, nil
	}})

	body := `{"email":"ada@example.com","password":"correct horse","display_name":"Ada"}`
	rec := httptest.NewRecorder()
	c.SignUpHandler(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Contains(t, rec.Body.String(), `"access_token":"a"`)
}

func TestSignUpHandlerValidatesBeforeCallingService(t *testing.T) {
	c := NewAuthController(&stubAuth{signUp: func(dtos.SignUpRequest) (*dtos.AuthResponse, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}})

	rec := httptest.NewRecorder()
	c.SignUpHandler(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignUpHandlerMapsAppErrors(t *testing.T) {
	c := NewAuthController(&stubAuth{signUp: func(dtos.SignUpRequest) (*dtos.AuthResponse, error) {
		return nil, utils.NewAppError(http.StatusConflict, utils.ErrCodeEmailExists, "Email already registered", utils.ErrEmailExists)
	}})

	body := `{"email":"ada@example.com","password":"correct horse","display_name":"Ada"}`
	rec := httptest.NewRecorder()
	c.SignUpHandler(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, utils.ErrCodeEmailExists, decodeError(t, rec).Code)
}

func TestPasswordResetHandlerAlwaysAccepts(t *testing.T) {
	c := NewAuthController(&stubAuth{resetRequest: func(string) error { return errors.New("smtp down") }})

	rec := httptest.NewRecorder()
	c.PasswordResetHandler(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"ada@example.com"}`)))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestSessionHandler(t *testing.T) {
	c := NewAuthController(&stubAuth{session: func(userID string, authenticated bool) *dtos.SessionResponse {
		if !authenticated {
			return &dtos.SessionResponse{State: dtos.SessionAnonymous}
		}
		return &dtos.SessionResponse{State: dtos.SessionAuthenticated, UserID: userID}
	}})

	rec := httptest.NewRecorder()
	c.SessionHandler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"state":"anonymous"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c.SessionHandler(rec, withUser(httptest.NewRequest(http.MethodGet, "/", nil), "u-1"))
	assert.JSONEq(t, `{"state":"authenticated","user_id":"u-1"}`, rec.Body.String())
}

func TestUpdateProfileHandlerReadsMultipart(t *testing.T) {
	uid := uuid.New()
	var gotReq dtos.UpdateProfileRequest
	var gotPhoto *services.Upload
	c := NewAuthController(&stubAuth{update: func(id uuid.UUID, req dtos.UpdateProfileRequest, photo *services.Upload) (*models.UserProfile, error) {
		assert.Equal(t, uid, id)
		gotReq, gotPhoto = req, photo
		return &models.UserProfile{ID: id, DisplayName: "Ada L."}, nil
	}})

	r := multipartRequest(t, map[string][]string{"display_name": {"Ada L."}}, nil)
	rec := httptest.NewRecorder()
	c.UpdateProfileHandler(rec, withUser(r, uid.String()))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotReq.DisplayName)
	assert.Equal(t, "Ada L.", *gotReq.DisplayName)
	assert.Nil(t, gotReq.Bio)
	assert.Nil(t, gotPhoto)
}

func TestUpdateProfileHandlerRequiresUser(t *testing.T) {
	c := NewAuthController(&stubAuth{})
	rec := httptest.NewRecorder()
	c.UpdateProfileHandler(rec, httptest.NewRequest(http.MethodPatch, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
