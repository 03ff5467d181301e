package client

import (
	"context"
	"net/http"

	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/routes"
)

func (c *Client) authenticate(ctx context.Context, route string, body any) (*dtos.AuthResponse, error) {
	var resp dtos.AuthResponse
	if err := c.do(ctx, request{method: http.MethodPost, route: route, body: body}, &resp); err != nil {
		return nil, err
	}
	c.SetTokens(resp.AccessToken, resp.RefreshToken)
	return &resp, nil
}

func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*dtos.AuthResponse, error) {
	return c.authenticate(ctx, routes.AuthSignUp, dtos.SignUpRequest{Email: email, Password: password, DisplayName: displayName})
}

func (c *Client) Login(ctx context.Context, email, password string) (*dtos.AuthResponse, error) {
	return c.authenticate(ctx, routes.AuthLogin, dtos.LoginRequest{Email: email, Password: password})
}

func (c *Client) SignInWithGoogle(ctx context.Context, idToken string) (*dtos.AuthResponse, error) {
	return c.authenticate(ctx, routes.AuthGoogle, dtos.GoogleSignInRequest{IDToken: idToken})
}

// refreshIfStale rotates the token pair unless another caller already
// replaced the access token that failed.
func (c *Client) refreshIfStale(ctx context.Context, staleAccess string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	access, refresh := c.Tokens()
	if access != staleAccess {
		return nil
	}
	_, err := c.authenticate(ctx, routes.AuthRefresh, dtos.RefreshTokenRequest{RefreshToken: refresh})
	return err
}

// Refresh rotates the token pair explicitly.
func (c *Client) Refresh(ctx context.Context) (*dtos.AuthResponse, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	_, refresh := c.Tokens()
	return c.authenticate(ctx, routes.AuthRefresh, dtos.RefreshTokenRequest{RefreshToken: refresh})
}

// Logout revokes the refresh token server side and always clears the
// local pair, even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	_, refresh := c.Tokens()
	var err error
	if refresh != "" {
		err = c.do(ctx, request{method: http.MethodPost, route: routes.AuthLogout, body: dtos.LogoutRequest{RefreshToken: refresh}}, nil)
	}
	c.SetTokens("", "")
	return err
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, request{method: http.MethodPost, route: routes.AuthPasswordReset, body: dtos.PasswordResetRequest{Email: email}}, nil)
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		route:  routes.AuthPasswordResetConfirm,
		body:   dtos.PasswordResetConfirmRequest{Token: token, NewPassword: newPassword},
	}, nil)
}

// Session asks the server who the current token belongs to. Without a
// token the answer is anonymous.
func (c *Client) Session(ctx context.Context) (*dtos.SessionResponse, error) {
	var resp dtos.SessionResponse
	if err := c.do(ctx, request{method: http.MethodGet, route: routes.Session, auth: true}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := c.do(ctx, request{method: http.MethodGet, route: routes.Profile, auth: true}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProfileUpdate is a partial profile patch; nil fields are left alone.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	PhoneNumber *string
	Photo       *File
}

func (c *Client) UpdateProfile(ctx context.Context, u ProfileUpdate) (*models.UserProfile, error) {
	form := newMultipart()
	if u.DisplayName != nil {
		form.field("display_name", *u.DisplayName)
	}
	if u.Bio != nil {
		form.field("bio", *u.Bio)
	}
	if u.PhoneNumber != nil {
		form.field("phone_number", *u.PhoneNumber)
	}
	if u.Photo != nil {
		form.file("photo", *u.Photo)
	}

	var p models.UserProfile
	if err := c.do(ctx, request{method: http.MethodPatch, route: routes.Profile, form: form, auth: true}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
