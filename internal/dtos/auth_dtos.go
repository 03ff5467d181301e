package dtos

import "github.com/mhsenam/rentmio/internal/models"

// ----------------------
// Sign-up / Login
// ----------------------

type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"required,min=2,max=80"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleSignInRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// AuthResponse is returned by every endpoint that issues a token pair.
type AuthResponse struct {
	AccessToken  string              `json:"access_token"`
	RefreshToken string              `json:"refresh_token"`
	ExpiresIn    int64               `json:"expires_in"`
	Profile      *models.UserProfile `json:"profile,omitempty"`
}

// ----------------------
// Refresh Token
// ----------------------

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required,len=64"`
}

// ----------------------
// Logout
// ----------------------

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required,len=64"`
}

// ----------------------
// Password reset
// ----------------------

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required,len=64"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// ----------------------
// Session
// ----------------------

type SessionState string

const (
	SessionAuthenticated SessionState = "authenticated"
	SessionAnonymous     SessionState = "anonymous"
)

// SessionResponse is the server's view of the caller. Profile is nil when
// anonymous, or when the profile could not be loaded (Error is then set).
type SessionResponse struct {
	State   SessionState        `json:"state"`
	UserID  string              `json:"user_id,omitempty"`
	Profile *models.UserProfile `json:"profile,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// ----------------------
// Profile
// ----------------------

// UpdateProfileRequest holds the text fields of the multipart profile
// patch. The optional photo travels as the "photo" file part.
type UpdateProfileRequest struct {
	DisplayName *string `validate:"omitempty,min=2,max=80"`
	Bio         *string `validate:"omitempty,max=500"`
	PhoneNumber *string `validate:"omitempty,e164"`
}
