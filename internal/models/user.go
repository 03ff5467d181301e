package models

import (
	"time"

	"github.com/google/uuid"
)

type AuthProvider string

const (
	AuthProviderPassword AuthProvider = "password"
	AuthProviderGoogle   AuthProvider = "google"
)

// Identity is the credential record. PasswordHash is nil for external providers.
type Identity struct {
	ID              uuid.UUID    `json:"id"`
	Email           string       `json:"email"`
	PasswordHash    *string      `json:"-"`
	Provider        AuthProvider `json:"provider"`
	ProviderSubject *string      `json:"-"`
	DisplayName     string       `json:"display_name"`
	PhotoURL        *string      `json:"photo_url,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// UserProfile mirrors an Identity and carries the user-editable fields.
type UserProfile struct {
	Versioned

	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u *UserProfile) GetID() string { return u.ID.String() }

// NewProfileFromIdentity builds the minimal profile created on first sign-in.
func NewProfileFromIdentity(id *Identity) *UserProfile {
	return &UserProfile{
		ID:          id.ID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		PhotoURL:    id.PhotoURL,
	}
}

type RefreshToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type PasswordReset struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
