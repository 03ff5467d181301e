package services

import "errors"

var (
	ErrNoImages            = errors.New("at least one image is required")
	ErrTooManyImages       = errors.New("too many images")
	ErrFavoriteNotFound    = errors.New("Favorite not found")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInvalidGoogleToken  = errors.New("invalid google id token")
	ErrProfileLoadFailed   = errors.New("Failed to load user profile data.")
)
