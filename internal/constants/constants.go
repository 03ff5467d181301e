package constants

import "time"

// Cron schedules, always evaluated in UTC.
const (
	PendingImagesSweepCronSpec = "@every 10m"
	TokenCleanupCronSpec       = "10 3 * * *"

	PendingImagesSweepJobTimeout = 5 * time.Minute
	TokenCleanupJobTimeout       = 2 * time.Minute
)

// A pending-images listing older than this is treated as an abandoned upload.
const PendingImagesMaxAge = time.Hour

const (
	FeaturedLimit          = 4
	DefaultExperienceLimit = 4
	MaxExperienceLimit     = 50

	CatalogCacheNamespace = "catalog"
)

// Booking pricing.
const (
	ServiceFeeRate = 0.12
	CleaningFee    = 60.0
)

// Google identity verification. The first call plus three retries, waiting
// 1s, 2s and 4s between them.
const (
	GoogleTokenInfoURL      = "https://oauth2.googleapis.com/tokeninfo"
	GoogleVerifyMaxAttempts = 4
	GoogleVerifyBaseBackoff = time.Second
	GoogleVerifyTimeout     = 5 * time.Second
)

// Email subjects and content
const (
	EmailSubjectPasswordReset   = "Reset your Rentmio password"
	EmailSubjectNewConversation = "New message about %s"
	SMSBookingRequest           = "Rentmio: %s requested %s from %s to %s. Open the app to confirm."
)
