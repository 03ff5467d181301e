package utils

const (
	OrganizationName                      = "Rentmio"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

	// MaxUploadBytes is the ceiling for a single stored image.
	MaxUploadBytes = 1 << 20
	// MaxPropertyImages bounds the image list of one listing.
	MaxPropertyImages = 10
)
