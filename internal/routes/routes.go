package routes

const (
	Health = "/api/v1/health"
	Media  = "/api/v1/media"

	AuthSignUp               = "/api/v1/auth/signup"
	AuthLogin                = "/api/v1/auth/login"
	AuthGoogle               = "/api/v1/auth/google"
	AuthRefresh              = "/api/v1/auth/refresh"
	AuthLogout               = "/api/v1/auth/logout"
	AuthPasswordReset        = "/api/v1/auth/password-reset"
	AuthPasswordResetConfirm = "/api/v1/auth/password-reset/confirm"

	Session = "/api/v1/session"
	Profile = "/api/v1/profile"

	Properties         = "/api/v1/properties"
	PropertiesFeatured = "/api/v1/properties/featured"
	PropertiesMine     = "/api/v1/properties/mine"
	Property           = "/api/v1/properties/{id}"
	PropertyReviews    = "/api/v1/properties/{id}/reviews"

	Favorites = "/api/v1/favorites"
	Favorite  = "/api/v1/favorites/{propertyID}"

	Conversations        = "/api/v1/conversations"
	ConversationMessages = "/api/v1/conversations/{id}/messages"
	ConversationRead     = "/api/v1/conversations/{id}/read"

	CatalogCategories  = "/api/v1/catalog/categories"
	CatalogExperiences = "/api/v1/catalog/experiences"

	BookingQuote   = "/api/v1/bookings/quote"
	Bookings       = "/api/v1/bookings"
	BookingsMine   = "/api/v1/bookings/mine"
	BookingsHost   = "/api/v1/bookings/hosting"
	BookingConfirm = "/api/v1/bookings/{id}/confirm"
	BookingDecline = "/api/v1/bookings/{id}/decline"
	BookingCancel  = "/api/v1/bookings/{id}/cancel"
)
