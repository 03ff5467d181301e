package controllers

import (
	"net/http"

	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/middleware"
	"github.com/mhsenam/rentmio/internal/services"
	"github.com/mhsenam/rentmio/internal/utils"
)

type AuthController struct {
	auth services.AuthService
}

func NewAuthController(auth services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// POST /api/v1/auth/signup
func (c *AuthController) SignUpHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "SignUpHandler")

	var req dtos.SignUpRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	resp, err := c.auth.SignUp(r.Context(), req)
	if err != nil {
		logger.WithError(err).Warn("sign-up failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// POST /api/v1/auth/login
func (c *AuthController) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	resp, err := c.auth.Login(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/auth/google
func (c *AuthController) GoogleSignInHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.GoogleSignInRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	resp, err := c.auth.SignInWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		utils.Logger.WithField("handler", "GoogleSignInHandler").WithError(err).Warn("google sign-in failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/auth/refresh
func (c *AuthController) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.RefreshTokenRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	resp, err := c.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/auth/logout
func (c *AuthController) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.LogoutRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	if err := c.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Signed out"})
}

// POST /api/v1/auth/password-reset
//
// Always 202 so the endpoint cannot be used to probe for accounts.
func (c *AuthController) PasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.PasswordResetRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	if err := c.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		utils.Logger.WithField("handler", "PasswordResetHandler").WithError(err).Error("password reset request failed")
	}
	utils.RespondWithJSON(w, http.StatusAccepted, dtos.MessageResponse{
		Message: "If an account exists for that email, a reset link is on its way",
	})
}

// POST /api/v1/auth/password-reset/confirm
func (c *AuthController) PasswordResetConfirmHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.PasswordResetConfirmRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	if err := c.auth.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Password updated"})
}

// GET /api/v1/session (optional auth)
func (c *AuthController) SessionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	utils.RespondWithJSON(w, http.StatusOK, c.auth.ResolveSession(r.Context(), userID, ok))
}

// GET /api/v1/profile
func (c *AuthController) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	profile, err := c.auth.GetProfile(r.Context(), userID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, profile)
}

// PATCH /api/v1/profile (multipart: display_name, bio, phone_number, photo)
func (c *AuthController) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "UpdateProfileHandler")

	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	logger = logger.WithField("userID", userID)

	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid multipart form", nil, err)
		return
	}
	defer r.MultipartForm.RemoveAll()
	form := r.MultipartForm

	req := dtos.UpdateProfileRequest{
		DisplayName: formPtr(form, "display_name"),
		Bio:         formPtr(form, "bio"),
		PhoneNumber: formPtr(form, "phone_number"),
	}
	if !validateRequest(w, req) {
		return
	}

	photos, err := readUploads(form, "photo")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var photo *services.Upload
	if len(photos) > 0 {
		photo = &photos[0]
	}

	profile, err := c.auth.UpdateProfile(r.Context(), userID, req, photo)
	if err != nil {
		logger.WithError(err).Warn("profile update failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, profile)
}
