package controllers

import (
	"net/http"

	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/services"
	"github.com/mhsenam/rentmio/internal/utils"
)

type FavoriteController struct {
	favorites *services.FavoriteService
}

func NewFavoriteController(favorites *services.FavoriteService) *FavoriteController {
	return &FavoriteController{favorites: favorites}
}

// GET /api/v1/favorites
func (c *FavoriteController) ListHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.PropertyListResponse{
		Properties: c.favorites.ListProperties(r.Context(), userID),
	})
}

// GET /api/v1/favorites/{propertyID}
func (c *FavoriteController) StatusHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	propertyID, err := pathUUID(r, "propertyID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	ok, err := c.favorites.IsFavorite(r.Context(), userID, propertyID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.FavoriteStatusResponse{PropertyID: propertyID.String(), IsFavorite: ok})
}

// POST /api/v1/favorites/{propertyID}
func (c *FavoriteController) AddHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	propertyID, err := pathUUID(r, "propertyID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	if err := c.favorites.Add(r.Context(), userID, propertyID); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.FavoriteStatusResponse{PropertyID: propertyID.String(), IsFavorite: true})
}

// DELETE /api/v1/favorites/{propertyID}
func (c *FavoriteController) RemoveHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	propertyID, err := pathUUID(r, "propertyID")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	if err := c.favorites.Remove(r.Context(), userID, propertyID); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.FavoriteStatusResponse{PropertyID: propertyID.String(), IsFavorite: false})
}
