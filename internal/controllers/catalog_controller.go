package controllers

import (
	"net/http"

	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/services"
	"github.com/mhsenam/rentmio/internal/utils"
)

type CatalogController struct {
	catalog *services.CatalogService
}

func NewCatalogController(catalog *services.CatalogService) *CatalogController {
	return &CatalogController{catalog: catalog}
}

// GET /api/v1/catalog/categories
func (c *CatalogController) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, dtos.CategoryListResponse{Categories: c.catalog.ListCategories(r.Context())})
}

// GET /api/v1/catalog/experiences?limit=N
func (c *CatalogController) ExperiencesHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := parseOptionalInt(r.URL.Query().Get(dtos.ParamLimit), dtos.ParamLimit)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ExperienceListResponse{
		Experiences: c.catalog.ListExperiences(r.Context(), utils.Val(limit)),
	})
}
