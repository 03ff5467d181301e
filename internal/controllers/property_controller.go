package controllers

import (
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/search"
	"github.com/mhsenam/rentmio/internal/services"
	"github.com/mhsenam/rentmio/internal/utils"
)

type PropertyController struct {
	props *services.PropertyService
}

func NewPropertyController(props *services.PropertyService) *PropertyController {
	return &PropertyController{props: props}
}

// parseFilter reads the structured constraints of GET /properties.
func parseFilter(q url.Values) (models.PropertyFilter, error) {
	var f models.PropertyFilter
	var err error
	if f.MinPrice, err = parseOptionalFloat(q.Get(dtos.ParamMinPrice), dtos.ParamMinPrice); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parseOptionalFloat(q.Get(dtos.ParamMaxPrice), dtos.ParamMaxPrice); err != nil {
		return f, err
	}
	if f.Bedrooms, err = parseOptionalInt(q.Get(dtos.ParamBedrooms), dtos.ParamBedrooms); err != nil {
		return f, err
	}
	if f.Bathrooms, err = parseOptionalFloat(q.Get(dtos.ParamBathrooms), dtos.ParamBathrooms); err != nil {
		return f, err
	}
	if v := strings.TrimSpace(q.Get(dtos.ParamLocation)); v != "" {
		f.Location = &v
	}
	if v := strings.TrimSpace(q.Get(dtos.ParamPropertyType)); v != "" {
		f.PropertyType = &v
	}
	return f, nil
}

// GET /api/v1/properties
func (c *PropertyController) SearchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := parseFilter(q)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	limit, err := parseOptionalInt(q.Get(dtos.ParamLimit), dtos.ParamLimit)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	page, err := c.props.Search(r.Context(), search.NewQuery(q.Get(dtos.ParamTerm), filter), q.Get(dtos.ParamCursor), utils.Val(limit))
	if err != nil {
		utils.Logger.WithField("handler", "SearchHandler").WithError(err).Warn("property search failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.PropertyPageResponse{
		Properties: page.Properties,
		NextCursor: page.NextCursor,
	})
}

// GET /api/v1/properties/featured
func (c *PropertyController) FeaturedHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, dtos.PropertyListResponse{Properties: c.props.GetFeatured(r.Context())})
}

// GET /api/v1/properties/{id}
func (c *PropertyController) GetPropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	p, err := c.props.GetProperty(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// GET /api/v1/properties/mine
func (c *PropertyController) ListMineHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	props, err := c.props.ListByOwner(r.Context(), userID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.PropertyListResponse{Properties: props})
}

// parseCreateForm maps the multipart text fields onto the request DTO.
// Numeric fields that are absent stay zero and fail validation.
func parseCreateForm(form *multipart.Form) (dtos.CreatePropertyRequest, error) {
	req := dtos.CreatePropertyRequest{
		Title:        formValue(form, "title"),
		Description:  formValue(form, "description"),
		Location:     formValue(form, "location"),
		City:         formValue(form, "city"),
		PriceType:    formValue(form, "price_type"),
		PropertyType: formValue(form, "property_type"),
	}
	for _, a := range form.Value["amenities"] {
		if a = strings.TrimSpace(a); a != "" {
			req.Amenities = append(req.Amenities, a)
		}
	}

	price, err := parseOptionalFloat(formValue(form, "price"), "price")
	if err != nil {
		return req, err
	}
	bedrooms, err := parseOptionalInt(formValue(form, "bedrooms"), "bedrooms")
	if err != nil {
		return req, err
	}
	bathrooms, err := parseOptionalFloat(formValue(form, "bathrooms"), "bathrooms")
	if err != nil {
		return req, err
	}
	guests, err := parseOptionalInt(formValue(form, "guests"), "guests")
	if err != nil {
		return req, err
	}
	if req.Latitude, err = parseOptionalFloat(formValue(form, "latitude"), "latitude"); err != nil {
		return req, err
	}
	if req.Longitude, err = parseOptionalFloat(formValue(form, "longitude"), "longitude"); err != nil {
		return req, err
	}
	req.Price = utils.Val(price)
	req.Bedrooms = utils.Val(bedrooms)
	req.Bathrooms = utils.Val(bathrooms)
	req.Guests = utils.Val(guests)
	return req, nil
}

// POST /api/v1/properties (multipart: listing fields plus repeated "images")
func (c *PropertyController) CreatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "CreatePropertyHandler")

	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid multipart form", nil, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := parseCreateForm(r.MultipartForm)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if !validateRequest(w, req) {
		return
	}

	images, err := readUploads(r.MultipartForm, "images")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	p, err := c.props.AddProperty(r.Context(), userID, req, images)
	if err != nil {
		logger.WithError(err).WithField("userID", userID).Warn("create property failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("propertyID", p.ID).Info("property created")
	utils.RespondWithJSON(w, http.StatusCreated, p)
}

// PATCH /api/v1/properties/{id}
func (c *PropertyController) UpdatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.UpdatePropertyRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, req) {
		return
	}

	p, err := c.props.UpdateProperty(r.Context(), userID, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// DELETE /api/v1/properties/{id}
func (c *PropertyController) DeletePropertyHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	if err := c.props.DeleteProperty(r.Context(), userID, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
