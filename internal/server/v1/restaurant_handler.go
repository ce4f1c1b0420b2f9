package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/resto-analytics/internal/analytics"
	"github.com/nulzo/resto-analytics/internal/server/validator"
	"github.com/nulzo/resto-analytics/pkg/api"
)

type RestaurantHandler struct {
	service analytics.Service
}

func NewRestaurantHandler(service analytics.Service) *RestaurantHandler {
	return &RestaurantHandler{
		service: service,
	}
}

// List returns a filtered, sorted page of the restaurant directory.
// GET /api/getRestaurent, GET /api/restaurants
func (h *RestaurantHandler) List(c *gin.Context) {
	var req api.DirectoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	page, err := h.service.Directory(c.Request.Context(), analytics.DirectoryParams{
		Search:   req.Search,
		Cuisine:  req.Cuisine,
		Location: req.Location,
		SortBy:   req.SortBy,
		Order:    req.Order,
		Page:     req.Page,
		Limit:    req.Limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toDirectory(page))
}

// Get returns a single restaurant.
// GET /api/restaurants/:id
func (h *RestaurantHandler) Get(c *gin.Context) {
	var uri api.RestaurantURI
	if err := c.ShouldBindUri(&uri); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	r, err := h.service.Restaurant(c.Request.Context(), uri.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toRestaurant(*r))
}

// Facets returns the distinct cuisines and locations.
// GET /api/facets
func (h *RestaurantHandler) Facets(c *gin.Context) {
	f, err := h.service.Facets(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, api.FacetsResponse{Cuisines: f.Cuisines, Locations: f.Locations})
}
