package controllers

import (
	"log/slog"
	"net/http"

	"parties247/internal/delivery/http/helpers"
	"parties247/internal/domain"
)

// ListTaxonomiesSuccessResponse is the success envelope for GET /taxonomies (200).
type ListTaxonomiesSuccessResponse struct {
	Data  []domain.Taxonomy `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type TaxonomyController struct {
	Logger  *slog.Logger
	Service domain.TaxonomyService
}

func NewTaxonomyController(logger *slog.Logger, svc domain.TaxonomyService) *TaxonomyController {
	return &TaxonomyController{
		Logger:  logger,
		Service: svc,
	}
}

// ListTaxonomies godoc
// @Summary List taxonomy axes
// @Description Every axis (city, genre, audience, time) with its values and the number of upcoming parties for each.
// @Tags taxonomies
// @Produce json
// @Success 200 {object} controllers.ListTaxonomiesSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /taxonomies [get]
func (c *TaxonomyController) ListTaxonomies(w http.ResponseWriter, r *http.Request) {
	taxonomies, err := c.Service.ListTaxonomies(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, taxonomies)
}

// ListTaxonomyParties godoc
// @Summary List parties for a taxonomy page
// @Description Upcoming parties matching one axis value, e.g. /taxonomies/genre/techno or /taxonomies/time/weekend.
// @Tags taxonomies
// @Produce json
// @Param axis path string true "Axis" Enums(city, genre, audience, time)
// @Param value path string true "Axis value"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListPartiesSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /taxonomies/{axis}/{value} [get]
func (c *TaxonomyController) ListTaxonomyParties(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	axis := domain.TaxonomyAxis(r.PathValue("axis"))
	parties, total, err := c.Service.ListParties(r.Context(), axis, r.PathValue("value"), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if parties == nil {
		parties = []*domain.Party{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListPartiesResponse{
		Items:      parties,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}
