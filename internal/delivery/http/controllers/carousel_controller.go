package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"parties247/internal/delivery/http/helpers"
	"parties247/internal/domain"
)

// CreateCarouselRequest is the request body for POST /admin/carousels.
type CreateCarouselRequest struct {
	Title    string   `json:"title"`
	PartyIDs []string `json:"party_ids"`
}

// Validate implements Validator.
func (req CreateCarouselRequest) Validate() []string {
	if strings.TrimSpace(req.Title) == "" {
		return []string{"title is required"}
	}
	return nil
}

// UpdateCarouselRequest is the request body for PATCH /admin/carousels/{id}.
// Omitted fields are unchanged; an empty party_ids list clears the carousel.
type UpdateCarouselRequest struct {
	Title    *string  `json:"title"`
	PartyIDs []string `json:"party_ids"`
}

// Validate implements Validator.
func (req UpdateCarouselRequest) Validate() []string {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return []string{"title must not be empty"}
	}
	return nil
}

// ReorderCarouselsRequest is the request body for PUT /admin/carousels/order.
type ReorderCarouselsRequest struct {
	IDs []string `json:"ids"`
}

// CarouselSuccessResponse is the success envelope for endpoints returning one carousel.
type CarouselSuccessResponse struct {
	Data  *domain.Carousel  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CarouselsSuccessResponse is the success envelope for PUT /admin/carousels/order (200).
type CarouselsSuccessResponse struct {
	Data  []*domain.Carousel `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// CarouselWithPartiesSuccessResponse is the success envelope for GET /carousels/{id} (200).
type CarouselWithPartiesSuccessResponse struct {
	Data  *domain.CarouselWithParties `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// ListCarouselsSuccessResponse is the success envelope for GET /carousels (200).
type ListCarouselsSuccessResponse struct {
	Data  []*domain.CarouselWithParties `json:"data"`
	Error *helpers.APIError             `json:"error"`
}

type CarouselController struct {
	Logger  *slog.Logger
	Service domain.CarouselService
}

func NewCarouselController(logger *slog.Logger, svc domain.CarouselService) *CarouselController {
	return &CarouselController{
		Logger:  logger,
		Service: svc,
	}
}

// ListCarousels godoc
// @Summary List homepage carousels
// @Description Carousels in display order, each with its upcoming parties in carousel order.
// @Tags carousels
// @Produce json
// @Success 200 {object} controllers.ListCarouselsSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /carousels [get]
func (c *CarouselController) ListCarousels(w http.ResponseWriter, r *http.Request) {
	list, err := c.Service.ListWithParties(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if list == nil {
		list = []*domain.CarouselWithParties{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}

// GetCarousel godoc
// @Summary Get a carousel with its parties
// @Tags carousels
// @Produce json
// @Param id path string true "Carousel ID (UUID)"
// @Success 200 {object} controllers.CarouselWithPartiesSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /carousels/{id} [get]
func (c *CarouselController) GetCarousel(w http.ResponseWriter, r *http.Request) {
	carousel, err := c.Service.GetWithParties(r.Context(), r.PathValue("id"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, carousel)
}

// CreateCarousel godoc
// @Summary Create a carousel
// @Description The new carousel is placed last. Repeated party IDs are dropped.
// @Tags admin-carousels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateCarouselRequest true "Carousel data"
// @Success 201 {object} controllers.CarouselSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/carousels [post]
func (c *CarouselController) CreateCarousel(w http.ResponseWriter, r *http.Request) {
	var req CreateCarouselRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	carousel, err := c.Service.Create(r.Context(), req.Title, req.PartyIDs)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, carousel)
}

// UpdateCarousel godoc
// @Summary Update a carousel
// @Tags admin-carousels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Carousel ID (UUID)"
// @Param body body UpdateCarouselRequest true "Fields to change"
// @Success 200 {object} controllers.CarouselSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/carousels/{id} [patch]
func (c *CarouselController) UpdateCarousel(w http.ResponseWriter, r *http.Request) {
	var req UpdateCarouselRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	carousel, err := c.Service.Update(r.Context(), r.PathValue("id"), req.Title, req.PartyIDs)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, carousel)
}

// DeleteCarousel godoc
// @Summary Delete a carousel
// @Tags admin-carousels
// @Security BearerAuth
// @Param id path string true "Carousel ID (UUID)"
// @Success 204 "No content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/carousels/{id} [delete]
func (c *CarouselController) DeleteCarousel(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.Delete(r.Context(), r.PathValue("id")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderCarousels godoc
// @Summary Reorder carousels
// @Description ids must list every carousel exactly once, in the new display order.
// @Tags admin-carousels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ReorderCarouselsRequest true "Carousel IDs in display order"
// @Success 200 {object} controllers.CarouselsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/carousels/order [put]
func (c *CarouselController) ReorderCarousels(w http.ResponseWriter, r *http.Request) {
	var req ReorderCarouselsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	list, err := c.Service.Reorder(r.Context(), req.IDs)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}
