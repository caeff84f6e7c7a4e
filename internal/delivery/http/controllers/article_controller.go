package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"parties247/internal/delivery/http/helpers"
	"parties247/internal/domain"
)

// CreateArticleRequest is the request body for POST /admin/articles. The slug is derived from the title when empty.
type CreateArticleRequest struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Body     string `json:"body"`
	ImageURL string `json:"image_url"`
}

// Validate implements Validator.
func (req CreateArticleRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(req.Body) == "" {
		errs = append(errs, "body is required")
	}
	return errs
}

// UpdateArticleRequest is the request body for PATCH /admin/articles/{id}. Omitted fields are unchanged.
type UpdateArticleRequest struct {
	domain.ArticlePatch
}

// ArticleSuccessResponse is the success envelope for endpoints returning one article.
type ArticleSuccessResponse struct {
	Data  *domain.Article   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListArticlesResponse is a page of articles, newest first.
type ListArticlesResponse struct {
	Items      []*domain.Article      `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListArticlesSuccessResponse is the success envelope for GET /articles (200).
type ListArticlesSuccessResponse struct {
	Data  ListArticlesResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

type ArticleController struct {
	Logger  *slog.Logger
	Service domain.ArticleService
}

func NewArticleController(logger *slog.Logger, svc domain.ArticleService) *ArticleController {
	return &ArticleController{
		Logger:  logger,
		Service: svc,
	}
}

// ListArticles godoc
// @Summary List articles
// @Tags articles
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListArticlesSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /articles [get]
func (c *ArticleController) ListArticles(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	list, total, err := c.Service.List(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if list == nil {
		list = []*domain.Article{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListArticlesResponse{
		Items:      list,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// GetArticle godoc
// @Summary Get an article by slug
// @Tags articles
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} controllers.ArticleSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /articles/{slug} [get]
func (c *ArticleController) GetArticle(w http.ResponseWriter, r *http.Request) {
	article, err := c.Service.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, article)
}

// CreateArticle godoc
// @Summary Create an article
// @Tags admin-articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateArticleRequest true "Article data"
// @Success 201 {object} controllers.ArticleSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/articles [post]
func (c *ArticleController) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req CreateArticleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	article := &domain.Article{
		Slug:     req.Slug,
		Title:    req.Title,
		Summary:  req.Summary,
		Body:     req.Body,
		ImageURL: req.ImageURL,
	}
	if err := c.Service.Create(r.Context(), article); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, article)
}

// UpdateArticle godoc
// @Summary Update an article
// @Tags admin-articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article ID (UUID)"
// @Param body body UpdateArticleRequest true "Fields to change"
// @Success 200 {object} controllers.ArticleSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/articles/{id} [patch]
func (c *ArticleController) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	var req UpdateArticleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	article, err := c.Service.Update(r.Context(), r.PathValue("id"), req.ArticlePatch)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, article)
}

// DeleteArticle godoc
// @Summary Delete an article
// @Tags admin-articles
// @Security BearerAuth
// @Param id path string true "Article ID (UUID)"
// @Success 204 "No content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/articles/{id} [delete]
func (c *ArticleController) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.Delete(r.Context(), r.PathValue("id")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
