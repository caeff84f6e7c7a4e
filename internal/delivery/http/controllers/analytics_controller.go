package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"parties247/internal/delivery/http/helpers"
	"parties247/internal/domain"
)

// defaultAnalyticsDays is the range used when from is omitted.
const defaultAnalyticsDays = 30

// RecordEventRequest is the request body for POST /analytics/visit and POST /analytics/click.
type RecordEventRequest struct {
	PartyID string `json:"party_id"`
}

// Validate implements Validator.
func (req RecordEventRequest) Validate() []string {
	if strings.TrimSpace(req.PartyID) == "" {
		return []string{"party_id is required"}
	}
	return nil
}

// AnalyticsSummarySuccessResponse is the success envelope for GET /admin/analytics/summary (200).
type AnalyticsSummarySuccessResponse struct {
	Data  *domain.AnalyticsSummary `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// PartyDailyStatsSuccessResponse is the success envelope for GET /admin/analytics/parties/{id} (200).
type PartyDailyStatsSuccessResponse struct {
	Data  []domain.PartyStats `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type AnalyticsController struct {
	Logger  *slog.Logger
	Service domain.AnalyticsService
	now     func() time.Time
}

func NewAnalyticsController(logger *slog.Logger, svc domain.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{
		Logger:  logger,
		Service: svc,
		now:     time.Now,
	}
}

// parseRange reads from/to (YYYY-MM-DD). to defaults to today in the site time zone
// and from to the 30 days ending at to.
func (c *AnalyticsController) parseRange(r *http.Request) (from, to time.Time, errs []string) {
	q := r.URL.Query()
	local := c.now().In(domain.SiteTimeZone)
	to = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	if s := q.Get("to"); s != "" {
		v, err := time.Parse(time.DateOnly, s)
		if err != nil {
			errs = append(errs, "to must be a date (YYYY-MM-DD)")
		}
		to = v
	}
	from = to.AddDate(0, 0, -(defaultAnalyticsDays - 1))
	if s := q.Get("from"); s != "" {
		v, err := time.Parse(time.DateOnly, s)
		if err != nil {
			errs = append(errs, "from must be a date (YYYY-MM-DD)")
		}
		from = v
	}
	return from, to, errs
}

// RecordVisit godoc
// @Summary Record a party page visit
// @Tags analytics
// @Accept json
// @Param body body RecordEventRequest true "Visited party"
// @Success 204 "No content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /analytics/visit [post]
func (c *AnalyticsController) RecordVisit(w http.ResponseWriter, r *http.Request) {
	var req RecordEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.RecordVisit(r.Context(), req.PartyID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordClick godoc
// @Summary Record a ticket click
// @Description For clients that open the ticket URL themselves instead of following /parties/{slug}/ticket.
// @Tags analytics
// @Accept json
// @Param body body RecordEventRequest true "Clicked party"
// @Success 204 "No content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /analytics/click [post]
func (c *AnalyticsController) RecordClick(w http.ResponseWriter, r *http.Request) {
	var req RecordEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.RecordClick(r.Context(), req.PartyID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary godoc
// @Summary Analytics summary
// @Description Per-party visit and click totals for the range, sorted by visits, with overall totals and click-through rate.
// @Tags admin-analytics
// @Produce json
// @Security BearerAuth
// @Param from query string false "First day (YYYY-MM-DD, default 29 days before to)"
// @Param to query string false "Last day (YYYY-MM-DD, default today)"
// @Success 200 {object} controllers.AnalyticsSummarySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/analytics/summary [get]
func (c *AnalyticsController) Summary(w http.ResponseWriter, r *http.Request) {
	from, to, errs := c.parseRange(r)
	if len(errs) > 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, strings.Join(errs, "; "))
		return
	}
	summary, err := c.Service.Summary(r.Context(), from, to)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}

// PartyDaily godoc
// @Summary Daily counters for a party
// @Description One entry per day in the range; days without traffic are zero.
// @Tags admin-analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Party ID (UUID)"
// @Param from query string false "First day (YYYY-MM-DD, default 29 days before to)"
// @Param to query string false "Last day (YYYY-MM-DD, default today)"
// @Success 200 {object} controllers.PartyDailyStatsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/analytics/parties/{id} [get]
func (c *AnalyticsController) PartyDaily(w http.ResponseWriter, r *http.Request) {
	from, to, errs := c.parseRange(r)
	if len(errs) > 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, strings.Join(errs, "; "))
		return
	}
	days, err := c.Service.Daily(r.Context(), r.PathValue("id"), from, to)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, days)
}
