package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"parties247/internal/delivery/http/helpers"
	"parties247/internal/domain"
)

// PartySuccessResponse is the success envelope for endpoints returning one party.
type PartySuccessResponse struct {
	Data  *domain.Party     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListPartiesResponse is a page of parties with pagination metadata.
type ListPartiesResponse struct {
	Items      []*domain.Party        `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListPartiesSuccessResponse is the success envelope for GET /parties (200).
type ListPartiesSuccessResponse struct {
	Data  ListPartiesResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ImportPartyRequest is the request body for POST /admin/parties/import.
type ImportPartyRequest struct {
	URL string `json:"url"`
}

// Validate implements Validator.
func (req ImportPartyRequest) Validate() []string {
	if strings.TrimSpace(req.URL) == "" {
		return []string{"url is required"}
	}
	return nil
}

// ImportBatchRequest is the request body for POST /admin/parties/import-batch.
type ImportBatchRequest struct {
	URLs []string `json:"urls"`
}

// Validate implements Validator.
func (req ImportBatchRequest) Validate() []string {
	if len(req.URLs) == 0 {
		return []string{"urls is required"}
	}
	return nil
}

// ImportBatchSuccessResponse is the success envelope for POST /admin/parties/import-batch (200).
type ImportBatchSuccessResponse struct {
	Data  *domain.ImportReport `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// CreatePartyRequest is the request body for POST /admin/parties.
type CreatePartyRequest struct {
	Slug         string           `json:"slug"`
	Name         string           `json:"name"`
	ImageURL     string           `json:"image_url"`
	Date         time.Time        `json:"date"`
	EndDate      *time.Time       `json:"end_date"`
	Location     domain.Location  `json:"location"`
	Description  string           `json:"description"`
	TicketURL    string           `json:"ticket_url"`
	Region       domain.Region    `json:"region"`
	MusicType    domain.MusicType `json:"music_type"`
	EventType    domain.EventType `json:"event_type"`
	Age          domain.Age       `json:"age"`
	Tags         []string         `json:"tags"`
	TicketPrice  *float64         `json:"ticket_price"`
	ReferralCode string           `json:"referral_code"`
	PixelID      string           `json:"pixel_id"`
	SourceURL    string           `json:"source_url"`
}

// Validate implements Validator. Enum fields may be empty but must be known values when set.
func (req CreatePartyRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "name is required")
	}
	if req.Date.IsZero() {
		errs = append(errs, "date is required")
	}
	if strings.TrimSpace(req.TicketURL) == "" {
		errs = append(errs, "ticket_url is required")
	}
	if req.TicketPrice != nil && *req.TicketPrice < 0 {
		errs = append(errs, "ticket_price must not be negative")
	}
	return append(errs, enumErrors(&req.Region, &req.MusicType, &req.EventType, &req.Age)...)
}

func (req CreatePartyRequest) party() *domain.Party {
	return &domain.Party{
		Slug:         req.Slug,
		Name:         req.Name,
		ImageURL:     req.ImageURL,
		Date:         req.Date,
		EndDate:      req.EndDate,
		Location:     req.Location,
		Description:  req.Description,
		TicketURL:    req.TicketURL,
		Region:       req.Region,
		MusicType:    req.MusicType,
		EventType:    req.EventType,
		Age:          req.Age,
		Tags:         req.Tags,
		TicketPrice:  req.TicketPrice,
		ReferralCode: req.ReferralCode,
		PixelID:      req.PixelID,
		SourceURL:    req.SourceURL,
	}
}

// UpdatePartyRequest is the request body for PATCH /admin/parties/{id}. Omitted fields are unchanged.
type UpdatePartyRequest struct {
	domain.PartyPatch
}

// Validate implements Validator.
func (req UpdatePartyRequest) Validate() []string {
	var errs []string
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errs = append(errs, "name must not be empty")
	}
	if req.TicketURL != nil && strings.TrimSpace(*req.TicketURL) == "" {
		errs = append(errs, "ticket_url must not be empty")
	}
	if req.TicketPrice != nil && *req.TicketPrice < 0 {
		errs = append(errs, "ticket_price must not be negative")
	}
	return append(errs, enumErrors(req.Region, req.MusicType, req.EventType, req.Age)...)
}

// enumErrors reports unknown enum values; nil pointers and empty values are skipped.
func enumErrors(region *domain.Region, music *domain.MusicType, eventType *domain.EventType, age *domain.Age) []string {
	var errs []string
	if region != nil && *region != "" {
		if _, ok := domain.ParseRegion(string(*region)); !ok {
			errs = append(errs, "unknown region")
		}
	}
	if music != nil && *music != "" {
		if _, ok := domain.ParseMusicType(string(*music)); !ok {
			errs = append(errs, "unknown music_type")
		}
	}
	if eventType != nil && *eventType != "" {
		if _, ok := domain.ParseEventType(string(*eventType)); !ok {
			errs = append(errs, "unknown event_type")
		}
	}
	if age != nil && *age != "" {
		if _, ok := domain.ParseAge(string(*age)); !ok {
			errs = append(errs, "unknown age")
		}
	}
	return errs
}

// ReferralCodeRequest is the request body for the referral code endpoints. An empty code clears it.
type ReferralCodeRequest struct {
	Code string `json:"code"`
}

// ReferralCodeResponse is the response body for GET /admin/settings/referral.
type ReferralCodeResponse struct {
	Code string `json:"code"`
}

type PartyController struct {
	Logger    *slog.Logger
	Service   domain.PartyService
	Analytics domain.AnalyticsService
}

func NewPartyController(logger *slog.Logger, svc domain.PartyService, analytics domain.AnalyticsService) *PartyController {
	return &PartyController{
		Logger:    logger,
		Service:   svc,
		Analytics: analytics,
	}
}

// parsePartyFilter reads the listing filters from the query string.
func parsePartyFilter(r *http.Request) (domain.PartyFilter, bool, []string) {
	q := r.URL.Query()
	var (
		filter domain.PartyFilter
		errs   []string
	)
	if s := q.Get("region"); s != "" {
		if v, ok := domain.ParseRegion(s); ok {
			filter.Region = v
		} else {
			errs = append(errs, "unknown region")
		}
	}
	if s := q.Get("music_type"); s != "" {
		if v, ok := domain.ParseMusicType(s); ok {
			filter.MusicType = v
		} else {
			errs = append(errs, "unknown music_type")
		}
	}
	if s := q.Get("event_type"); s != "" {
		if v, ok := domain.ParseEventType(s); ok {
			filter.EventType = v
		} else {
			errs = append(errs, "unknown event_type")
		}
	}
	if s := q.Get("age"); s != "" {
		if v, ok := domain.ParseAge(s); ok {
			filter.Age = v
		} else {
			errs = append(errs, "unknown age")
		}
	}
	filter.Tag = strings.TrimSpace(q.Get("tag"))
	filter.City = strings.TrimSpace(q.Get("city"))
	filter.Query = strings.TrimSpace(q.Get("q"))

	includePast := false
	if s := q.Get("include_past"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			errs = append(errs, "include_past must be a boolean")
		}
		includePast = v
	}
	return filter, includePast, errs
}

// ListParties godoc
// @Summary List parties
// @Description Upcoming parties sorted by date. Parties that started less than 6 hours ago are still listed. Set include_past=true to list past parties too.
// @Tags parties
// @Produce json
// @Param region query string false "Region" Enums(north, center, south, jerusalem, unknown)
// @Param music_type query string false "Music type" Enums(techno, house, trance, mainstream, hiphop, other)
// @Param event_type query string false "Event type" Enums(club, festival, nature, bar, boat, other)
// @Param age query string false "Minimum age bucket" Enums(all, 18+, 21+, 24+)
// @Param tag query string false "Tag"
// @Param city query string false "City text matched against the venue"
// @Param q query string false "Free text matched against the party name"
// @Param include_past query bool false "Include past parties"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListPartiesSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /parties [get]
func (c *PartyController) ListParties(w http.ResponseWriter, r *http.Request) {
	filter, includePast, errs := parsePartyFilter(r)
	if len(errs) > 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, strings.Join(errs, "; "))
		return
	}
	params := helpers.ParsePagination(r)
	parties, total, err := c.Service.List(r.Context(), filter, includePast, params)
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

// GetParty godoc
// @Summary Get a party by slug
// @Tags parties
// @Produce json
// @Param slug path string true "Party slug"
// @Success 200 {object} controllers.PartySuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /parties/{slug} [get]
func (c *PartyController) GetParty(w http.ResponseWriter, r *http.Request) {
	party, err := c.Service.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, party)
}

// TicketRedirect godoc
// @Summary Go to the ticket page
// @Description Redirects to the party's ticket URL carrying the referral code and records a ticket click.
// @Tags parties
// @Param slug path string true "Party slug"
// @Success 302 "Location header holds the ticket link"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /parties/{slug}/ticket [get]
func (c *PartyController) TicketRedirect(w http.ResponseWriter, r *http.Request) {
	party, err := c.Service.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	link, err := c.Service.TicketLink(r.Context(), party)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if err := c.Analytics.RecordClick(r.Context(), party.ID); err != nil {
		c.Logger.WarnContext(r.Context(), "failed to record ticket click", "party_id", party.ID, "err", err)
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, link, http.StatusFound)
}

// ImportParty godoc
// @Summary Import a party from an event page
// @Description Scrapes a go-out.co event page and creates a party. A page that was already imported is a conflict.
// @Tags admin-parties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ImportPartyRequest true "Event page URL"
// @Success 201 {object} controllers.PartySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/parties/import [post]
func (c *PartyController) ImportParty(w http.ResponseWriter, r *http.Request) {
	var req ImportPartyRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	party, err := c.Service.ImportFromURL(r.Context(), strings.TrimSpace(req.URL))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, party)
}

// ImportBatch godoc
// @Summary Import parties from several event pages
// @Description Imports each URL (at most 50) and reports a per-URL outcome. The report is emailed when a report address is configured.
// @Tags admin-parties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ImportBatchRequest true "Event page URLs"
// @Success 200 {object} controllers.ImportBatchSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/parties/import-batch [post]
func (c *PartyController) ImportBatch(w http.ResponseWriter, r *http.Request) {
	var req ImportBatchRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	report, err := c.Service.ImportBatch(r.Context(), req.URLs)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

// RefreshParty godoc
// @Summary Re-scrape a party
// @Description Re-reads the source page and updates scraped fields. Referral code, pixel id and slug are kept and manual tags are merged.
// @Tags admin-parties
// @Produce json
// @Security BearerAuth
// @Param id path string true "Party ID (UUID)"
// @Success 200 {object} controllers.PartySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/parties/{id}/refresh [post]
func (c *PartyController) RefreshParty(w http.ResponseWriter, r *http.Request) {
	party, err := c.Service.Refresh(r.Context(), r.PathValue("id"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, party)
}

// CreateParty godoc
// @Summary Create a party manually
// @Tags admin-parties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreatePartyRequest true "Party data"
// @Success 201 {object} controllers.PartySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/parties [post]
func (c *PartyController) CreateParty(w http.ResponseWriter, r *http.Request) {
	var req CreatePartyRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	party := req.party()
	if err := c.Service.Create(r.Context(), party); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, party)
}

// UpdateParty godoc
// @Summary Update a party
// @Description Partial update; omitted fields are unchanged.
// @Tags admin-parties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Party ID (UUID)"
// @Param body body UpdatePartyRequest true "Fields to change"
// @Success 200 {object} controllers.PartySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/parties/{id} [patch]
func (c *PartyController) UpdateParty(w http.ResponseWriter, r *http.Request) {
	var req UpdatePartyRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	party, err := c.Service.Update(r.Context(), r.PathValue("id"), req.PartyPatch)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, party)
}

// DeleteParty godoc
// @Summary Delete a party
// @Tags admin-parties
// @Security BearerAuth
// @Param id path string true "Party ID (UUID)"
// @Success 204 "No content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/parties/{id} [delete]
func (c *PartyController) DeleteParty(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.Delete(r.Context(), r.PathValue("id")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetReferralCode godoc
// @Summary Set a party's referral code
// @Description Overrides the default referral code for this party. An empty code falls back to the default.
// @Tags admin-parties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Party ID (UUID)"
// @Param body body ReferralCodeRequest true "Referral code"
// @Success 200 {object} controllers.PartySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/parties/{id}/referral [put]
func (c *PartyController) SetReferralCode(w http.ResponseWriter, r *http.Request) {
	var req ReferralCodeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	party, err := c.Service.SetReferralCode(r.Context(), r.PathValue("id"), req.Code)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, party)
}

// GetDefaultReferralCode godoc
// @Summary Get the default referral code
// @Tags admin-settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains code"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/settings/referral [get]
func (c *PartyController) GetDefaultReferralCode(w http.ResponseWriter, r *http.Request) {
	code, err := c.Service.DefaultReferralCode(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ReferralCodeResponse{Code: code})
}

// SetDefaultReferralCode godoc
// @Summary Set the default referral code
// @Description Used for parties without their own referral code.
// @Tags admin-settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ReferralCodeRequest true "Referral code"
// @Success 200 {object} helpers.APIResponse "data contains code"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/settings/referral [put]
func (c *PartyController) SetDefaultReferralCode(w http.ResponseWriter, r *http.Request) {
	var req ReferralCodeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	code := strings.TrimSpace(req.Code)
	if err := c.Service.SetDefaultReferralCode(r.Context(), code); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ReferralCodeResponse{Code: code})
}
