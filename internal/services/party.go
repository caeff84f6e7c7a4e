package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"parties247/internal/domain"
	"parties247/internal/metrics"
)

const (
	// upcomingGrace keeps a party listed for a while after it started.
	upcomingGrace   = 6 * time.Hour
	maxBatchSize    = 50
	maxSlugAttempts = 50
)

var referralCodeRe = regexp.MustCompile(`^[A-Za-z0-9_-]{0,64}$`)

// PartyServiceConfig holds the tunables of the party service.
type PartyServiceConfig struct {
	// ReportEmail receives batch import reports; empty disables them.
	ReportEmail string
	// DefaultReferralCode is used until an admin stores one in settings.
	DefaultReferralCode string
	Timeout             time.Duration
	// ImportTimeout bounds one scrape-and-store; scraping walks several proxies.
	ImportTimeout time.Duration
}

type partyService struct {
	partyRepo      domain.PartyRepository
	settingsRepo   domain.SettingsRepository
	scraper        domain.PartyScraper
	emailService   domain.EmailService
	cfg            PartyServiceConfig
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

func NewPartyService(
	partyRepo domain.PartyRepository,
	settingsRepo domain.SettingsRepository,
	scraper domain.PartyScraper,
	emailService domain.EmailService,
	cfg PartyServiceConfig,
	logger *slog.Logger,
) domain.PartyService {
	if cfg.ImportTimeout < cfg.Timeout {
		cfg.ImportTimeout = cfg.Timeout
	}
	return &partyService{
		partyRepo:      partyRepo,
		settingsRepo:   settingsRepo,
		scraper:        scraper,
		emailService:   emailService,
		cfg:            cfg,
		logger:         logger.With("service", "party"),
		contextTimeout: cfg.Timeout,
		now:            time.Now,
	}
}

func (s *partyService) ImportFromURL(ctx context.Context, pageURL string) (*domain.Party, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ImportTimeout)
	defer cancel()

	p, status, err := s.importOne(ctx, pageURL)
	metrics.PartiesImported.WithLabelValues(string(status)).Inc()
	return p, err
}

// importOne returns the created party, or the existing one with ErrConflict for a duplicate.
func (s *partyService) importOne(ctx context.Context, pageURL string) (*domain.Party, domain.ImportStatus, error) {
	canonical, err := domain.CanonicalSourceURL(pageURL)
	if err != nil {
		return nil, domain.ImportFailed, err
	}
	existing, err := s.partyRepo.GetBySourceURL(ctx, canonical)
	if err == nil {
		return existing, domain.ImportDuplicate, fmt.Errorf("%w: %s was already imported", domain.ErrConflict, canonical)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ImportFailed, fmt.Errorf("lookup source url: %w", err)
	}

	p, err := s.scraper.Scrape(ctx, canonical)
	if err != nil {
		return nil, domain.ImportFailed, err
	}
	p.Normalize()
	p.ScrapedTags = p.Tags
	if errs := p.Validate(); len(errs) > 0 {
		return nil, domain.ImportFailed, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(errs, "; "))
	}
	p.Slug, err = s.uniqueSlug(ctx, p.Slug, p.Name)
	if err != nil {
		return nil, domain.ImportFailed, err
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := s.partyRepo.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ImportDuplicate, fmt.Errorf("create party: %w", err)
		}
		return nil, domain.ImportFailed, fmt.Errorf("create party: %w", err)
	}
	s.logger.InfoContext(ctx, "party imported", "party_id", p.ID, "slug", p.Slug, "source_url", canonical)
	return p, domain.ImportCreated, nil
}

func (s *partyService) ImportBatch(ctx context.Context, urls []string) (*domain.ImportReport, error) {
	seen := make(map[string]struct{}, len(urls))
	pending := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		pending = append(pending, u)
	}
	if len(pending) == 0 {
		return nil, fmt.Errorf("%w: no urls given", domain.ErrInvalidInput)
	}
	if len(pending) > maxBatchSize {
		return nil, fmt.Errorf("%w: at most %d urls per batch", domain.ErrInvalidInput, maxBatchSize)
	}

	report := &domain.ImportReport{Results: make([]domain.ImportResult, 0, len(pending))}
	for _, u := range pending {
		if err := ctx.Err(); err != nil {
			report.Add(domain.ImportResult{URL: u, Status: domain.ImportFailed, Error: err.Error()})
			continue
		}
		urlCtx, cancel := context.WithTimeout(ctx, s.cfg.ImportTimeout)
		p, status, err := s.importOne(urlCtx, u)
		cancel()
		metrics.PartiesImported.WithLabelValues(string(status)).Inc()

		res := domain.ImportResult{URL: u, Status: status}
		if p != nil {
			res.PartyID, res.Slug = p.ID, p.Slug
		}
		if err != nil && status == domain.ImportFailed {
			res.Error = err.Error()
		}
		report.Add(res)
	}
	s.logger.InfoContext(ctx, "batch import finished",
		"created", report.Created, "duplicates", report.Duplicates, "failed", report.Failed)

	if s.emailService != nil && s.cfg.ReportEmail != "" {
		data := &domain.ImportReportEmailData{Email: s.cfg.ReportEmail, Report: report}
		if err := s.emailService.SendImportReport(context.WithoutCancel(ctx), data); err != nil {
			s.logger.WarnContext(ctx, "failed to send import report", "error", err)
		}
	}
	return report, nil
}

func (s *partyService) Refresh(ctx context.Context, id string) (*domain.Party, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ImportTimeout)
	defer cancel()

	p, err := s.partyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "get party")
	}
	if p.SourceURL == "" {
		return nil, fmt.Errorf("%w: party was not imported from a page", domain.ErrInvalidInput)
	}
	fresh, err := s.scraper.Scrape(ctx, p.SourceURL)
	if err != nil {
		return nil, err
	}
	fresh.Normalize()

	p.Name = fresh.Name
	p.ImageURL = fresh.ImageURL
	p.Date = fresh.Date
	p.EndDate = fresh.EndDate
	p.Location = fresh.Location
	p.Description = fresh.Description
	p.Region = fresh.Region
	p.MusicType = fresh.MusicType
	p.EventType = fresh.EventType
	p.Age = fresh.Age
	p.TicketPrice = fresh.TicketPrice
	// keep only the tags an admin added on top of the last scrape
	manual := domain.WithoutTags(p.Tags, p.ScrapedTags)
	p.Tags = domain.MergeTags(fresh.Tags, manual)
	p.ScrapedTags = fresh.Tags
	p.UpdatedAt = s.now()
	if errs := p.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(errs, "; "))
	}
	if err := s.partyRepo.Update(ctx, p); err != nil {
		return nil, wrapNotFound(err, "update party")
	}
	return p, nil
}

func (s *partyService) Create(ctx context.Context, p *domain.Party) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p.Name = strings.TrimSpace(p.Name)
	p.Normalize()
	if errs := p.Validate(); len(errs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(errs, "; "))
	}
	if !referralCodeRe.MatchString(p.ReferralCode) {
		return fmt.Errorf("%w: invalid referral code", domain.ErrInvalidInput)
	}
	if p.SourceURL != "" {
		canonical, err := domain.CanonicalSourceURL(p.SourceURL)
		if err != nil {
			return err
		}
		p.SourceURL = canonical
	}
	slug, err := s.uniqueSlug(ctx, p.Slug, p.Name)
	if err != nil {
		return err
	}
	p.Slug = slug
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := s.partyRepo.Create(ctx, p); err != nil {
		return fmt.Errorf("create party: %w", err)
	}
	return nil
}

func (s *partyService) Update(ctx context.Context, id string, patch domain.PartyPatch) (*domain.Party, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.partyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "get party")
	}
	patch.Apply(p)
	p.Normalize()
	if errs := p.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(errs, "; "))
	}
	if !referralCodeRe.MatchString(p.ReferralCode) {
		return nil, fmt.Errorf("%w: invalid referral code", domain.ErrInvalidInput)
	}
	p.UpdatedAt = s.now()
	if err := s.partyRepo.Update(ctx, p); err != nil {
		return nil, wrapNotFound(err, "update party")
	}
	return p, nil
}

func (s *partyService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return wrapNotFound(s.partyRepo.Delete(ctx, id), "delete party")
}

func (s *partyService) GetByID(ctx context.Context, id string) (*domain.Party, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.partyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "get party")
	}
	return p, nil
}

func (s *partyService) GetBySlug(ctx context.Context, slug string) (*domain.Party, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.partyRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, wrapNotFound(err, "get party")
	}
	return p, nil
}

func (s *partyService) List(ctx context.Context, filter domain.PartyFilter, includePast bool, params domain.PaginationParams) ([]*domain.Party, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !includePast && filter.From == nil {
		from := s.now().Add(-upcomingGrace)
		filter.From = &from
	}
	parties, total, err := s.partyRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list parties: %w", err)
	}
	return parties, total, nil
}

func (s *partyService) SetReferralCode(ctx context.Context, id, code string) (*domain.Party, error) {
	code = strings.TrimSpace(code)
	return s.Update(ctx, id, domain.PartyPatch{ReferralCode: &code})
}

func (s *partyService) DefaultReferralCode(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	code, err := s.settingsRepo.Get(ctx, domain.SettingDefaultReferralCode)
	if errors.Is(err, domain.ErrNotFound) {
		return s.cfg.DefaultReferralCode, nil
	}
	if err != nil {
		return "", fmt.Errorf("get default referral code: %w", err)
	}
	return code, nil
}

func (s *partyService) SetDefaultReferralCode(ctx context.Context, code string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	code = strings.TrimSpace(code)
	if !referralCodeRe.MatchString(code) {
		return fmt.Errorf("%w: invalid referral code", domain.ErrInvalidInput)
	}
	if err := s.settingsRepo.Set(ctx, domain.SettingDefaultReferralCode, code); err != nil {
		return fmt.Errorf("set default referral code: %w", err)
	}
	return nil
}

// TicketLink returns the ticket URL carrying the party's referral code, or the site default.
func (s *partyService) TicketLink(ctx context.Context, p *domain.Party) (string, error) {
	code := p.ReferralCode
	if code == "" {
		def, err := s.DefaultReferralCode(ctx)
		if err != nil {
			return "", err
		}
		code = def
	}
	return withReferral(p.TicketURL, code), nil
}

func withReferral(ticketURL, code string) string {
	if code == "" {
		return ticketURL
	}
	u, err := url.Parse(ticketURL)
	if err != nil {
		return ticketURL
	}
	q := u.Query()
	q.Set("ref", code)
	u.RawQuery = q.Encode()
	return u.String()
}

// uniqueSlug picks preferred (or the slug of name) and appends -2, -3, ... until it is free.
func (s *partyService) uniqueSlug(ctx context.Context, preferred, name string) (string, error) {
	return uniqueSlug(ctx, s.partyRepo.SlugExists, preferred, name, "party")
}

func uniqueSlug(ctx context.Context, exists func(context.Context, string) (bool, error), preferred, name, fallback string) (string, error) {
	base := domain.Slugify(preferred)
	if base == "" {
		base = domain.Slugify(name)
	}
	if base == "" {
		base = fallback
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return base + "-" + uuid.NewString()[:8], nil
}

// wrapNotFound passes ErrNotFound through unchanged and adds context to other errors.
func wrapNotFound(err error, op string) error {
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
