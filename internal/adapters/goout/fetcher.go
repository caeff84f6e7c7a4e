package goout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"parties247/internal/domain"
	"parties247/internal/metrics"
)

const (
	maxPageBytes     = 5 << 20
	defaultUserAgent = "Mozilla/5.0 (compatible; parties247-bot/1.0)"
	urlPlaceholder   = "{url}"
	directStrategy   = "direct"
)

// FetcherConfig controls retries, proxies and pacing of page fetches.
type FetcherConfig struct {
	// Proxies are URL templates tried after the direct fetch. "{url}" is replaced
	// by the query-escaped page URL; without it the escaped URL is appended.
	Proxies        []string
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	RatePerSecond  float64
	UserAgent      string
	// BreakerFailures is the number of consecutive failures that opens a strategy's breaker.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

type strategy struct {
	name     string
	template string
	cb       *gobreaker.CircuitBreaker[[]byte]
}

func (s *strategy) target(pageURL string) string {
	if s.template == "" {
		return pageURL
	}
	escaped := url.QueryEscape(pageURL)
	if strings.Contains(s.template, urlPlaceholder) {
		return strings.ReplaceAll(s.template, urlPlaceholder, escaped)
	}
	return s.template + escaped
}

// Fetcher downloads third-party pages, falling back through proxy strategies.
type Fetcher struct {
	client     *http.Client
	cfg        FetcherConfig
	strategies []*strategy
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewFetcher returns a Fetcher trying a direct request first and then each proxy in order.
func NewFetcher(client *http.Client, cfg FetcherConfig, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = time.Minute
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	f := &Fetcher{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
	f.strategies = append(f.strategies, f.newStrategy(directStrategy, ""))
	for _, p := range cfg.Proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f.strategies = append(f.strategies, f.newStrategy(strategyName(p), p))
	}
	return f
}

func strategyName(template string) string {
	u, err := url.Parse(strings.ReplaceAll(template, urlPlaceholder, ""))
	if err != nil || u.Host == "" {
		return template
	}
	return u.Host
}

func (f *Fetcher) newStrategy(name, template string) *strategy {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	threshold := f.cfg.BreakerFailures
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     f.cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsExcluded: func(err error) bool {
			// the caller gave up; the strategy may be fine
			var ab *abortedError
			return errors.As(err, &ab)
		},
		IsSuccessful: func(err error) bool {
			// a page that is gone says nothing about the strategy's health
			var perm *permanentError
			return err == nil || errors.As(err, &perm)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f.logger.Warn("fetch strategy breaker state change", "strategy", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	return &strategy{name: name, template: template, cb: cb}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Fetch returns the page body from the first strategy that succeeds.
// When every strategy fails the error wraps domain.ErrScrapeFailed.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	var errs []error
	for _, s := range f.strategies {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		body, err := s.cb.Execute(func() ([]byte, error) {
			var out []byte
			err := retry(ctx, f.cfg.Attempts, f.cfg.InitialBackoff, f.cfg.MaxBackoff, func() error {
				b, err := f.get(ctx, s.target(pageURL))
				if err != nil {
					return err
				}
				out = b
				return nil
			})
			if err != nil && ctx.Err() != nil {
				err = aborted(err)
			}
			return out, err
		})
		if err == nil {
			metrics.ScrapeAttempts.WithLabelValues(s.name, "success").Inc()
			return body, nil
		}
		var ab *abortedError
		switch {
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.ScrapeAttempts.WithLabelValues(s.name, "rejected").Inc()
		case errors.As(err, &ab):
			metrics.ScrapeAttempts.WithLabelValues(s.name, "aborted").Inc()
		default:
			metrics.ScrapeAttempts.WithLabelValues(s.name, "failure").Inc()
		}
		f.logger.WarnContext(ctx, "fetch strategy failed", "strategy", s.name, "url", pageURL, "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
	}
	return nil, fmt.Errorf("%w: %s: %w", domain.ErrScrapeFailed, pageURL, errors.Join(errs...))
}

func (f *Fetcher) get(ctx context.Context, target string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		// the wait would outlast ctx
		return nil, aborted(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("page returned status: %d", resp.StatusCode)
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			return nil, permanent(err)
		}
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	if !looksLikePage(body) {
		return nil, errors.New("response is not an html page")
	}
	return body, nil
}

func looksLikePage(body []byte) bool {
	if len(bytes.TrimSpace(body)) == 0 {
		return false
	}
	if bytes.Contains(body, []byte(nextDataID)) {
		return true
	}
	head := body
	if len(head) > 4096 {
		head = head[:4096]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<html"))
}
