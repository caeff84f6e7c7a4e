package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")
	t.Setenv("SCRAPE_PROXIES", "")
	t.Setenv("SCRAPE_IMAGE_BASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, []string{"https://api.allorigins.win/raw?url={url}", "https://corsproxy.io/?{url}"}, cfg.Scrape.Proxies)
	assert.Equal(t, 3, cfg.Scrape.RetryAttempts)
	assert.Empty(t, cfg.Scrape.ImageBaseURL)
	assert.Equal(t, "noop", cfg.Email.Provider)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ORIGINS", "https://parties247.co.il, https://www.parties247.co.il ,")
	t.Setenv("SCRAPE_PROXIES", "https://proxy.example/?u={url}")
	t.Setenv("SCRAPE_RETRY_ATTEMPTS", "5")
	t.Setenv("SCRAPE_RATE_PER_SEC", "0.5")
	t.Setenv("JWT_EXPIRY", "not-a-duration")
	t.Setenv("SCRAPE_BREAKER_FAILURES", "-2")
	t.Setenv("SCRAPE_IMAGE_BASE_URL", "https://images.go-out.co/media")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, []string{"https://parties247.co.il", "https://www.parties247.co.il"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"https://proxy.example/?u={url}"}, cfg.Scrape.Proxies)
	assert.Equal(t, 5, cfg.Scrape.RetryAttempts)
	assert.Equal(t, 0.5, cfg.Scrape.RatePerSecond)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, uint32(5), cfg.Scrape.BreakerFailures)
	assert.Equal(t, "https://images.go-out.co/media", cfg.Scrape.ImageBaseURL)
}

func TestLoad_ProductionRequiresJWTSecret(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "WARN")
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])

	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
