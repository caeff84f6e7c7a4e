package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"parties247/config"
	_ "parties247/docs"
	"parties247/internal/adapters/auth"
	"parties247/internal/adapters/email"
	"parties247/internal/adapters/goout"
	httpdelivery "parties247/internal/delivery/http"
	"parties247/internal/delivery/http/controllers"
	"parties247/internal/domain"
	"parties247/internal/repository/postgres"
	"parties247/internal/services"
	"parties247/migrations"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

// @title Parties247 API
// @version 1.0
// @description Nightlife listings: parties scraped from ticketing pages, taxonomies, carousels, articles and admin curation.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT from /auth/login.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := db.PingContext(startupCtx); err != nil {
		return err
	}
	if err := migrations.Apply(startupCtx, db, logger); err != nil {
		return err
	}

	// Repositories
	partyRepo := postgres.NewPartyRepository(db)
	carouselRepo := postgres.NewCarouselRepository(db)
	articleRepo := postgres.NewArticleRepository(db)
	statsRepo := postgres.NewStatsRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)

	// Scraper
	fetcher := goout.NewFetcher(&http.Client{Timeout: cfg.Scrape.RequestTimeout}, goout.FetcherConfig{
		Proxies:         cfg.Scrape.Proxies,
		Attempts:        cfg.Scrape.RetryAttempts,
		InitialBackoff:  cfg.Scrape.InitialBackoff,
		MaxBackoff:      cfg.Scrape.MaxBackoff,
		RatePerSecond:   cfg.Scrape.RatePerSecond,
		UserAgent:       cfg.Scrape.UserAgent,
		BreakerFailures: cfg.Scrape.BreakerFailures,
		BreakerCooldown: cfg.Scrape.BreakerCooldown,
	}, logger)
	scraper := goout.NewScraper(fetcher, cfg.Scrape.ImageBaseURL, logger)

	// Email
	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}
	emailService := services.NewEmailService(mailer, renderer, logger)

	// Services
	partyService := services.NewPartyService(partyRepo, settingsRepo, scraper, emailService, services.PartyServiceConfig{
		ReportEmail:         cfg.ReportEmail,
		DefaultReferralCode: cfg.DefaultReferralCode,
		Timeout:             cfg.ServiceTimeout,
		ImportTimeout:       cfg.Scrape.ImportTimeout,
	}, logger)
	taxonomyService := services.NewTaxonomyService(partyRepo, cfg.ServiceTimeout)
	carouselService := services.NewCarouselService(carouselRepo, partyRepo, cfg.ServiceTimeout)
	articleService := services.NewArticleService(articleRepo, cfg.ServiceTimeout)
	analyticsService := services.NewAnalyticsService(statsRepo, partyRepo, cfg.ServiceTimeout)

	if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
		logger.Warn("admin credentials not configured, admin login is disabled")
	}
	authService := services.NewAuthService(services.AdminCredentials{
		Email:        cfg.AdminEmail,
		PasswordSalt: cfg.AdminPasswordSalt,
		PasswordHash: cfg.AdminPasswordHash,
	}, auth.NewBcryptHasher(bcrypt.DefaultCost), auth.NewJWTIssuer(cfg.JWTSecret), cfg.JWTExpiry)

	// HTTP
	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Health:    controllers.NewHealthController(logger, db),
		Auth:      controllers.NewAuthController(logger, authService),
		Party:     controllers.NewPartyController(logger, partyService, analyticsService),
		Taxonomy:  controllers.NewTaxonomyController(logger, taxonomyService),
		Carousel:  controllers.NewCarouselController(logger, carouselService),
		Article:   controllers.NewArticleController(logger, articleService),
		Analytics: controllers.NewAnalyticsController(logger, analyticsService),
	}, auth.NewJWTVerifier(cfg.JWTSecret, domain.RoleAdmin), logger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpdelivery.NewHandler(mux, cfg.CORSOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// batch imports scrape many pages in one request
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	srvErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
