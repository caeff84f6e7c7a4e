package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"parties247/internal/delivery/http/controllers"
	"parties247/internal/delivery/http/helpers"
	"parties247/internal/delivery/http/middleware"
	"parties247/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Health    *controllers.HealthController
	Auth      *controllers.AuthController
	Party     *controllers.PartyController
	Taxonomy  *controllers.TaxonomyController
	Carousel  *controllers.CarouselController
	Article   *controllers.ArticleController
	Analytics *controllers.AnalyticsController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	admin := middleware.RequireAuth(verifier, logger)

	mux.HandleFunc("GET /health", c.Health.Health)

	// Public
	mux.HandleFunc("GET /parties", c.Party.ListParties)
	mux.HandleFunc("GET /parties/{slug}", c.Party.GetParty)
	mux.HandleFunc("GET /parties/{slug}/ticket", c.Party.TicketRedirect)
	mux.HandleFunc("GET /taxonomies", c.Taxonomy.ListTaxonomies)
	mux.HandleFunc("GET /taxonomies/{axis}/{value}", c.Taxonomy.ListTaxonomyParties)
	mux.HandleFunc("GET /carousels", c.Carousel.ListCarousels)
	mux.HandleFunc("GET /carousels/{id}", c.Carousel.GetCarousel)
	mux.HandleFunc("GET /articles", c.Article.ListArticles)
	mux.HandleFunc("GET /articles/{slug}", c.Article.GetArticle)
	mux.HandleFunc("POST /analytics/visit", c.Analytics.RecordVisit)
	mux.HandleFunc("POST /analytics/click", c.Analytics.RecordClick)

	// Auth
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Admin: parties
	mux.HandleFunc("POST /admin/parties/import", admin(c.Party.ImportParty))
	mux.HandleFunc("POST /admin/parties/import-batch", admin(c.Party.ImportBatch))
	mux.HandleFunc("POST /admin/parties", admin(c.Party.CreateParty))
	mux.HandleFunc("POST /admin/parties/{id}/refresh", admin(c.Party.RefreshParty))
	mux.HandleFunc("PATCH /admin/parties/{id}", admin(c.Party.UpdateParty))
	mux.HandleFunc("DELETE /admin/parties/{id}", admin(c.Party.DeleteParty))
	mux.HandleFunc("PUT /admin/parties/{id}/referral", admin(c.Party.SetReferralCode))
	mux.HandleFunc("GET /admin/settings/referral", admin(c.Party.GetDefaultReferralCode))
	mux.HandleFunc("PUT /admin/settings/referral", admin(c.Party.SetDefaultReferralCode))

	// Admin: carousels
	mux.HandleFunc("POST /admin/carousels", admin(c.Carousel.CreateCarousel))
	mux.HandleFunc("PUT /admin/carousels/order", admin(c.Carousel.ReorderCarousels))
	mux.HandleFunc("PATCH /admin/carousels/{id}", admin(c.Carousel.UpdateCarousel))
	mux.HandleFunc("DELETE /admin/carousels/{id}", admin(c.Carousel.DeleteCarousel))

	// Admin: articles
	mux.HandleFunc("POST /admin/articles", admin(c.Article.CreateArticle))
	mux.HandleFunc("PATCH /admin/articles/{id}", admin(c.Article.UpdateArticle))
	mux.HandleFunc("DELETE /admin/articles/{id}", admin(c.Article.DeleteArticle))

	// Admin: analytics
	mux.HandleFunc("GET /admin/analytics/summary", admin(c.Analytics.Summary))
	mux.HandleFunc("GET /admin/analytics/parties/{id}", admin(c.Analytics.PartyDaily))

	// Metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "route not found")
	})

	return mux
}

// NewHandler wraps the router with the request middleware chain.
func NewHandler(mux *http.ServeMux, corsOrigins []string, logger *slog.Logger) http.Handler {
	var h http.Handler = middleware.Metrics(mux)
	h = middleware.LoggingMiddleware(logger, h)
	h = middleware.RequestID(h)
	return middleware.CORS(corsOrigins, h)
}
