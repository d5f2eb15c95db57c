// Package http provides the HTTP delivery layer for the URL shortener and
// domain redirect service.
package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/investingindigital/url-shortener/internal/config"
	"github.com/investingindigital/url-shortener/internal/models"
	"github.com/investingindigital/url-shortener/internal/service"
	httpSwagger "github.com/swaggo/http-swagger"
)

// URLService defines the interface for the core short code resolution and
// allocation logic.
type URLService interface {
	// ShortenURL maps the target URL to a short code, reusing or
	// reactivating an existing mapping for the same URL.
	ShortenURL(ctx context.Context, targetURL, customCode string) (*models.URL, error)

	// ResolveShortCode retrieves the active mapping for a short code.
	ResolveShortCode(ctx context.Context, shortCode string) (*models.URL, error)

	// ModifyURL applies a partial update to the mapping holding shortCode.
	ModifyURL(ctx context.Context, shortCode string, upd service.URLUpdate) (*models.URL, error)

	// DeactivateURL soft-deletes the mapping for a short code.
	DeactivateURL(ctx context.Context, shortCode string) error
}

// DomainService defines the interface for domain redirect management and
// Host header resolution.
type DomainService interface {
	// CreateDomain registers a domain redirect.
	CreateDomain(ctx context.Context, domain, redirectURL string) (*models.Domain, error)

	// ListDomains returns all active domain redirects.
	ListDomains(ctx context.Context) ([]*models.Domain, error)

	// ModifyDomain applies a partial update to a domain record.
	ModifyDomain(ctx context.Context, id int64, upd service.DomainUpdate) (*models.Domain, error)

	// DeactivateDomain soft-deletes a domain redirect.
	DeactivateDomain(ctx context.Context, id int64) error

	// ResolveHost maps a request Host header value to an active redirect.
	ResolveHost(ctx context.Context, host string) (*models.Domain, error)
}

// getValidate initializes a validator instance for incoming request
// payloads, extracting field names from JSON tags.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and
// middleware configured. API keys and the admin hostname come from the
// injected config; handlers never read ambient state.
func NewRouter(logger *httplog.Logger, cfg *config.Config, urlSvc URLService, domainSvc DomainService) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", apiKeyHeader},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	validate := getValidate()

	fullAccess := apiKeyAuth(cfg.Auth, true)
	anyKey := apiKeyAuth(cfg.Auth, false)
	adminHost := requireHost(cfg.Shortener.AdminDomain)

	r.Group(func(r chi.Router) {
		r.Use(adminHost)

		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/docs/swagger.yml"),
		))

		r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, cfg.Shortener.DocsPath)
		})
	})

	r.Get("/", handleRoot(domainSvc))

	r.With(anyKey).Get("/api/test", handleTestAPIKey)
	r.With(anyKey).Post("/shorten", handleShortenURL(urlSvc, validate))

	r.Route("/urls/{shortCode}", func(r chi.Router) {
		r.Use(fullAccess)

		r.Put("/", handleModifyURL(urlSvc, validate))
		r.Delete("/", handleDeactivateURL(urlSvc))
	})

	r.Route("/domains", func(r chi.Router) {
		r.Use(fullAccess)

		r.With(adminHost).Get("/", handleListDomains(domainSvc))
		r.Post("/", handleCreateDomain(domainSvc, validate))

		r.Route("/{domainID}", func(r chi.Router) {
			r.Put("/", handleModifyDomain(domainSvc, validate))
			r.Delete("/", handleDeactivateDomain(domainSvc))
		})
	})

	r.Get("/{shortCode}", handleRedirect(urlSvc))

	return r
}
