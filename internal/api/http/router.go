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

	"urlmapper/internal/models"
	"urlmapper/pkg/middleware/ratelimit"
)

// URLService is the mapping core consumed by this transport layer.
type URLService interface {
	ShortenURL(ctx context.Context, targetURL string) (*models.URLMapping, error)
	ResolveURL(ctx context.Context, key string) (*models.URLMapping, error)
	InspectURL(ctx context.Context, key string) (*models.URLMapping, error)
	DeactivateURL(ctx context.Context, key string) (*models.URLMapping, error)
}

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

// NewRouter wires the API routes. The redirect route sits at the root so
// short links stay short; management routes live under /api/v1. A nil
// limiter disables rate limiting.
func NewRouter(logger *httplog.Logger, urlSvc URLService, limiter *ratelimit.Limiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	validate := getValidate()

	r.Get("/{key}", handleRedirect(urlSvc))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"https://*"},
			AllowedMethods:   []string{"POST", "GET", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Accept"},
			AllowCredentials: false,
			MaxAge:           84600,
		}))
		r.Use(middleware.AllowContentType("application/json"))

		r.Get("/ping", handlePing)

		r.Route("/urls", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if limiter != nil {
					r.Use(limiter.Handler)
				}
				r.Post("/", handleCreateURL(urlSvc, validate))
			})

			r.Route("/{key}", func(r chi.Router) {
				r.Get("/", handleInspectURL(urlSvc))
				r.Delete("/", handleDeactivateURL(urlSvc))
			})
		})
	})

	return r
}
