package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"scaler/internal/http/handlers"
	"scaler/internal/middleware"
)

func NewRouter(app *handlers.App, country middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Cfg.AllowedOrigins),
		middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute),
		middleware.I18N("en", country),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/adcopy", func(r chi.Router) {
			r.Get("/", app.AdCopyList)
			r.Post("/", app.AdCopyCreate)
			r.Get("/{id}", app.AdCopyGet)
			r.Post("/{id}/images", app.AdCopyGenerateImages)
			r.Post("/{id}/prompts", app.AdCopyGeneratePrompts)
		})

		r.Route("/creatives", func(r chi.Router) {
			r.Post("/", app.CreativeGenerate)
			r.Post("/variants", app.CreativeVariants)
			r.Post("/export", app.CreativeExport)

			r.Route("/batch", func(r chi.Router) {
				r.Get("/", app.BatchList)
				r.Post("/", app.BatchStart)
				r.Get("/{id}", app.BatchStatus)
				r.Delete("/{id}", app.BatchCancel)
			})
		})

		r.Post("/composites", app.CompositeBatch)

		r.Get("/products", app.Products)
		r.Get("/agents", app.Agents)
		r.Get("/activity", app.Activity)
		r.Post("/activity", app.ActivityCreate)
		r.Get("/trends", app.Trends)
		r.Get("/stats", app.Stats)

		r.Get("/models", app.Models)
		r.Get("/formats", app.Formats)
		r.Get("/templates", app.OverlayTemplates)
	})

	return r
}
