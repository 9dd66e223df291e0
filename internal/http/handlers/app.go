package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"scaler/internal/creative"
	"scaler/internal/domain"
	"scaler/internal/infra"
	"scaler/internal/providers/bannerbear"
	"scaler/internal/providers/n8n"
)

// Cache TTLs mirror the dashboard's refresh cadence per data set.
const (
	productsTTL = 30 * time.Second
	agentsTTL   = 5 * time.Second
	activityTTL = 10 * time.Second
	trendsTTL   = 60 * time.Second
	statsTTL    = 10 * time.Second
)

// App carries the wired dependencies of every HTTP handler.
type App struct {
	Repo     domain.MagpieRepository
	Composer *creative.Composer
	Batches  *creative.Registry
	AdCopy   *n8n.Client
	Overlays *bannerbear.Client
	Cfg      *infra.Config
	Logger   zerolog.Logger
	Cache    *cache.Cache
	Fetch    *http.Client
}

func NewApp(deps App) *App {
	app := deps
	if app.Cache == nil {
		app.Cache = cache.New(30*time.Second, 5*time.Minute)
	}
	if app.Fetch == nil {
		app.Fetch = &http.Client{Timeout: 30 * time.Second}
	}
	return &app
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": slug, "message": message},
	})
}

// providerError translates upstream failures into HTTP responses without
// leaking raw provider payloads.
func (a *App) providerError(w http.ResponseWriter, err error) {
	var perr *domain.ProviderError
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		a.error(w, http.StatusServiceUnavailable, "not_configured", err.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrRunNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrPollTimeout):
		a.error(w, http.StatusGatewayTimeout, "poll_timeout", err.Error())
	case errors.As(err, &perr):
		a.Logger.Error().Err(err).Str("provider", perr.Provider).Msg("upstream provider error")
		a.error(w, http.StatusBadGateway, "upstream_error", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "request failed")
	}
}

// cached runs load at most once per TTL window for a given key.
func cached[T any](a *App, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if v, ok := a.Cache.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	value, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	a.Cache.Set(key, value, ttl)
	return value, nil
}
