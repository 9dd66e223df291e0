package handlers

import (
	"net/http"

	"scaler/internal/domain"
	"scaler/internal/providers/fal"
)

// Models lists the generation models the dashboard can pick from.
func (a *App) Models(w http.ResponseWriter, r *http.Request) {
	models := fal.AvailableModels()
	items := make([]map[string]any, len(models))
	for i, m := range models {
		items[i] = map[string]any{
			"id":          m.ID,
			"name":        m.Name,
			"speed":       m.Speed,
			"quality":     m.Quality,
			"description": m.Description,
		}
	}
	a.json(w, http.StatusOK, map[string]any{
		"items":   items,
		"default": a.Cfg.FalModel,
	})
}

// Formats lists the supported creative formats and their pixel presets.
func (a *App) Formats(w http.ResponseWriter, r *http.Request) {
	formats := []domain.AdFormat{domain.FormatSquare, domain.FormatStory, domain.FormatLandscape}
	items := make([]map[string]any, len(formats))
	for i, f := range formats {
		width, height := domain.FormatSize(f)
		items[i] = map[string]any{"id": string(f), "width": width, "height": height}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// OverlayTemplates lists the compositing templates available to the overlay
// step, fetched live from the provider.
func (a *App) OverlayTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := a.Overlays.ListTemplates(r.Context())
	if err != nil {
		a.providerError(w, err)
		return
	}

	items := make([]map[string]any, len(templates))
	for i, t := range templates {
		items[i] = map[string]any{
			"uid":           t.UID,
			"name":          t.Name,
			"width":         t.Width,
			"height":        t.Height,
			"modifications": t.AvailableModifications,
		}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
