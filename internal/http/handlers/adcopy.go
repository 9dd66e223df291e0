package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"scaler/internal/domain"
)

// AdCopyList proxies the copy automation workflow's record listing.
func (a *App) AdCopyList(w http.ResponseWriter, r *http.Request) {
	records, err := a.AdCopy.ListAdCopy(r.Context())
	if err != nil {
		a.providerError(w, err)
		return
	}
	if records == nil {
		records = []domain.AdCopyRecord{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": records})
}

// AdCopyGet fetches one record by its workflow record ID.
func (a *App) AdCopyGet(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "id")
	record, err := a.AdCopy.GetAdCopy(r.Context(), recordID)
	if err != nil {
		a.providerError(w, err)
		return
	}
	a.json(w, http.StatusOK, record)
}

// AdCopyCreate triggers a new copy generation run from a brief.
func (a *App) AdCopyCreate(w http.ResponseWriter, r *http.Request) {
	var brief domain.AdCopyBrief
	if err := json.NewDecoder(r.Body).Decode(&brief); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(brief.FullConcept) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "fullConcept is required")
		return
	}

	run, err := a.AdCopy.TriggerAdCopy(r.Context(), brief)
	if err != nil {
		a.providerError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, run)
}

// AdCopyGenerateImages asks the workflow to render images for a record.
func (a *App) AdCopyGenerateImages(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "id")
	if err := a.AdCopy.TriggerImages(r.Context(), recordID); err != nil {
		a.providerError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, map[string]any{"recordId": recordID, "status": domain.GenerateRunning})
}

// AdCopyGeneratePrompts asks the workflow to write image prompts for a record.
func (a *App) AdCopyGeneratePrompts(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "id")
	if err := a.AdCopy.TriggerPrompts(r.Context(), recordID); err != nil {
		a.providerError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, map[string]any{"recordId": recordID, "status": domain.GenerateRunning})
}
