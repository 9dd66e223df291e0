package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"scaler/internal/creative"
)

type batchRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negativePrompt"`
	Concurrency    int    `json:"concurrency"`
	Variants       []struct {
		Overlay overlayPayload `json:"overlay"`
		Width   int            `json:"width"`
		Height  int            `json:"height"`
		Seed    *int           `json:"seed"`
	} `json:"variants"`
}

// BatchStart launches a batch creative run in the background and returns its
// run ID immediately.
func (a *App) BatchStart(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt is required")
		return
	}
	if len(req.Variants) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "variants is required")
		return
	}

	variants := make([]creative.BatchVariant, len(req.Variants))
	for i, v := range req.Variants {
		variants[i] = creative.BatchVariant{
			Overlay: v.Overlay.toDomain(),
			Width:   v.Width,
			Height:  v.Height,
			Seed:    v.Seed,
		}
	}

	concurrency := req.Concurrency
	if concurrency <= 0 {
		concurrency = a.Cfg.CreativeConcurrency
	}

	id := a.Batches.Start(creative.CreativeBatch{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Variants:       variants,
	}, concurrency)

	a.json(w, http.StatusAccepted, map[string]any{"runId": id, "total": len(variants)})
}

// BatchStatus reports the current progress of one batch run.
func (a *App) BatchStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Batches.Snapshot(chi.URLParam(r, "id"))
	if err != nil {
		a.providerError(w, err)
		return
	}
	a.json(w, http.StatusOK, batchSnapshot(snap))
}

// BatchCancel stops a running batch. Items already in flight settle normally.
func (a *App) BatchCancel(w http.ResponseWriter, r *http.Request) {
	if err := a.Batches.Cancel(chi.URLParam(r, "id")); err != nil {
		a.providerError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, map[string]string{"status": "cancelling"})
}

// BatchList returns all known runs, most recent first.
func (a *App) BatchList(w http.ResponseWriter, r *http.Request) {
	snaps := a.Batches.List()
	items := make([]map[string]any, len(snaps))
	for i, snap := range snaps {
		items[i] = batchSnapshot(snap)
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func batchSnapshot(snap creative.RunSnapshot) map[string]any {
	outcomes := make([]map[string]any, len(snap.Outcomes))
	for i, outcome := range snap.Outcomes {
		entry := map[string]any{"settled": outcome.Settled()}
		if outcome.Creative != nil {
			entry["creative"] = creativeResponse(outcome.Creative)
		}
		if outcome.Err != "" {
			entry["error"] = outcome.Err
		}
		outcomes[i] = entry
	}

	out := map[string]any{
		"runId":     snap.ID,
		"state":     string(snap.State),
		"prompt":    snap.Prompt,
		"total":     snap.Total,
		"completed": snap.Completed,
		"failed":    snap.Failed,
		"outcomes":  outcomes,
		"startedAt": snap.StartedAt,
	}
	if !snap.FinishedAt.IsZero() {
		out["finishedAt"] = snap.FinishedAt
	}
	return out
}
