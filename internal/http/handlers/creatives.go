package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"scaler/internal/creative"
	"scaler/internal/domain"
)

type overlayPayload struct {
	Headline  string `json:"headline"`
	CTA       string `json:"cta"`
	Subtext   string `json:"subtext"`
	Format    string `json:"format"`
	TextColor string `json:"textColor"`
	CTAColor  string `json:"ctaColor"`
	CTABg     string `json:"ctaBackground"`
}

func (p overlayPayload) toDomain() domain.OverlayConfig {
	return domain.OverlayConfig{
		Headline: p.Headline,
		CTA:      p.CTA,
		Subtext:  p.Subtext,
		Format:   domain.ParseAdFormat(p.Format),
		Colors: domain.OverlayColors{
			Headline:      p.TextColor,
			CTA:           p.CTAColor,
			CTABackground: p.CTABg,
		},
	}
}

type creativeRequest struct {
	Prompt         string         `json:"prompt"`
	NegativePrompt string         `json:"negativePrompt"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	Seed           *int           `json:"seed"`
	Overlay        overlayPayload `json:"overlay"`
}

func creativeResponse(c *domain.AdCreative) map[string]any {
	resp := map[string]any{
		"baseImage": map[string]any{
			"url":    c.BaseImage.URL,
			"width":  c.BaseImage.Width,
			"height": c.BaseImage.Height,
		},
		"seed":       c.Seed,
		"hasOverlay": c.HasOverlay,
		"timing": map[string]int64{
			"generationMs": c.Timing.Generation.Milliseconds(),
			"overlayMs":    c.Timing.Overlay.Milliseconds(),
			"totalMs":      c.Timing.Total.Milliseconds(),
		},
	}
	if c.FinalImage != nil {
		resp["finalImage"] = map[string]any{"url": c.FinalImage.URL, "uid": c.FinalImage.UID}
	}
	return resp
}

// CreativeGenerate runs the full generate-then-overlay pipeline for one
// creative and blocks until it finishes.
func (a *App) CreativeGenerate(w http.ResponseWriter, r *http.Request) {
	var req creativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt is required")
		return
	}

	result, err := a.Composer.GenerateAdCreative(r.Context(), creative.CreativeInput{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Width:          req.Width,
		Height:         req.Height,
		Seed:           req.Seed,
		Overlay:        req.Overlay.toDomain(),
	})
	if err != nil {
		a.providerError(w, err)
		return
	}
	a.json(w, http.StatusOK, creativeResponse(result))
}

type variantsRequest struct {
	VariantA   string `json:"variantA"`
	VariantB   string `json:"variantB"`
	StoryBrand string `json:"storyBrand"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// CreativeVariants renders the three prompt variants of an ad concept.
func (a *App) CreativeVariants(w http.ResponseWriter, r *http.Request) {
	var req variantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.VariantA == "" || req.VariantB == "" || req.StoryBrand == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "all three variant prompts are required")
		return
	}

	results, err := a.Composer.GenerateAdVariants(r.Context(), domain.AdPromptSet{
		VariantA:   req.VariantA,
		VariantB:   req.VariantB,
		StoryBrand: req.StoryBrand,
	}, req.Width, req.Height)
	if err != nil {
		a.providerError(w, err)
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"variantA":   variantImage(results.VariantA),
		"variantB":   variantImage(results.VariantB),
		"storyBrand": variantImage(results.StoryBrand),
	})
}

func variantImage(result *domain.GenerationResult) map[string]any {
	if result == nil || len(result.Images) == 0 {
		return nil
	}
	img := result.Images[0]
	return map[string]any{"url": img.URL, "width": img.Width, "height": img.Height, "seed": result.Seed}
}

type compositeRequest struct {
	Items []struct {
		BaseImageURL string         `json:"baseImageUrl"`
		Overlay      overlayPayload `json:"overlay"`
	} `json:"items"`
	Concurrency int `json:"concurrency"`
}

// CompositeBatch overlays text onto already-generated base images. Items fail
// independently; the response always carries one entry per input.
func (a *App) CompositeBatch(w http.ResponseWriter, r *http.Request) {
	var req compositeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if len(req.Items) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "items is required")
		return
	}

	items := make([]creative.CompositeItem, len(req.Items))
	for i, item := range req.Items {
		if strings.TrimSpace(item.BaseImageURL) == "" {
			a.error(w, http.StatusBadRequest, "bad_request", "every item needs a baseImageUrl")
			return
		}
		items[i] = creative.CompositeItem{BaseImageURL: item.BaseImageURL, Overlay: item.Overlay.toDomain()}
	}

	concurrency := req.Concurrency
	if concurrency <= 0 {
		concurrency = a.Cfg.CompositeConcurrency
	}

	results := a.Composer.CompositeBatch(r.Context(), items, concurrency, nil)

	out := make([]map[string]any, len(results))
	var failed int
	for i, result := range results {
		entry := map[string]any{
			"status":       string(result.Status),
			"baseImageUrl": result.BaseImageURL,
		}
		if result.ImageURL != "" {
			entry["imageUrl"] = result.ImageURL
		}
		if result.UID != "" {
			entry["uid"] = result.UID
		}
		if result.Error != "" {
			entry["error"] = result.Error
			failed++
		}
		out[i] = entry
	}
	a.json(w, http.StatusOK, map[string]any{
		"items":  out,
		"total":  len(out),
		"failed": failed,
	})
}
