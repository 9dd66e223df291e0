package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"scaler/internal/creative"
	"scaler/internal/domain"
	"scaler/internal/infra"
)

type stubImageService struct {
	delay time.Duration
	err   error
}

func (s *stubImageService) Configured() bool { return true }

func (s *stubImageService) Generate(ctx context.Context, req domain.GenerationRequest, onStatus func(domain.QueueStatus)) (*domain.GenerationResult, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &domain.GenerationResult{
		Images: []domain.Image{{URL: "https://img.test/base.png", Width: req.Width, Height: req.Height}},
		Seed:   42,
	}, nil
}

type stubOverlayService struct {
	configured bool
	err        error
}

func (s *stubOverlayService) Configured() bool { return s.configured }

func (s *stubOverlayService) Apply(ctx context.Context, baseImageURL string, overlay domain.OverlayConfig) (*domain.CompositeResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.CompositeResult{
		UID:          "bb-1",
		Status:       domain.CompositeCompleted,
		ImageURL:     "https://img.test/final.png",
		BaseImageURL: baseImageURL,
		Overlay:      overlay,
	}, nil
}

func creativeApp(images creative.ImageService, overlay creative.OverlayService) *App {
	composer := creative.NewComposer(images, overlay, zerolog.Nop())
	return NewApp(App{
		Composer: composer,
		Batches: creative.NewRegistry(creative.RegistryOptions{
			Composer: composer,
			Logger:   zerolog.Nop(),
		}),
		Cfg:    &infra.Config{CreativeConcurrency: 3, CompositeConcurrency: 5},
		Logger: zerolog.Nop(),
	})
}

func TestCreativeGenerateFullPipeline(t *testing.T) {
	app := creativeApp(&stubImageService{}, &stubOverlayService{configured: true})

	body := strings.NewReader(`{
		"prompt": "wireless earbuds",
		"overlay": {"headline": "Summer Sale", "cta": "Shop Now", "format": "square"}
	}`)
	rr := httptest.NewRecorder()
	app.CreativeGenerate(rr, httptest.NewRequest("POST", "/api/creatives", body))
	if rr.Code != 200 {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["hasOverlay"] != true {
		t.Errorf("hasOverlay = %v", payload["hasOverlay"])
	}
	base := payload["baseImage"].(map[string]any)
	if base["width"] != float64(1080) || base["height"] != float64(1080) {
		t.Errorf("square preset not applied: %+v", base)
	}
	if payload["finalImage"] == nil {
		t.Error("finalImage missing")
	}
}

func TestCreativeGenerateRequiresPrompt(t *testing.T) {
	app := creativeApp(&stubImageService{}, &stubOverlayService{})

	rr := httptest.NewRecorder()
	app.CreativeGenerate(rr, httptest.NewRequest("POST", "/api/creatives", strings.NewReader(`{}`)))
	if rr.Code != 400 {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestCreativeGenerateOverlayFailureStillReturnsBase(t *testing.T) {
	app := creativeApp(&stubImageService{}, &stubOverlayService{configured: true, err: errors.New("render failed")})

	body := strings.NewReader(`{"prompt": "earbuds", "overlay": {"headline": "x", "cta": "y", "format": "story"}}`)
	rr := httptest.NewRecorder()
	app.CreativeGenerate(rr, httptest.NewRequest("POST", "/api/creatives", body))
	if rr.Code != 200 {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var payload map[string]any
	_ = json.NewDecoder(rr.Body).Decode(&payload)
	if payload["hasOverlay"] != false {
		t.Errorf("hasOverlay = %v, want false", payload["hasOverlay"])
	}
}

func TestCreativeGenerateProviderTimeout(t *testing.T) {
	timeout := fmt.Errorf("image generation: %w", domain.ErrPollTimeout)
	app := creativeApp(&stubImageService{err: timeout}, &stubOverlayService{})

	body := strings.NewReader(`{"prompt": "earbuds"}`)
	rr := httptest.NewRecorder()
	app.CreativeGenerate(rr, httptest.NewRequest("POST", "/api/creatives", body))
	if rr.Code != 504 {
		t.Fatalf("status = %d, want 504", rr.Code)
	}
}

func TestCreativeVariantsRequiresAllPrompts(t *testing.T) {
	app := creativeApp(&stubImageService{}, &stubOverlayService{})

	body := strings.NewReader(`{"variantA": "a", "variantB": "b"}`)
	rr := httptest.NewRecorder()
	app.CreativeVariants(rr, httptest.NewRequest("POST", "/api/creatives/variants", body))
	if rr.Code != 400 {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestCompositeBatchPartialFailureResponse(t *testing.T) {
	app := creativeApp(&stubImageService{}, &stubOverlayService{configured: true})

	body := strings.NewReader(`{"items": [
		{"baseImageUrl": "https://img.test/1.png", "overlay": {"headline": "A", "cta": "Go", "format": "square"}},
		{"baseImageUrl": "https://img.test/2.png", "overlay": {"headline": "B", "cta": "Go", "format": "square"}}
	]}`)
	rr := httptest.NewRecorder()
	app.CompositeBatch(rr, httptest.NewRequest("POST", "/api/composites", body))
	if rr.Code != 200 {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var payload struct {
		Items  []map[string]any `json:"items"`
		Total  int              `json:"total"`
		Failed int              `json:"failed"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Total != 2 || payload.Failed != 0 {
		t.Fatalf("total=%d failed=%d", payload.Total, payload.Failed)
	}
	for i, item := range payload.Items {
		if item["status"] != "completed" {
			t.Errorf("item %d status = %v", i, item["status"])
		}
	}
}

func TestBatchLifecycleOverHTTP(t *testing.T) {
	app := creativeApp(&stubImageService{delay: 5 * time.Millisecond}, &stubOverlayService{})

	body := strings.NewReader(`{
		"prompt": "earbuds",
		"variants": [
			{"overlay": {"headline": "A", "cta": "Go", "format": "square"}},
			{"overlay": {"headline": "B", "cta": "Go", "format": "story"}}
		]
	}`)
	rr := httptest.NewRecorder()
	app.BatchStart(rr, httptest.NewRequest("POST", "/api/creatives/batch", body))
	if rr.Code != 202 {
		t.Fatalf("start status = %d: %s", rr.Code, rr.Body.String())
	}

	var started struct {
		RunID string `json:"runId"`
		Total int    `json:"total"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&started); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if started.RunID == "" || started.Total != 2 {
		t.Fatalf("started = %+v", started)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		snap, err := app.Batches.Snapshot(started.RunID)
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		if snap.State != creative.RunRunning {
			if snap.Completed != 2 {
				t.Fatalf("completed = %d", snap.Completed)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("batch never finished")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBatchStatusUnknownRun(t *testing.T) {
	app := creativeApp(&stubImageService{}, &stubOverlayService{})

	req := httptest.NewRequest("GET", "/api/creatives/batch/nope", nil)
	rr := httptest.NewRecorder()
	app.BatchStatus(rr, req)
	if rr.Code != 404 {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}
