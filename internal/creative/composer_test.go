package creative

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"scaler/internal/domain"
)

type stubImages struct {
	mu       sync.Mutex
	requests []domain.GenerationRequest
	starts   []time.Time
	delay    time.Duration
	result   *domain.GenerationResult
	err      error
	// failPrompts fails generation for any prompt containing one of these.
	failPrompts []string
}

func (s *stubImages) Configured() bool { return true }

func (s *stubImages) Generate(ctx context.Context, req domain.GenerationRequest, onStatus func(domain.QueueStatus)) (*domain.GenerationResult, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.starts = append(s.starts, time.Now())
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	for _, marker := range s.failPrompts {
		if strings.Contains(req.Prompt, marker) {
			return nil, errors.New("generation rejected: " + marker)
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &domain.GenerationResult{
		Images: []domain.Image{{URL: "https://img.test/base.png", Width: req.Width, Height: req.Height}},
		Seed:   42,
	}, nil
}

type stubOverlay struct {
	mu         sync.Mutex
	calls      int
	configured bool
	err        error
	result     *domain.CompositeResult
}

func (s *stubOverlay) Configured() bool { return s.configured }

func (s *stubOverlay) Apply(ctx context.Context, baseImageURL string, overlay domain.OverlayConfig) (*domain.CompositeResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &domain.CompositeResult{
		UID:          "bb-1",
		Status:       domain.CompositeCompleted,
		ImageURL:     "https://img.test/final.png",
		BaseImageURL: baseImageURL,
		Overlay:      overlay,
	}, nil
}

func testOverlay() domain.OverlayConfig {
	return domain.OverlayConfig{Headline: "Summer Sale", CTA: "Shop Now", Format: domain.FormatSquare}
}

func TestGenerateAdCreativeFullPipeline(t *testing.T) {
	images := &stubImages{}
	overlay := &stubOverlay{configured: true}
	c := NewComposer(images, overlay, zerolog.Nop())

	creative, err := c.GenerateAdCreative(context.Background(), CreativeInput{
		Prompt:  "wireless earbuds",
		Overlay: testOverlay(),
	})
	if err != nil {
		t.Fatalf("GenerateAdCreative: %v", err)
	}
	if creative.BaseImage.URL != "https://img.test/base.png" {
		t.Errorf("base image = %q", creative.BaseImage.URL)
	}
	if !creative.HasOverlay || creative.FinalImage == nil {
		t.Fatalf("expected overlay applied, got hasOverlay=%v", creative.HasOverlay)
	}
	if creative.FinalImage.URL != "https://img.test/final.png" {
		t.Errorf("final image = %q", creative.FinalImage.URL)
	}
	if creative.Timing.Total <= 0 {
		t.Errorf("total timing not recorded: %v", creative.Timing.Total)
	}

	req := images.requests[0]
	if !strings.Contains(req.Prompt, "professional photography") {
		t.Errorf("prompt not enhanced: %q", req.Prompt)
	}
	if !strings.Contains(req.NegativePrompt, "watermark") {
		t.Errorf("negative prompt missing baseline: %q", req.NegativePrompt)
	}
	if req.Width != 1080 || req.Height != 1080 {
		t.Errorf("square preset not applied: %dx%d", req.Width, req.Height)
	}
	if req.NumImages != 1 {
		t.Errorf("NumImages = %d", req.NumImages)
	}
}

func TestGenerateAdCreativeExplicitDimensionsWin(t *testing.T) {
	images := &stubImages{}
	c := NewComposer(images, &stubOverlay{}, zerolog.Nop())

	_, err := c.GenerateAdCreative(context.Background(), CreativeInput{
		Prompt:  "banner",
		Width:   640,
		Height:  480,
		Overlay: domain.OverlayConfig{Format: domain.FormatStory},
	})
	if err != nil {
		t.Fatalf("GenerateAdCreative: %v", err)
	}
	req := images.requests[0]
	if req.Width != 640 || req.Height != 480 {
		t.Errorf("explicit dimensions overridden: %dx%d", req.Width, req.Height)
	}
}

func TestGenerateAdCreativeOverlayFailureDegrades(t *testing.T) {
	images := &stubImages{}
	overlay := &stubOverlay{configured: true, err: errors.New("template render failed")}
	c := NewComposer(images, overlay, zerolog.Nop())

	creative, err := c.GenerateAdCreative(context.Background(), CreativeInput{
		Prompt:  "earbuds",
		Overlay: testOverlay(),
	})
	if err != nil {
		t.Fatalf("overlay failure should not fail the pipeline: %v", err)
	}
	if creative.HasOverlay || creative.FinalImage != nil {
		t.Errorf("expected base-only creative, got hasOverlay=%v", creative.HasOverlay)
	}
	if creative.BaseImage.URL == "" {
		t.Errorf("base image missing")
	}
}

func TestGenerateAdCreativeSkipsUnconfiguredOverlay(t *testing.T) {
	overlay := &stubOverlay{configured: false}
	c := NewComposer(&stubImages{}, overlay, zerolog.Nop())

	creative, err := c.GenerateAdCreative(context.Background(), CreativeInput{
		Prompt:  "earbuds",
		Overlay: testOverlay(),
	})
	if err != nil {
		t.Fatalf("GenerateAdCreative: %v", err)
	}
	if creative.HasOverlay {
		t.Errorf("overlay applied despite unconfigured service")
	}
	if overlay.calls != 0 {
		t.Errorf("overlay service called %d times", overlay.calls)
	}
}

func TestGenerateAdCreativeEmptyImages(t *testing.T) {
	images := &stubImages{result: &domain.GenerationResult{Seed: 7}}
	c := NewComposer(images, &stubOverlay{}, zerolog.Nop())

	_, err := c.GenerateAdCreative(context.Background(), CreativeInput{Prompt: "earbuds"})
	if !errors.Is(err, domain.ErrNoImages) {
		t.Fatalf("expected ErrNoImages, got %v", err)
	}
}

func TestGenerateAdVariantsAllSucceed(t *testing.T) {
	images := &stubImages{}
	c := NewComposer(images, &stubOverlay{}, zerolog.Nop())

	results, err := c.GenerateAdVariants(context.Background(), domain.AdPromptSet{
		VariantA:   "pain point angle",
		VariantB:   "benefits angle",
		StoryBrand: "hero journey angle",
	}, 0, 0)
	if err != nil {
		t.Fatalf("GenerateAdVariants: %v", err)
	}
	if results.VariantA == nil || results.VariantB == nil || results.StoryBrand == nil {
		t.Fatalf("missing variant results: %+v", results)
	}
	if len(images.requests) != 3 {
		t.Errorf("expected 3 generations, got %d", len(images.requests))
	}
	for _, req := range images.requests {
		if req.Width != 1024 || req.Height != 1024 {
			t.Errorf("default dimensions not applied: %dx%d", req.Width, req.Height)
		}
	}
}

func TestGenerateAdVariantsPartialFailureFailsCall(t *testing.T) {
	images := &stubImages{failPrompts: []string{"benefits"}}
	c := NewComposer(images, &stubOverlay{}, zerolog.Nop())

	_, err := c.GenerateAdVariants(context.Background(), domain.AdPromptSet{
		VariantA:   "pain point angle",
		VariantB:   "benefits angle",
		StoryBrand: "hero journey angle",
	}, 512, 512)
	if err == nil {
		t.Fatal("expected error when one variant fails")
	}
}
