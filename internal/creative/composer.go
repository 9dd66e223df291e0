package creative

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"scaler/internal/domain"
)

// ImageService drives one image generation job to its terminal result.
type ImageService interface {
	Configured() bool
	Generate(ctx context.Context, req domain.GenerationRequest, onStatus func(domain.QueueStatus)) (*domain.GenerationResult, error)
}

// OverlayService composites text onto a base image and waits for completion.
type OverlayService interface {
	Configured() bool
	Apply(ctx context.Context, baseImageURL string, overlay domain.OverlayConfig) (*domain.CompositeResult, error)
}

// Composer chains image generation and text-overlay compositing into one
// creative pipeline.
type Composer struct {
	images  ImageService
	overlay OverlayService
	logger  zerolog.Logger
}

func NewComposer(images ImageService, overlay OverlayService, logger zerolog.Logger) *Composer {
	return &Composer{images: images, overlay: overlay, logger: logger}
}

// CreativeInput describes one requested ad creative. Explicit dimensions take
// precedence over the overlay format's preset.
type CreativeInput struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Seed           *int
	Overlay        domain.OverlayConfig
}

// GenerateAdCreative produces one finished creative: generate the base image,
// then composite the overlay. Overlay failure degrades gracefully: the base
// image is already paid for, so it is returned without the overlay rather
// than failing the whole pipeline.
func (c *Composer) GenerateAdCreative(ctx context.Context, input CreativeInput) (*domain.AdCreative, error) {
	start := time.Now()

	presetW, presetH := domain.FormatSize(input.Overlay.Format)
	width, height := input.Width, input.Height
	if width <= 0 {
		width = presetW
	}
	if height <= 0 {
		height = presetH
	}

	result, err := c.images.Generate(ctx, domain.GenerationRequest{
		Prompt:         EnhancePromptForAds(input.Prompt),
		NegativePrompt: AdNegativePrompt(input.NegativePrompt),
		Width:          width,
		Height:         height,
		NumImages:      1,
		Seed:           input.Seed,
	}, nil)
	if err != nil {
		return nil, err
	}
	generationElapsed := time.Since(start)

	// Guard against a 200 response with an empty payload; this is a provider
	// contract violation, not a transport failure.
	if len(result.Images) == 0 {
		return nil, fmt.Errorf("image generation: %w", domain.ErrNoImages)
	}
	base := result.Images[0]

	creative := &domain.AdCreative{
		BaseImage: domain.CreativeImage{URL: base.URL, Width: base.Width, Height: base.Height},
		Seed:      result.Seed,
	}
	creative.Timing.Generation = generationElapsed

	if c.overlay != nil && c.overlay.Configured() {
		overlayStart := time.Now()
		composite, err := c.overlay.Apply(ctx, base.URL, input.Overlay)
		if err != nil {
			c.logger.Warn().Err(err).Str("base_image", base.URL).Msg("overlay failed, returning base image only")
		} else if composite.Status == domain.CompositeCompleted && composite.ImageURL != "" {
			creative.FinalImage = &domain.CompositeImage{URL: composite.ImageURL, UID: composite.UID}
			creative.HasOverlay = true
			creative.Timing.Overlay = time.Since(overlayStart)
		}
	}

	creative.Timing.Total = time.Since(start)
	return creative, nil
}

// VariantResults holds the generated image per creative variant prompt.
type VariantResults struct {
	VariantA   *domain.GenerationResult
	VariantB   *domain.GenerationResult
	StoryBrand *domain.GenerationResult
}

// GenerateAdVariants renders the three variant prompts of an ad copy record
// concurrently. Unlike batch runs, a single variant failure fails the whole
// call; the variants belong to one record and partial triples are useless.
func (c *Composer) GenerateAdVariants(ctx context.Context, prompts domain.AdPromptSet, width, height int) (*VariantResults, error) {
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 1024
	}

	var (
		wg      sync.WaitGroup
		results VariantResults
		errA    error
		errB    error
		errS    error
	)
	run := func(prompt string, dst **domain.GenerationResult, dstErr *error) {
		defer wg.Done()
		*dst, *dstErr = c.images.Generate(ctx, domain.GenerationRequest{
			Prompt:    prompt,
			Width:     width,
			Height:    height,
			NumImages: 1,
		}, nil)
	}

	wg.Add(3)
	go run(prompts.VariantA, &results.VariantA, &errA)
	go run(prompts.VariantB, &results.VariantB, &errB)
	go run(prompts.StoryBrand, &results.StoryBrand, &errS)
	wg.Wait()

	for _, err := range []error{errA, errB, errS} {
		if err != nil {
			return nil, err
		}
	}
	return &results, nil
}
