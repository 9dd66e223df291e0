package creative

import (
	"context"
	"time"

	"scaler/internal/domain"
	"scaler/internal/providers/bannerbear"
	"scaler/internal/providers/fal"
)

// falImageService adapts a fal client plus its polling policy to the
// composer's ImageService contract.
type falImageService struct {
	client      *fal.Client
	interval    time.Duration
	maxAttempts int
}

// NewFalImageService binds a fal client and polling policy into an ImageService.
func NewFalImageService(client *fal.Client, interval time.Duration, maxAttempts int) ImageService {
	return &falImageService{client: client, interval: interval, maxAttempts: maxAttempts}
}

func (s *falImageService) Configured() bool {
	return s.client.Configured()
}

func (s *falImageService) Generate(ctx context.Context, req domain.GenerationRequest, onStatus func(domain.QueueStatus)) (*domain.GenerationResult, error) {
	return s.client.GenerateAndPoll(ctx, req, fal.PollOptions{
		Interval:    s.interval,
		MaxAttempts: s.maxAttempts,
		OnStatus:    onStatus,
	})
}

// bannerbearOverlayService adapts a bannerbear client plus its polling policy
// to the composer's OverlayService contract.
type bannerbearOverlayService struct {
	client      *bannerbear.Client
	interval    time.Duration
	maxAttempts int
}

// NewBannerbearOverlayService binds a bannerbear client and polling policy
// into an OverlayService.
func NewBannerbearOverlayService(client *bannerbear.Client, interval time.Duration, maxAttempts int) OverlayService {
	return &bannerbearOverlayService{client: client, interval: interval, maxAttempts: maxAttempts}
}

func (s *bannerbearOverlayService) Configured() bool {
	return s.client.Configured()
}

func (s *bannerbearOverlayService) Apply(ctx context.Context, baseImageURL string, overlay domain.OverlayConfig) (*domain.CompositeResult, error) {
	return s.client.GenerateAndWait(ctx, baseImageURL, overlay, bannerbear.PollOptions{
		Interval:    s.interval,
		MaxAttempts: s.maxAttempts,
	})
}
