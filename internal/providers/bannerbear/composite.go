package bannerbear

import (
	"context"
	"fmt"
	"time"

	"scaler/internal/domain"
)

// PollOptions tunes the status polling loop for compositing jobs.
type PollOptions struct {
	Interval    time.Duration
	MaxAttempts int
}

func (o PollOptions) withDefaults() PollOptions {
	if o.Interval <= 0 {
		o.Interval = 2 * time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 30
	}
	return o
}

// GenerateComposite starts one overlay job for a base image. The returned
// result is usually still pending; callers poll it to completion.
func (c *Client) GenerateComposite(ctx context.Context, baseImageURL string, overlay domain.OverlayConfig) (*domain.CompositeResult, error) {
	template, err := c.templates.ForFormat(overlay.Format)
	if err != nil {
		return nil, err
	}

	modifications := []Modification{
		{Name: template.Layers.Background, ImageURL: baseImageURL},
		{Name: template.Layers.Headline, Text: overlay.Headline, Color: overlay.Colors.Headline},
		{Name: template.Layers.CTA, Text: overlay.CTA, Color: overlay.Colors.CTA, Background: overlay.Colors.CTABackground},
	}
	if overlay.Subtext != "" && template.Layers.Subtext != "" {
		modifications = append(modifications, Modification{Name: template.Layers.Subtext, Text: overlay.Subtext})
	}

	image, err := c.CreateImage(ctx, ImageRequest{
		Template:      template.TemplateID,
		Modifications: modifications,
		Metadata: map[string]string{
			"base_image_url": baseImageURL,
			"format":         string(overlay.Format),
		},
	})
	if err != nil {
		return nil, err
	}

	return compositeFromImage(image, baseImageURL, template.TemplateID, overlay), nil
}

// PollCompletion queries a compositing job on a fixed interval until it
// reaches a terminal status, or fails with ErrPollTimeout once the attempt
// budget is spent.
func (c *Client) PollCompletion(ctx context.Context, uid string, opts PollOptions) (*Image, error) {
	opts = opts.withDefaults()

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		image, err := c.GetImage(ctx, uid)
		if err != nil {
			return nil, err
		}
		switch domain.CompositeStatus(image.Status) {
		case domain.CompositeCompleted:
			return image, nil
		case domain.CompositeFailed:
			return nil, &domain.GenerationError{Provider: providerName, Detail: image.ErrorMessage}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.Interval):
		}
	}

	return nil, fmt.Errorf("bannerbear: %w after %d attempts", domain.ErrPollTimeout, opts.MaxAttempts)
}

// GenerateAndWait combines GenerateComposite with completion polling.
func (c *Client) GenerateAndWait(ctx context.Context, baseImageURL string, overlay domain.OverlayConfig, opts PollOptions) (*domain.CompositeResult, error) {
	initial, err := c.GenerateComposite(ctx, baseImageURL, overlay)
	if err != nil {
		return nil, err
	}
	if initial.Status == domain.CompositeCompleted && initial.ImageURL != "" {
		return initial, nil
	}

	completed, err := c.PollCompletion(ctx, initial.UID, opts)
	if err != nil {
		return nil, err
	}

	final := *initial
	final.Status = domain.CompositeStatus(completed.Status)
	final.ImageURL = completed.ImageURL
	final.Error = completed.ErrorMessage
	return &final, nil
}

func compositeFromImage(image *Image, baseImageURL, templateID string, overlay domain.OverlayConfig) *domain.CompositeResult {
	return &domain.CompositeResult{
		UID:          image.UID,
		Status:       domain.CompositeStatus(image.Status),
		ImageURL:     image.ImageURL,
		BaseImageURL: baseImageURL,
		TemplateID:   templateID,
		Overlay:      overlay,
		Error:        image.ErrorMessage,
	}
}
