package domain

import (
	"strings"
	"time"
)

// QueuePhase mirrors the status enum reported by the image generation queue.
type QueuePhase string

const (
	PhaseQueued     QueuePhase = "IN_QUEUE"
	PhaseInProgress QueuePhase = "IN_PROGRESS"
	PhaseCompleted  QueuePhase = "COMPLETED"
	PhaseFailed     QueuePhase = "FAILED"
)

// Terminal reports whether no further transitions can occur for a job in this phase.
func (p QueuePhase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// QueueStatus is one snapshot of an asynchronous generation job. Each poll
// produces a fresh value; snapshots are never merged.
type QueueStatus struct {
	Phase         QueuePhase
	QueuePosition int
	Logs          []string
}

// GenerationRequest describes one text-to-image request. It is immutable once
// submitted; retries construct a fresh value with the same fields.
type GenerationRequest struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	NumImages      int
	Seed           *int
	GuidanceScale  float64
	InferenceSteps int
}

// Image is one produced asset within a generation result.
type Image struct {
	URL         string
	Width       int
	Height      int
	ContentType string
}

// GenerationResult is the terminal value of an image generation job.
type GenerationResult struct {
	Images    []Image
	Seed      int
	Prompt    string
	Inference time.Duration
	HasNSFW   []bool
}

// AdFormat selects one of the supported creative aspect-ratio presets.
type AdFormat string

const (
	FormatSquare    AdFormat = "square"
	FormatStory     AdFormat = "story"
	FormatLandscape AdFormat = "landscape"
)

// ParseAdFormat sanitizes free-form input into a supported format, defaulting
// to square.
func ParseAdFormat(s string) AdFormat {
	switch AdFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatStory:
		return FormatStory
	case FormatLandscape:
		return FormatLandscape
	default:
		return FormatSquare
	}
}

// FormatSize resolves the pixel dimensions of a format preset. Pure function
// of the format; unknown formats resolve as square.
func FormatSize(format AdFormat) (width, height int) {
	switch format {
	case FormatStory:
		return 1080, 1920
	case FormatLandscape:
		return 1200, 628
	default:
		return 1080, 1080
	}
}

// OverlayColors carries optional per-field color overrides (hex strings).
type OverlayColors struct {
	Headline      string
	CTA           string
	CTABackground string
}

// OverlayConfig describes the text layers composited onto a base image.
type OverlayConfig struct {
	Headline string
	CTA      string
	Subtext  string
	Format   AdFormat
	Colors   OverlayColors
}

// Valid reports whether the overlay has the required fields.
func (o OverlayConfig) Valid() bool {
	return strings.TrimSpace(o.Headline) != "" && strings.TrimSpace(o.CTA) != "" && o.Format != ""
}

// CompositeStatus is the overlay provider's job status enum.
type CompositeStatus string

const (
	CompositePending   CompositeStatus = "pending"
	CompositeCompleted CompositeStatus = "completed"
	CompositeFailed    CompositeStatus = "failed"
)

// CompositeResult is the outcome of one overlay compositing job. A new value
// is produced per request; terminal results are never mutated.
type CompositeResult struct {
	UID          string
	Status       CompositeStatus
	ImageURL     string
	BaseImageURL string
	TemplateID   string
	Overlay      OverlayConfig
	Error        string
}

// CreativeTiming breaks down where an ad creative pipeline spent its time.
type CreativeTiming struct {
	Generation time.Duration
	Overlay    time.Duration
	Total      time.Duration
}

// CreativeImage is a rendered asset referenced by URL.
type CreativeImage struct {
	URL    string
	Width  int
	Height int
}

// AdCreative is the terminal value of the full generate-then-overlay pipeline.
// FinalImage is nil when the overlay step was skipped or failed; the base
// image is always populated.
type AdCreative struct {
	BaseImage  CreativeImage
	FinalImage *CompositeImage
	Seed       int
	HasOverlay bool
	Timing     CreativeTiming
}

// CompositeImage references the overlaid creative and its provider job.
type CompositeImage struct {
	URL string
	UID string
}

// AdPromptSet is the prompt triple produced per ad copy record.
type AdPromptSet struct {
	VariantA   string
	VariantB   string
	StoryBrand string
}
