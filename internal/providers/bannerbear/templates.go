package bannerbear

import (
	"fmt"

	"scaler/internal/domain"
)

// Layers names the template layers an overlay writes into. Subtext is
// optional; landscape templates omit it for lack of space.
type Layers struct {
	Background string
	Headline   string
	CTA        string
	Subtext    string
}

// TemplateConfig binds one ad format to a Bannerbear template and its layer
// naming convention.
type TemplateConfig struct {
	TemplateID string
	Name       string
	Format     domain.AdFormat
	Width      int
	Height     int
	Layers     Layers
}

// Templates maps each supported format to its template configuration.
type Templates struct {
	Square    TemplateConfig
	Story     TemplateConfig
	Landscape TemplateConfig
}

// NewTemplates builds the per-format template set from configured template
// ids. Layer names follow the account-wide convention: background image layer
// "background", headline "headline_text", CTA "cta_button", optional subtext
// "body_text".
func NewTemplates(squareID, storyID, landscapeID string) Templates {
	return Templates{
		Square: TemplateConfig{
			TemplateID: squareID,
			Name:       "Ad Creative - Square",
			Format:     domain.FormatSquare,
			Width:      1080,
			Height:     1080,
			Layers:     Layers{Background: "background", Headline: "headline_text", CTA: "cta_button", Subtext: "body_text"},
		},
		Story: TemplateConfig{
			TemplateID: storyID,
			Name:       "Ad Creative - Story",
			Format:     domain.FormatStory,
			Width:      1080,
			Height:     1920,
			Layers:     Layers{Background: "background", Headline: "headline_text", CTA: "cta_button", Subtext: "body_text"},
		},
		Landscape: TemplateConfig{
			TemplateID: landscapeID,
			Name:       "Ad Creative - Landscape",
			Format:     domain.FormatLandscape,
			Width:      1200,
			Height:     628,
			Layers:     Layers{Background: "background", Headline: "headline_text", CTA: "cta_button"},
		},
	}
}

// ForFormat resolves the template configured for a format.
func (t Templates) ForFormat(format domain.AdFormat) (TemplateConfig, error) {
	var cfg TemplateConfig
	switch format {
	case domain.FormatSquare:
		cfg = t.Square
	case domain.FormatStory:
		cfg = t.Story
	case domain.FormatLandscape:
		cfg = t.Landscape
	default:
		return TemplateConfig{}, fmt.Errorf("bannerbear: no template for format %q", format)
	}
	if cfg.TemplateID == "" {
		return TemplateConfig{}, fmt.Errorf("bannerbear: template id for format %q not configured", format)
	}
	return cfg, nil
}

// Configured reports whether every format has a template id assigned.
func (t Templates) Configured() bool {
	return t.Square.TemplateID != "" && t.Story.TemplateID != "" && t.Landscape.TemplateID != ""
}
