package creative

import "strings"

// adPromptModifiers steers models away from baking text into the image; the
// headline and CTA are composited afterwards, so any rendered text is noise.
const adPromptModifiers = ", clean composition, no text, no watermark, no logo, professional photography"

// baseNegativePrompt is the fixed exclusion list for ad creatives.
const baseNegativePrompt = "text, words, letters, watermark, logo, signature, writing, captions, subtitles, blurry, low quality"

// EnhancePromptForAds appends the ad-safety modifiers to a prompt unless it
// already carries a no-text directive. The check is a plain substring match:
// a prompt whose subject legitimately mentions "no text" skips the append.
func EnhancePromptForAds(prompt string) string {
	if strings.Contains(prompt, "--no text") || strings.Contains(prompt, "no text") {
		return prompt
	}
	return prompt + adPromptModifiers
}

// AdNegativePrompt unions a caller-supplied negative prompt with the baseline
// exclusions, caller's terms first.
func AdNegativePrompt(custom string) string {
	if custom == "" {
		return baseNegativePrompt
	}
	return custom + ", " + baseNegativePrompt
}
