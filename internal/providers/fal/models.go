package fal

// ModelInfo describes one selectable generation model for the dashboard's
// model picker.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Speed       string `json:"speed"`
	Quality     string `json:"quality"`
	Description string `json:"description"`
}

// AvailableModels lists the supported models and their characteristics.
func AvailableModels() []ModelInfo {
	return []ModelInfo{
		{
			ID:          "fal-ai/flux/schnell",
			Name:        "FLUX Schnell",
			Speed:       "fast",
			Quality:     "high",
			Description: "Fastest FLUX model, great quality (~2-4s)",
		},
		{
			ID:          "fal-ai/fast-sdxl",
			Name:        "Fast SDXL",
			Speed:       "fast",
			Quality:     "standard",
			Description: "Quick SDXL generation (~2-5s)",
		},
		{
			ID:          "fal-ai/flux/dev",
			Name:        "FLUX Dev",
			Speed:       "medium",
			Quality:     "highest",
			Description: "Highest quality FLUX model (~10-20s)",
		},
		{
			ID:          "fal-ai/flux-lora",
			Name:        "FLUX LoRA",
			Speed:       "medium",
			Quality:     "high",
			Description: "FLUX with custom LoRA models",
		},
		{
			ID:          "fal-ai/stable-diffusion-v3-medium",
			Name:        "SD3 Medium",
			Speed:       "medium",
			Quality:     "high",
			Description: "Stable Diffusion 3 medium model",
		},
	}
}
