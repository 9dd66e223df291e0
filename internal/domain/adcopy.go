package domain

// GenerateStatus tracks the automation workflow state of an ad copy record.
type GenerateStatus string

const (
	GenerateReady   GenerateStatus = "Ready"
	GenerateRunning GenerateStatus = "Running"
	GenerateDone    GenerateStatus = "Done"
	GenerateError   GenerateStatus = "Error"
)

// ImageAttachment is a rendered image attached to an ad copy record.
type ImageAttachment struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// PromptVariants holds the generated image prompts per creative variant.
type PromptVariants struct {
	VariantA   string `json:"variantA"`
	VariantB   string `json:"variantB"`
	StoryBrand string `json:"storyBrand"`
}

// AdCopyRecord is one ad concept row managed by the copy automation workflow.
type AdCopyRecord struct {
	ID             string            `json:"id"`
	FullConcept    string            `json:"fullConcept"`
	Headline       string            `json:"headline"`
	BodyCopy       string            `json:"bodyCopy"`
	Visual         string            `json:"visual"`
	Angle          string            `json:"angle"`
	AvatarTarget   string            `json:"avatarTarget"`
	AwarenessLevel string            `json:"awarenessLevel"`
	Format         string            `json:"format"`
	Tags           []string          `json:"tags"`
	CTA            string            `json:"cta"`
	PromptStatus   GenerateStatus    `json:"generateImagePrompts"`
	Prompts        PromptVariants    `json:"prompts"`
	Images         []ImageAttachment `json:"images"`
	CreatedAt      string            `json:"createdAt"`
}

// AdCopyBrief is the form payload that seeds a new copy generation run.
type AdCopyBrief struct {
	FullConcept    string `json:"fullConcept"`
	AvatarTarget   string `json:"avatarTarget"`
	Angle          string `json:"angle"`
	AwarenessLevel string `json:"awarenessLevel"`
	Format         string `json:"format"`
	CTA            string `json:"cta"`
}

// AdCopyRun acknowledges a triggered copy generation.
type AdCopyRun struct {
	RecordID string         `json:"recordId"`
	Status   GenerateStatus `json:"status"`
}
