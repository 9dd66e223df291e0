package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"scaler/internal/domain"
)

const providerName = "fal"

// Options configures a Client. Credentials are injected explicitly so tests
// and callers never depend on process-wide state.
type Options struct {
	APIKey     string
	BaseURL    string
	QueueURL   string
	Model      string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

// Client talks to the fal.ai image generation API. It issues exactly one HTTP
// call per method and never retries; retry and polling policy live in the
// orchestrators above it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	queueURL   string
	model      string
	apiKey     string
	limiter    *rate.Limiter
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://fal.run"
	}
	queue := strings.TrimRight(opts.QueueURL, "/")
	if queue == "" {
		queue = "https://queue.fal.run"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "fal-ai/flux/schnell"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(2), 4)
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		queueURL:   queue,
		model:      model,
		apiKey:     strings.TrimSpace(opts.APIKey),
		limiter:    limiter,
	}
}

// Configured reports whether an API key is present. Calls fail fast before
// any network round-trip when it is not.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Model returns the model slug this client submits to.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

type imageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type generatePayload struct {
	Prompt            string    `json:"prompt"`
	NegativePrompt    string    `json:"negative_prompt,omitempty"`
	ImageSize         imageSize `json:"image_size"`
	NumImages         int       `json:"num_images"`
	Seed              *int      `json:"seed,omitempty"`
	GuidanceScale     float64   `json:"guidance_scale"`
	NumInferenceSteps int       `json:"num_inference_steps"`
}

type falImage struct {
	URL         string `json:"url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"content_type"`
}

type generateResponse struct {
	Images  []falImage `json:"images"`
	Seed    int        `json:"seed"`
	Prompt  string     `json:"prompt"`
	Timings struct {
		Inference float64 `json:"inference"`
	} `json:"timings"`
	HasNSFWConcepts []bool `json:"has_nsfw_concepts"`
}

type submitResponse struct {
	RequestID string `json:"request_id"`
}

type statusResponse struct {
	Status        string `json:"status"`
	QueuePosition int    `json:"queue_position"`
	Logs          []struct {
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	} `json:"logs"`
	Error string `json:"error"`
}

type errorResponse struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

func buildPayload(req domain.GenerationRequest) generatePayload {
	payload := generatePayload{
		Prompt:            req.Prompt,
		NegativePrompt:    req.NegativePrompt,
		ImageSize:         imageSize{Width: req.Width, Height: req.Height},
		NumImages:         req.NumImages,
		Seed:              req.Seed,
		GuidanceScale:     req.GuidanceScale,
		NumInferenceSteps: req.InferenceSteps,
	}
	if payload.ImageSize.Width <= 0 {
		payload.ImageSize.Width = 1024
	}
	if payload.ImageSize.Height <= 0 {
		payload.ImageSize.Height = 1024
	}
	if payload.NumImages <= 0 {
		payload.NumImages = 1
	}
	if payload.GuidanceScale <= 0 {
		payload.GuidanceScale = 7.5
	}
	if payload.NumInferenceSteps <= 0 {
		payload.NumInferenceSteps = 28
	}
	return payload
}

// Run performs a synchronous generation call. Suitable for fast models where
// the provider responds within one request.
func (c *Client) Run(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	var out generateResponse
	endpoint := c.baseURL + "/" + c.model
	if err := c.post(ctx, endpoint, buildPayload(req), &out); err != nil {
		return nil, err
	}
	return resultFromResponse(out), nil
}

// SubmitJob enqueues an asynchronous generation job and returns its request id.
func (c *Client) SubmitJob(ctx context.Context, req domain.GenerationRequest) (string, error) {
	var out submitResponse
	endpoint := c.queueURL + "/" + c.model
	if err := c.post(ctx, endpoint, buildPayload(req), &out); err != nil {
		return "", err
	}
	if out.RequestID == "" {
		return "", fmt.Errorf("fal: submit returned no request id")
	}
	return out.RequestID, nil
}

// JobStatus fetches one status snapshot for a queued job.
func (c *Client) JobStatus(ctx context.Context, requestID string) (*domain.QueueStatus, error) {
	var out statusResponse
	endpoint := fmt.Sprintf("%s/%s/requests/%s/status?logs=1", c.queueURL, c.model, requestID)
	if err := c.get(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	status := &domain.QueueStatus{
		Phase:         domain.QueuePhase(out.Status),
		QueuePosition: out.QueuePosition,
	}
	for _, line := range out.Logs {
		status.Logs = append(status.Logs, line.Message)
	}
	if status.Phase == domain.PhaseFailed {
		return status, &domain.GenerationError{Provider: providerName, Detail: out.Error}
	}
	return status, nil
}

// JobResult fetches the full payload of a completed job. The status endpoint
// does not carry the result, so this is always a separate call.
func (c *Client) JobResult(ctx context.Context, requestID string) (*domain.GenerationResult, error) {
	var out generateResponse
	endpoint := fmt.Sprintf("%s/%s/requests/%s", c.queueURL, c.model, requestID)
	if err := c.get(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	return resultFromResponse(out), nil
}

func resultFromResponse(out generateResponse) *domain.GenerationResult {
	result := &domain.GenerationResult{
		Seed:      out.Seed,
		Prompt:    out.Prompt,
		Inference: time.Duration(out.Timings.Inference * float64(time.Second)),
		HasNSFW:   out.HasNSFWConcepts,
	}
	for _, img := range out.Images {
		result.Images = append(result.Images, domain.Image{
			URL:         img.URL,
			Width:       img.Width,
			Height:      img.Height,
			ContentType: img.ContentType,
		})
	}
	return result
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	if !c.Configured() {
		return fmt.Errorf("fal: %w", domain.ErrNotConfigured)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	if !c.Configured() {
		return fmt.Errorf("fal: %w", domain.ErrNotConfigured)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Key "+c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fal: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&detail)
		message := detail.Detail
		if message == "" {
			message = detail.Message
		}
		return &domain.ProviderError{Provider: providerName, Status: resp.StatusCode, Message: message}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("fal: decode response: %w", err)
	}
	return nil
}
