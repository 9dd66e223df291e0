package bannerbear

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"scaler/internal/domain"
)

const providerName = "bannerbear"

// Options configures a Client.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Templates  Templates
}

// Client talks to the Bannerbear compositing API. One HTTP call per method,
// no retries; polling lives in the orchestration layer above.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	templates  Templates
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.bannerbear.com/v2"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		apiKey:     strings.TrimSpace(opts.APIKey),
		templates:  opts.Templates,
	}
}

// Configured reports whether overlay compositing is available. The pipeline
// composer skips the overlay step entirely when it is not.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Modification targets one named layer in a template.
type Modification struct {
	Name       string `json:"name"`
	Text       string `json:"text,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	Color      string `json:"color,omitempty"`
	Background string `json:"background,omitempty"`
}

// ImageRequest is the POST /images payload.
type ImageRequest struct {
	Template      string            `json:"template"`
	Modifications []Modification    `json:"modifications"`
	WebhookURL    string            `json:"webhook_url,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Synchronous   bool              `json:"synchronous,omitempty"`
}

// Image is the provider's image job record.
type Image struct {
	UID          string            `json:"uid"`
	Status       string            `json:"status"`
	ImageURL     string            `json:"image_url"`
	Template     string            `json:"template"`
	Metadata     map[string]string `json:"metadata"`
	CreatedAt    string            `json:"created_at"`
	CompletedAt  string            `json:"completed_at"`
	ErrorMessage string            `json:"error_message"`
}

// Template is the provider's template record.
type Template struct {
	UID                    string   `json:"uid"`
	Name                   string   `json:"name"`
	Width                  int      `json:"width"`
	Height                 int      `json:"height"`
	AvailableModifications []string `json:"available_modifications"`
	Status                 string   `json:"status"`
}

// CreateImage starts one compositing job.
func (c *Client) CreateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	var out Image
	if err := c.call(ctx, http.MethodPost, "/images", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetImage fetches the current state of a compositing job.
func (c *Client) GetImage(ctx context.Context, uid string) (*Image, error) {
	var out Image
	if err := c.call(ctx, http.MethodGet, "/images/"+uid, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTemplates lists all templates on the account.
func (c *Client) ListTemplates(ctx context.Context) ([]Template, error) {
	var out []Template
	if err := c.call(ctx, http.MethodGet, "/templates", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTemplate fetches one template by uid.
func (c *Client) GetTemplate(ctx context.Context, uid string) (*Template, error) {
	var out Template
	if err := c.call(ctx, http.MethodGet, "/templates/"+uid, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, method, path string, payload any, out any) error {
	if !c.Configured() {
		return fmt.Errorf("bannerbear: %w", domain.ErrNotConfigured)
	}
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bannerbear: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&detail)
		return &domain.ProviderError{Provider: providerName, Status: resp.StatusCode, Message: detail.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("bannerbear: decode response: %w", err)
	}
	return nil
}
