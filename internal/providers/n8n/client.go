package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scaler/internal/domain"
)

const providerName = "n8n"

// Options configures a Client. Each webhook id is the path segment of one
// workflow's production webhook.
type Options struct {
	BaseURL     string
	AdCopyHook  string
	ImagesHook  string
	PromptsHook string
	HTTPClient  *http.Client
}

// Client talks to the copy-automation webhooks. The workflows own the
// Airtable records; this client only triggers runs and reads results.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	adCopyHook  string
	imagesHook  string
	promptsHook string
}

func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient:  client,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		adCopyHook:  strings.TrimSpace(opts.AdCopyHook),
		imagesHook:  strings.TrimSpace(opts.ImagesHook),
		promptsHook: strings.TrimSpace(opts.PromptsHook),
	}
}

// Configured reports whether the webhook base URL is present.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.adCopyHook != ""
}

// ListAdCopy fetches all ad copy records.
func (c *Client) ListAdCopy(ctx context.Context) ([]domain.AdCopyRecord, error) {
	body, err := c.request(ctx, http.MethodGet, c.adCopyHook, nil, nil)
	if err != nil {
		return nil, err
	}

	// The webhook answers with either a bare array or a single record
	// depending on workflow configuration; normalize to a slice.
	var records []domain.AdCopyRecord
	if err := json.Unmarshal(body, &records); err == nil {
		return records, nil
	}
	var one domain.AdCopyRecord
	if err := json.Unmarshal(body, &one); err == nil && one.ID != "" {
		return []domain.AdCopyRecord{one}, nil
	}
	return []domain.AdCopyRecord{}, nil
}

// GetAdCopy fetches one record by id.
func (c *Client) GetAdCopy(ctx context.Context, recordID string) (*domain.AdCopyRecord, error) {
	query := url.Values{"recordId": {recordID}}
	body, err := c.request(ctx, http.MethodGet, c.adCopyHook, query, nil)
	if err != nil {
		return nil, err
	}
	var record domain.AdCopyRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("n8n: decode record: %w", err)
	}
	if record.ID == "" {
		return nil, fmt.Errorf("n8n: record %s: %w", recordID, domain.ErrNotFound)
	}
	return &record, nil
}

type triggerPayload struct {
	FullConcept    string  `json:"fullConcept"`
	AvatarTarget   *string `json:"avatarTarget"`
	Angle          *string `json:"angle"`
	AwarenessLevel *string `json:"awarenessLevel"`
	Format         *string `json:"format"`
	CTA            *string `json:"cta"`
}

// TriggerAdCopy starts a copy generation run for the given brief. Optional
// brief fields are sent as explicit nulls, which the workflow expects.
func (c *Client) TriggerAdCopy(ctx context.Context, brief domain.AdCopyBrief) (*domain.AdCopyRun, error) {
	payload := triggerPayload{
		FullConcept:    brief.FullConcept,
		AvatarTarget:   nullable(brief.AvatarTarget),
		Angle:          nullable(brief.Angle),
		AwarenessLevel: nullable(brief.AwarenessLevel),
		Format:         nullable(brief.Format),
		CTA:            nullable(brief.CTA),
	}
	body, err := c.request(ctx, http.MethodPost, c.adCopyHook, nil, payload)
	if err != nil {
		return nil, err
	}
	var run domain.AdCopyRun
	if err := json.Unmarshal(body, &run); err != nil {
		return nil, fmt.Errorf("n8n: decode trigger response: %w", err)
	}
	return &run, nil
}

// TriggerImages starts image generation for a record.
func (c *Client) TriggerImages(ctx context.Context, recordID string) error {
	if c.imagesHook == "" {
		return fmt.Errorf("n8n images webhook: %w", domain.ErrNotConfigured)
	}
	query := url.Values{"recordId": {recordID}}
	_, err := c.request(ctx, http.MethodGet, c.imagesHook, query, nil)
	return err
}

// TriggerPrompts starts prompt generation for a record.
func (c *Client) TriggerPrompts(ctx context.Context, recordID string) error {
	if c.promptsHook == "" {
		return fmt.Errorf("n8n prompts webhook: %w", domain.ErrNotConfigured)
	}
	query := url.Values{"recordId": {recordID}}
	_, err := c.request(ctx, http.MethodGet, c.promptsHook, query, nil)
	return err
}

func (c *Client) request(ctx context.Context, method, hook string, query url.Values, payload any) ([]byte, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("n8n: %w", domain.ErrNotConfigured)
	}
	endpoint := c.baseURL + "/" + hook
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("n8n: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("n8n: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.ProviderError{Provider: providerName, Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return body, nil
}

func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
