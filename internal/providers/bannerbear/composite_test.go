package bannerbear

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"scaler/internal/domain"
)

// imageStub scripts the GET /images/{uid} status sequence.
type imageStub struct {
	mu       sync.Mutex
	statuses []Image
	gets     int
}

func (s *imageStub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = json.NewEncoder(w).Encode(Image{UID: "job-1", Status: "pending"})
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/images/") {
			http.NotFound(w, r)
			return
		}
		s.mu.Lock()
		idx := s.gets
		if idx >= len(s.statuses) {
			idx = len(s.statuses) - 1
		}
		s.gets++
		img := s.statuses[idx]
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(img)
	})
}

func (s *imageStub) getCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

func stubClient(t *testing.T, stub *imageStub) *Client {
	t.Helper()
	ts := httptest.NewServer(stub.handler())
	t.Cleanup(ts.Close)
	return NewClient(Options{APIKey: "bb-key", BaseURL: ts.URL, Templates: testTemplates()})
}

func TestPollCompletionResolvesAfterExactQueries(t *testing.T) {
	stub := &imageStub{statuses: []Image{
		{UID: "job-1", Status: "pending"},
		{UID: "job-1", Status: "pending"},
		{UID: "job-1", Status: "completed", ImageURL: "https://cdn.bannerbear.com/final.png"},
	}}
	client := stubClient(t, stub)

	image, err := client.PollCompletion(context.Background(), "job-1", PollOptions{Interval: time.Millisecond, MaxAttempts: 30})
	if err != nil {
		t.Fatalf("PollCompletion error: %v", err)
	}
	if image.ImageURL != "https://cdn.bannerbear.com/final.png" {
		t.Fatalf("unexpected image url: %s", image.ImageURL)
	}
	if stub.getCalls() != 3 {
		t.Fatalf("expected exactly 3 status queries, got %d", stub.getCalls())
	}
}

func TestPollCompletionTimesOutAfterMaxAttempts(t *testing.T) {
	stub := &imageStub{statuses: []Image{{UID: "job-1", Status: "pending"}}}
	client := stubClient(t, stub)

	_, err := client.PollCompletion(context.Background(), "job-1", PollOptions{Interval: time.Millisecond, MaxAttempts: 4})
	if !errors.Is(err, domain.ErrPollTimeout) {
		t.Fatalf("expected ErrPollTimeout, got %v", err)
	}
	if stub.getCalls() != 4 {
		t.Fatalf("expected exactly 4 status queries, got %d", stub.getCalls())
	}
}

func TestPollCompletionSurfacesFailureDetail(t *testing.T) {
	stub := &imageStub{statuses: []Image{
		{UID: "job-1", Status: "pending"},
		{UID: "job-1", Status: "failed", ErrorMessage: "invalid layer"},
	}}
	client := stubClient(t, stub)

	_, err := client.PollCompletion(context.Background(), "job-1", PollOptions{Interval: time.Millisecond, MaxAttempts: 10})
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Detail != "invalid layer" {
		t.Fatalf("unexpected detail: %s", genErr.Detail)
	}
}

func TestGenerateAndWaitCombinesCreateAndPoll(t *testing.T) {
	stub := &imageStub{statuses: []Image{
		{UID: "job-1", Status: "pending"},
		{UID: "job-1", Status: "completed", ImageURL: "https://cdn.bannerbear.com/final.png"},
	}}
	client := stubClient(t, stub)

	overlay := domain.OverlayConfig{Headline: "H", CTA: "C", Format: domain.FormatSquare}
	result, err := client.GenerateAndWait(context.Background(), "https://fal.media/base.png", overlay, PollOptions{Interval: time.Millisecond, MaxAttempts: 10})
	if err != nil {
		t.Fatalf("GenerateAndWait error: %v", err)
	}
	if result.Status != domain.CompositeCompleted {
		t.Fatalf("unexpected status: %s", result.Status)
	}
	if result.ImageURL != "https://cdn.bannerbear.com/final.png" {
		t.Fatalf("unexpected image url: %s", result.ImageURL)
	}
	if result.BaseImageURL != "https://fal.media/base.png" {
		t.Fatalf("base image url lost: %s", result.BaseImageURL)
	}
	if result.Error != "" {
		t.Fatalf("error must be empty for completed result, got %q", result.Error)
	}
}
