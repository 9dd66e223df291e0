package fal

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

	"golang.org/x/time/rate"

	"scaler/internal/domain"
)

// queueStub simulates the fal queue API: a submit endpoint plus status and
// result endpoints whose responses are scripted per poll.
type queueStub struct {
	mu       sync.Mutex
	statuses []string
	calls    int
}

func (s *queueStub) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			_ = json.NewEncoder(w).Encode(map[string]string{"request_id": "req-7"})
		case strings.HasSuffix(r.URL.Path, "/status"):
			s.mu.Lock()
			idx := s.calls
			if idx >= len(s.statuses) {
				idx = len(s.statuses) - 1
			}
			s.calls++
			status := s.statuses[idx]
			s.mu.Unlock()
			_ = json.NewEncoder(w).Encode(map[string]any{"status": status, "queue_position": 0})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"images": []map[string]any{{"url": "https://fal.media/done.png", "width": 512, "height": 512, "content_type": "image/png"}},
				"seed":   7,
			})
		}
	})
}

func (s *queueStub) statusCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func pollTestClient(t *testing.T, stub *queueStub) *Client {
	t.Helper()
	ts := httptest.NewServer(stub.handler(t))
	t.Cleanup(ts.Close)
	return NewClient(Options{
		APIKey:   "test-key",
		BaseURL:  ts.URL,
		QueueURL: ts.URL,
		Limiter:  rate.NewLimiter(rate.Inf, 1),
	})
}

func TestGenerateAndPollReachesCompletion(t *testing.T) {
	stub := &queueStub{statuses: []string{"IN_QUEUE", "IN_PROGRESS", "COMPLETED"}}
	client := pollTestClient(t, stub)

	var transitions []domain.QueuePhase
	result, err := client.GenerateAndPoll(context.Background(), domain.GenerationRequest{Prompt: "x"}, PollOptions{
		Interval:    time.Millisecond,
		MaxAttempts: 10,
		OnStatus:    func(st domain.QueueStatus) { transitions = append(transitions, st.Phase) },
	})
	if err != nil {
		t.Fatalf("GenerateAndPoll error: %v", err)
	}
	if len(result.Images) != 1 || result.Images[0].URL != "https://fal.media/done.png" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if stub.statusCalls() != 3 {
		t.Fatalf("expected 3 status queries, got %d", stub.statusCalls())
	}
	want := []domain.QueuePhase{domain.PhaseQueued, domain.PhaseInProgress, domain.PhaseCompleted}
	if len(transitions) != len(want) {
		t.Fatalf("expected one callback per transition, got %v", transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transition %d: got %s want %s", i, transitions[i], want[i])
		}
	}
}

func TestGenerateAndPollDedupesRepeatedStatuses(t *testing.T) {
	stub := &queueStub{statuses: []string{"IN_PROGRESS", "IN_PROGRESS", "IN_PROGRESS", "COMPLETED"}}
	client := pollTestClient(t, stub)

	var callbacks int
	_, err := client.GenerateAndPoll(context.Background(), domain.GenerationRequest{Prompt: "x"}, PollOptions{
		Interval:    time.Millisecond,
		MaxAttempts: 10,
		OnStatus:    func(domain.QueueStatus) { callbacks++ },
	})
	if err != nil {
		t.Fatalf("GenerateAndPoll error: %v", err)
	}
	if callbacks != 2 {
		t.Fatalf("expected 2 transition callbacks, got %d", callbacks)
	}
}

func TestGenerateAndPollTimesOutAfterMaxAttempts(t *testing.T) {
	stub := &queueStub{statuses: []string{"IN_PROGRESS"}}
	client := pollTestClient(t, stub)

	_, err := client.GenerateAndPoll(context.Background(), domain.GenerationRequest{Prompt: "x"}, PollOptions{
		Interval:    time.Millisecond,
		MaxAttempts: 5,
	})
	if !errors.Is(err, domain.ErrPollTimeout) {
		t.Fatalf("expected ErrPollTimeout, got %v", err)
	}
	if stub.statusCalls() != 5 {
		t.Fatalf("expected exactly 5 status queries, got %d", stub.statusCalls())
	}
}

func TestGenerateAndPollFailureCarriesDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = json.NewEncoder(w).Encode(map[string]string{"request_id": "req-9"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "FAILED", "error": "model crashed"})
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "k", BaseURL: ts.URL, QueueURL: ts.URL, Limiter: rate.NewLimiter(rate.Inf, 1)})
	_, err := client.GenerateAndPoll(context.Background(), domain.GenerationRequest{Prompt: "x"}, PollOptions{
		Interval:    time.Millisecond,
		MaxAttempts: 3,
	})
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Detail != "model crashed" {
		t.Fatalf("unexpected detail: %s", genErr.Detail)
	}
}

func TestGenerateAndPollHonorsCancellation(t *testing.T) {
	stub := &queueStub{statuses: []string{"IN_PROGRESS"}}
	client := pollTestClient(t, stub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.GenerateAndPoll(ctx, domain.GenerationRequest{Prompt: "x"}, PollOptions{
		Interval:    time.Hour,
		MaxAttempts: 3,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
