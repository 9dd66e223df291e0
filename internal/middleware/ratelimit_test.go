package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	handler := RateLimit(4, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var blocked int
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest("GET", "/api/products", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code == http.StatusTooManyRequests {
			blocked++
		}
	}
	if blocked == 0 {
		t.Fatal("expected some requests to be rate limited")
	}
}

func TestRateLimitSeparatesClients(t *testing.T) {
	handler := RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, addr := range []string{"203.0.113.1:1", "203.0.113.2:1", "203.0.113.3:1"} {
		req := httptest.NewRequest("GET", "/api/products", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("client %d blocked on first request: %d", i, rr.Code)
		}
	}
}

func TestRateLimitUsesForwardedFor(t *testing.T) {
	handler := RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest("GET", "/", nil)
	first.RemoteAddr = "10.0.0.1:1"
	first.Header.Set("X-Forwarded-For", "198.51.100.7")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, first)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request blocked: %d", rr.Code)
	}

	second := httptest.NewRequest("GET", "/", nil)
	second.RemoteAddr = "10.0.0.2:1"
	second.Header.Set("X-Forwarded-For", "198.51.100.7")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, second)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("same forwarded client not limited: %d", rr.Code)
	}
}
