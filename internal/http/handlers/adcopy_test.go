package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"scaler/internal/providers/n8n"
)

func adCopyApp(t *testing.T, handler http.Handler) *App {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := n8n.NewClient(n8n.Options{
		BaseURL:     server.URL,
		AdCopyHook:  "adcopy-hook",
		ImagesHook:  "images-hook",
		PromptsHook: "prompts-hook",
	})
	return NewApp(App{AdCopy: client, Logger: zerolog.Nop()})
}

func TestAdCopyListProxiesRecords(t *testing.T) {
	app := adCopyApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "adcopy-hook") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"rec1","headline":"Buy Now","generateImagePrompts":"Done"}]`))
	}))

	rr := httptest.NewRecorder()
	app.AdCopyList(rr, httptest.NewRequest("GET", "/api/adcopy", nil))
	if rr.Code != 200 {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var payload struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0]["id"] != "rec1" {
		t.Fatalf("items = %+v", payload.Items)
	}
}

func TestAdCopyListEmptyIsArrayNotNull(t *testing.T) {
	app := adCopyApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))

	rr := httptest.NewRecorder()
	app.AdCopyList(rr, httptest.NewRequest("GET", "/api/adcopy", nil))

	if !strings.Contains(rr.Body.String(), `"items":[]`) {
		t.Fatalf("empty listing should serialize as []: %s", rr.Body.String())
	}
}

func TestAdCopyCreateRequiresConcept(t *testing.T) {
	app := adCopyApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("workflow should not be triggered for invalid briefs")
	}))

	rr := httptest.NewRecorder()
	app.AdCopyCreate(rr, httptest.NewRequest("POST", "/api/adcopy", strings.NewReader(`{"cta":"Buy"}`)))
	if rr.Code != 400 {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestAdCopyCreateTriggersWorkflow(t *testing.T) {
	var received map[string]any
	app := adCopyApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		_, _ = w.Write([]byte(`{"recordId":"rec9","status":"Running"}`))
	}))

	body := strings.NewReader(`{"fullConcept":"earbuds for runners","cta":"Shop Now"}`)
	rr := httptest.NewRecorder()
	app.AdCopyCreate(rr, httptest.NewRequest("POST", "/api/adcopy", body))
	if rr.Code != 202 {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if received["fullConcept"] != "earbuds for runners" {
		t.Fatalf("workflow payload = %+v", received)
	}

	var run map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&run); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if run["recordId"] != "rec9" {
		t.Fatalf("run = %+v", run)
	}
}

func TestAdCopyGenerateImagesHitsImagesHook(t *testing.T) {
	var path, recordID string
	app := adCopyApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		recordID = r.URL.Query().Get("recordId")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/adcopy/rec3/images", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", "rec3")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	app.AdCopyGenerateImages(rr, req)
	if rr.Code != 202 {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(path, "images-hook") {
		t.Errorf("hit %q, want images hook", path)
	}
	if recordID != "rec3" {
		t.Errorf("recordId = %q", recordID)
	}
}

func TestAdCopyProxyUpstreamFailure(t *testing.T) {
	app := adCopyApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow exploded", http.StatusInternalServerError)
	}))

	rr := httptest.NewRecorder()
	app.AdCopyList(rr, httptest.NewRequest("GET", "/api/adcopy", nil))
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
}
