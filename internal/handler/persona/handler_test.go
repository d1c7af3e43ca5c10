package persona

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/mnchat/internal/model/persona"
)

func TestListPersonasHidesSystemPrompt(t *testing.T) {
	r := chi.NewRouter()
	New(persona.NewMemoryStore(persona.Seed())).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/personas", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var items []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != len(persona.Seed()) {
		t.Fatalf("expected %d personas, got %d", len(persona.Seed()), len(items))
	}
	for _, item := range items {
		if _, ok := item["systemPrompt"]; ok {
			t.Fatal("system prompt must not be exposed")
		}
	}
}

func TestGetPersona(t *testing.T) {
	r := chi.NewRouter()
	New(persona.NewMemoryStore(persona.Seed())).RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/personas/"+persona.DefaultID, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var item map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if item["id"] != persona.DefaultID {
		t.Fatalf("unexpected persona %v", item["id"])
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/personas/nobody", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "persona not found: nobody" {
		t.Fatalf("unexpected error body %v", body)
	}
}
