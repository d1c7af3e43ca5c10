package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusCreated, map[string]string{"status": "ok"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"status":"ok"}` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusBadRequest, "bad")
	if !strings.Contains(rec.Body.String(), `"error":"bad"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestDecodeJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":"hi"}`))
	var payload struct {
		Message string `json:"message"`
	}
	if err := DecodeJSON(req, &payload); err != nil {
		t.Fatalf("DecodeJSON err: %v", err)
	}
	if payload.Message != "hi" {
		t.Fatalf("unexpected message %q", payload.Message)
	}
}
