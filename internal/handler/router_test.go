package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/mnchat/internal/handler/chat"
	"github.com/zhouzirui/mnchat/internal/locale"
	chatModel "github.com/zhouzirui/mnchat/internal/model/chat"
	"github.com/zhouzirui/mnchat/internal/model/persona"
)

type echoReplier struct{}

func (echoReplier) Reply(_ context.Context, _ *persona.Persona, _ []chatModel.Turn, message string) (string, error) {
	return message, nil
}

func newTestRouter(model string) http.Handler {
	store := persona.NewMemoryStore(persona.Seed())
	chatHandler := chat.New(echoReplier{}, store, persona.DefaultID, locale.Lookup("mn"), nil)
	return NewRouter(chatHandler, store, Options{Model: model})
}

func TestHealth(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter("qwen").ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "qwen", body["model"])
}

func TestHealthWithoutModel(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter("").ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Contains(t, resp.Body.String(), "degraded")
}

func TestServiceInfo(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter("qwen").ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "online", body["status"])
	assert.Contains(t, body["endpoints"], "/chat")
}

func TestChatRouteMounted(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{"message":"hi","history":[]}`))
	resp := httptest.NewRecorder()
	newTestRouter("qwen").ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Body.String(), `"response":"hi"`)
}
