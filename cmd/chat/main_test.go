package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/mnchat/internal/model/chat"
)

func clearClientEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"MNCHAT_ENDPOINT", "MNCHAT_LOCALE", "MNCHAT_TIMEOUT"} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

type recorded struct {
	mu   sync.Mutex
	reqs []chat.Request
}

func (r *recorded) all() []chat.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]chat.Request(nil), r.reqs...)
}

func echoBackend(t *testing.T) (*httptest.Server, *recorded) {
	t.Helper()
	seen := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chat.Request
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, sonic.Unmarshal(body, &req))
		seen.mu.Lock()
		seen.reqs = append(seen.reqs, req)
		seen.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"echo: ` + req.Message + `","status":"success"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func TestAskPrintsReply(t *testing.T) {
	clearClientEnv(t)
	srv, seen := echoBackend(t)

	out, err := execute(t, "", "--config", writeConfig(t, ""), "ask", "--endpoint", srv.URL, "сайн", "уу")
	require.NoError(t, err)
	assert.Equal(t, "echo: сайн уу\n", out)
	reqs := seen.all()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].History)
}

func TestAskReportsFailure(t *testing.T) {
	clearClientEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	out, err := execute(t, "", "--config", writeConfig(t, ""), "--locale", "en", "ask", "--endpoint", srv.URL, "hi")
	assert.ErrorIs(t, err, errExchangeFailed)
	assert.Contains(t, out, "Error: API is not responding. Please check your API connection.")
}

func TestAskSucceedsWhenReplyReadsLikeAnError(t *testing.T) {
	clearClientEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"Error: handling in Go uses explicit returns."}`))
	}))
	defer srv.Close()

	out, err := execute(t, "", "--config", writeConfig(t, ""), "--locale", "en", "ask", "--endpoint", srv.URL, "explain errors")
	require.NoError(t, err)
	assert.Equal(t, "Error: handling in Go uses explicit returns.\n", out)
}

func TestPlainSessionUsesConfigFile(t *testing.T) {
	clearClientEnv(t)
	srv, seen := echoBackend(t)
	path := writeConfig(t, "endpoint = \""+srv.URL+"\"\nlocale = \"en\"\nplain = true\n")

	out, err := execute(t, "first\nsecond\n/quit\n", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "echo: first")
	assert.Contains(t, out, "echo: second")
	reqs := seen.all()
	require.Len(t, reqs, 2)
	assert.Equal(t, []chat.Turn{chat.UserTurn("first"), chat.AssistantTurn("echo: first")}, reqs[1].History)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	clearClientEnv(t)
	t.Setenv("MNCHAT_LOCALE", "xx")

	_, err := execute(t, "", "--config", writeConfig(t, ""), "ask", "hi")
	assert.ErrorContains(t, err, "unsupported locale")

	srv, _ := echoBackend(t)
	_, err = execute(t, "", "--config", writeConfig(t, ""), "--locale", "mn", "ask", "--endpoint", srv.URL, "hi")
	assert.NoError(t, err)
}

func TestMissingExplicitConfigFails(t *testing.T) {
	clearClientEnv(t)
	_, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "absent.toml"), "ask", "hi")
	assert.Error(t, err)
}

func TestLogFileReceivesEntries(t *testing.T) {
	clearClientEnv(t)
	srv, _ := echoBackend(t)
	logPath := filepath.Join(t.TempDir(), "chat.log")

	_, err := execute(t, "", "--config", writeConfig(t, ""), "--log-file", logPath, "--verbose", "ask", "--endpoint", srv.URL, "hi")
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "exchange completed")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}
