package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/mnchat/internal/config"
	"github.com/zhouzirui/mnchat/internal/model/persona"
)

func TestRunServerStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	srv := &http.Server{Addr: addr, Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- runServer(ctx, srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runServer did not return after cancel")
	}
}

func TestLoadPersonasFromFile(t *testing.T) {
	store, err := loadPersonas(config.AIConfig{})
	require.NoError(t, err)
	_, ok := store.FindByID(persona.DefaultID)
	assert.True(t, ok)

	path := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, os.WriteFile(path, []byte("personas:\n  - id: custom\n    system_prompt: hi\n"), 0o600))
	store, err = loadPersonas(config.AIConfig{PersonaFile: path})
	require.NoError(t, err)
	_, ok = store.FindByID("custom")
	assert.True(t, ok)
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := newLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)

	logger, err := newLogger(config.LogConfig{Level: "debug"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
