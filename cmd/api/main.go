package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/mnchat/internal/config"
	"github.com/zhouzirui/mnchat/internal/handler"
	chatHandler "github.com/zhouzirui/mnchat/internal/handler/chat"
	"github.com/zhouzirui/mnchat/internal/locale"
	"github.com/zhouzirui/mnchat/internal/model/persona"
	"github.com/zhouzirui/mnchat/internal/service/ai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional; real deployments use the process environment
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Debug("no .env file loaded, using process environment", zap.Error(envErr))
	}

	personaStore, err := loadPersonas(cfg.AI)
	if err != nil {
		logger.Fatal("failed to load personas", zap.Error(err))
	}
	defaultPersona := cfg.AI.PersonaID
	if defaultPersona == "" {
		defaultPersona = persona.DefaultID
	}
	if _, ok := personaStore.FindByID(defaultPersona); !ok {
		logger.Fatal("default persona not found", zap.String("persona", defaultPersona))
	}

	// Without a model the server still starts so /health can report it.
	var replier chatHandler.Replier
	modelName := ""
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI, logger.Named("ai"))
		if err != nil {
			logger.Warn("failed to initialize AI service, continuing without a model", zap.Error(err))
		} else {
			replier = aiService
			modelName = aiService.Model()
			logger.Info("AI service initialized",
				zap.String("provider", cfg.AI.Provider),
				zap.String("model", modelName),
			)
		}
	} else {
		logger.Warn("AI credentials not configured, /chat will answer with errors",
			zap.String("provider", cfg.AI.Provider))
	}

	chat := chatHandler.New(replier, personaStore, defaultPersona, locale.Lookup(cfg.AI.Locale), logger.Named("chat"))
	router := handler.NewRouter(chat, personaStore, handler.Options{
		Logger:         logger.Named("http"),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Model:          modelName,
	})

	startServer(ctx, logger, cfg.Server, router)
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.Level, err)
	}
	zcfg.Level = level
	return zcfg.Build()
}

func loadPersonas(cfg config.AIConfig) (persona.Store, error) {
	if cfg.PersonaFile == "" {
		return persona.NewMemoryStore(persona.Seed()), nil
	}
	items, err := persona.LoadFile(cfg.PersonaFile)
	if err != nil {
		return nil, err
	}
	return persona.NewMemoryStore(items), nil
}

func startServer(ctx context.Context, logger *zap.Logger, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("chat backend listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
