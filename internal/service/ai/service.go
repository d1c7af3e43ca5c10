package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zhouzirui/mnchat/internal/config"
	"github.com/zhouzirui/mnchat/internal/model/chat"
	"github.com/zhouzirui/mnchat/internal/model/persona"
)

// ErrEmptyCompletion is returned when the provider answers without content.
var ErrEmptyCompletion = errors.New("model returned no completion")

// Generator produces one assistant reply from a system prompt, prior turns
// and the new user message.
type Generator interface {
	Generate(ctx context.Context, system string, history []chat.Turn, query string) (string, error)
}

// Service answers chat exchanges as a persona.
type Service struct {
	gen    Generator
	cfg    config.AIConfig
	logger *zap.Logger
}

// NewService builds the generator selected by cfg.Provider.
func NewService(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*Service, error) {
	var (
		gen Generator
		err error
	)
	switch cfg.Provider {
	case config.ProviderArk:
		chatModel, mErr := cfg.NewChatModel(ctx)
		if mErr != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", mErr)
		}
		gen, err = NewChainGenerator(ctx, chatModel)
	case config.ProviderOpenAI:
		gen = NewOpenAIGenerator(cfg)
	default:
		err = fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return New(gen, cfg, logger), nil
}

// New wraps an existing generator.
func New(gen Generator, cfg config.AIConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gen: gen, cfg: cfg, logger: logger}
}

// Model names the configured model, for the service info endpoints.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Reply generates the assistant answer to message given the client history.
func (s *Service) Reply(ctx context.Context, p *persona.Persona, history []chat.Turn, message string) (string, error) {
	window := trimHistory(history, s.cfg.HistoryLimit)

	reply, err := s.gen.Generate(ctx, BuildSystemPrompt(p), window, message)
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}

	s.logger.Debug("generated reply",
		zap.String("persona", p.ID),
		zap.Int("history", len(window)),
		zap.Int("length", len(reply)),
	)
	return strings.TrimSpace(reply), nil
}

// trimHistory keeps the last limit user/assistant turns; other roles are
// dropped so clients cannot inject system prompts.
func trimHistory(history []chat.Turn, limit int) []chat.Turn {
	filtered := make([]chat.Turn, 0, len(history))
	for _, turn := range history {
		switch turn.Role {
		case chat.RoleUser, chat.RoleAssistant:
			filtered = append(filtered, turn)
		}
	}

	if limit <= 0 {
		return nil
	}
	if len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	return filtered
}
