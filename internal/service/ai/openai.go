package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/zhouzirui/mnchat/internal/config"
	"github.com/zhouzirui/mnchat/internal/model/chat"
)

// OpenAIGenerator talks to any OpenAI-compatible chat completions API,
// including local Qwen deployments behind vLLM or Ollama.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	topP        float32
	maxTokens   int
}

// NewOpenAIGenerator builds a client from cfg. An empty BaseURL targets the
// public OpenAI API.
func NewOpenAIGenerator(cfg config.AIConfig) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	g := &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
	if cfg.Temperature != nil {
		g.temperature = float32(*cfg.Temperature)
	}
	if cfg.TopP != nil {
		g.topP = float32(*cfg.TopP)
	}
	if cfg.MaxTokens != nil {
		g.maxTokens = *cfg.MaxTokens
	}
	return g
}

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, system string, history []chat.Turn, query string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == chat.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: query})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: g.temperature,
		TopP:        g.topP,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
