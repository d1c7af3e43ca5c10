package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/mnchat/internal/model/chat"
)

// ChainGenerator runs an eino template -> chat model chain.
type ChainGenerator struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewChainGenerator compiles the prompt chain around chatModel.
func NewChainGenerator(ctx context.Context, chatModel model.BaseChatModel) (*ChainGenerator, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}
	return &ChainGenerator{chain: runnable}, nil
}

// Generate implements Generator.
func (g *ChainGenerator) Generate(ctx context.Context, system string, history []chat.Turn, query string) (string, error) {
	response, err := g.chain.Invoke(ctx, map[string]any{
		"system":  system,
		"history": toSchemaMessages(history),
		"query":   query,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	if response == nil {
		return "", ErrEmptyCompletion
	}
	return response.Content, nil
}

func toSchemaMessages(history []chat.Turn) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history))
	for _, turn := range history {
		switch turn.Role {
		case chat.RoleUser:
			messages = append(messages, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return messages
}
