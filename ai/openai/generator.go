package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quarrylabs/corpus/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// translatorSystemPrompt instructs the chat model to behave as a translator.
const translatorSystemPrompt = "You are a professional translator. Translate the text accurately while preserving the meaning and tone."

// Generator implements ai.Generator and ai.Translator using OpenAI-compatible
// chat APIs. Translation is a chat completion under a fixed translator prompt,
// so both services share one client.
type Generator struct {
	client llms.Model
	logger *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		logger: slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new chat completion service using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Complete generates a completion for the user message under the given system prompt.
func (g *Generator) Complete(ctx context.Context, system, user string) (string, error) {
	g.logger.Debug("generating completion", "system_length", len(system), "user_length", len(user))

	content := []llms.MessageContent{}
	if system != "" {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		})
	}
	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(user)},
	})

	response, err := g.client.GenerateContent(ctx, content, llms.WithTemperature(0.7))
	if err != nil {
		g.logger.Error("completion failed", "err", err)
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("chat model returned no choices")
	}

	return response.Choices[0].Content, nil
}

// Translate returns the text translated into the target language.
func (g *Generator) Translate(ctx context.Context, text, language string) (string, error) {
	g.logger.Debug("translating text", "language", language, "length", len(text))

	prompt := fmt.Sprintf("Translate the following text to %s:\n\n%s", language, text)
	return g.Complete(ctx, translatorSystemPrompt, prompt)
}
