package translation

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"
)

// OpenAIProvider translates through any OpenAI-compatible chat completion
// endpoint.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	prompts *PromptBuilder
	log     zerolog.Logger
}

// NewOpenAIProvider creates the provider. An empty baseURL selects the
// library default.
func NewOpenAIProvider(baseURL, apiKey, model string, prompts *PromptBuilder, log zerolog.Logger) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(60 * time.Second),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	return &OpenAIProvider{
		client:  &client,
		model:   model,
		prompts: prompts,
		log:     log,
	}
}

func (p *OpenAIProvider) Name() string { return ProviderOpenAI }

func (p *OpenAIProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.prompts.SystemPrompt(sourceLang, targetLang)),
			openai.UserMessage(p.prompts.UserPrompt(ctx, text)),
		},
		Model: p.model,
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat completion")
	}

	p.log.Debug().
		Int64("prompt_tokens", completion.Usage.PromptTokens).
		Int64("output_tokens", completion.Usage.CompletionTokens).
		Msg("OpenAI translation complete")

	return completion.Choices[0].Message.Content, nil
}
