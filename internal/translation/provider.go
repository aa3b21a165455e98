// Package translation turns source texts into target-language texts through
// a pluggable machine translation Provider.
package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gamedat-translator/internal/glossary"

	"github.com/rs/zerolog"
)

// ErrProviderFailure marks a text the provider could not translate.
var ErrProviderFailure = errors.New("translation provider failure")

// ErrUnknownProvider is returned by NewProvider for an unsupported name.
var ErrUnknownProvider = errors.New("unknown translation provider")

// Provider translates a single text.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Provider names accepted by NewProvider.
const (
	ProviderGoogle = "google"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Options configures NewProvider.
type Options struct {
	Name string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string

	// Glossary feeds term hints to the LLM providers. May be nil.
	Glossary glossary.Glossary
	Log      zerolog.Logger
}

// NewProvider builds the provider selected by o.Name.
func NewProvider(o Options) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(o.Name)) {
	case "", ProviderGoogle:
		return NewGoogleProvider(), nil
	case ProviderGemini:
		if o.GeminiAPIKey == "" {
			return nil, errors.New("gemini provider: GEMINI_API_KEY is not set")
		}
		return NewGeminiProvider(o.GeminiAPIKey, o.GeminiModel, o.GeminiBaseURL,
			NewPromptBuilder(o.Glossary, o.Log), o.Log), nil
	case ProviderOpenAI:
		if o.OpenAIModel == "" {
			return nil, errors.New("openai provider: OPENAI_MODEL is not set")
		}
		return NewOpenAIProvider(o.OpenAIBaseURL, o.OpenAIAPIKey, o.OpenAIModel,
			NewPromptBuilder(o.Glossary, o.Log), o.Log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, o.Name)
	}
}
