package translation

import (
	"context"
	"fmt"

	"github.com/bregydoc/gtranslate"
)

// GoogleProvider uses the public Google Translate endpoint.
type GoogleProvider struct {
	translate func(text string, params gtranslate.TranslationParams) (string, error)
}

func NewGoogleProvider() *GoogleProvider {
	return &GoogleProvider{translate: gtranslate.TranslateWithParams}
}

func (p *GoogleProvider) Name() string { return ProviderGoogle }

// Translate calls Google Translate. The underlying client takes no context,
// so cancellation is only observed before the call.
func (p *GoogleProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := p.translate(text, gtranslate.TranslationParams{
		From: sourceLang,
		To:   targetLang,
	})
	if err != nil {
		return "", fmt.Errorf("google translate: %w", err)
	}
	return out, nil
}
