package translation

import (
	"context"
	"fmt"
	"strings"

	"gamedat-translator/internal/glossary"
	"gamedat-translator/internal/textutil"

	"github.com/rs/zerolog"
)

const systemPromptTemplate = `You are a professional video game localizer translating a space trading and combat game from %s to %s.

Rules:
1. Translate from %s to %s.
2. Use the terminology from the provided glossary whenever a term appears.
3. Preserve ALL placeholders like {{var_1}}, {{var_2}} exactly as they are.
4. Keep line breaks where the original has them.
5. Output ONLY the translation, with no explanations, notes or quotes.
6. Keep UI text short; it has to fit the same space as the original.`

// PromptBuilder builds the system and user prompts for LLM providers.
type PromptBuilder struct {
	glossary glossary.Glossary
	log      zerolog.Logger
}

// NewPromptBuilder creates a prompt builder. g may be nil.
func NewPromptBuilder(g glossary.Glossary, log zerolog.Logger) *PromptBuilder {
	return &PromptBuilder{glossary: g, log: log}
}

func (pb *PromptBuilder) SystemPrompt(sourceLang, targetLang string) string {
	return fmt.Sprintf(systemPromptTemplate, sourceLang, targetLang, sourceLang, targetLang)
}

// UserPrompt wraps text with the glossary terms it contains. A failing
// glossary lookup is logged and the prompt is built without terms.
func (pb *PromptBuilder) UserPrompt(ctx context.Context, text string) string {
	var sb strings.Builder

	if pb.glossary != nil {
		terms, err := pb.glossary.Lookup(ctx, text)
		if err != nil {
			pb.log.Warn().Err(err).Str("text", textutil.Truncate(text, 40)).Msg("Glossary lookup failed")
		}
		if len(terms) > 0 {
			sb.WriteString("=== Glossary ===\n")
			for _, t := range terms {
				fmt.Fprintf(&sb, "• %s → %s", t.Source, t.Target)
				if t.Category != "" {
					fmt.Fprintf(&sb, " (%s)", t.Category)
				}
				if len(t.Related) > 0 {
					fmt.Fprintf(&sb, " [related: %s]", strings.Join(t.Related, ", "))
				}
				sb.WriteString("\n")
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("Text to translate:\n")
	sb.WriteString(text)
	return sb.String()
}
