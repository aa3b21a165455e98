package translation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gamedat-translator/internal/cache"
	"gamedat-translator/internal/glossary"

	"github.com/bregydoc/gtranslate"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider answers from a map and records what it was sent.
type fakeProvider struct {
	answers map[string]string
	err     error
	calls   []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Translate(_ context.Context, text, _, _ string) (string, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return "", f.err
	}
	return f.answers[text], nil
}

func TestServiceProtectsPlaceholders(t *testing.T) {
	p := &fakeProvider{answers: map[string]string{
		"Gain {{var_1}} credits": "  Gana {{var_1}} créditos\n",
	}}
	s := NewService(p, zerolog.Nop())

	out, err := s.Translate(context.Background(), "Gain %d credits", "en", "es")
	require.NoError(t, err)
	assert.Equal(t, "Gana %d créditos", out)
	assert.Equal(t, []string{"Gain {{var_1}} credits"}, p.calls)
}

func TestServiceCache(t *testing.T) {
	p := &fakeProvider{answers: map[string]string{"Ship": "Nave"}}
	s := NewService(p, zerolog.Nop(), WithCache(cache.New(nil, zerolog.Nop())))

	for i := 0; i < 3; i++ {
		out, err := s.Translate(context.Background(), "Ship", "en", "es")
		require.NoError(t, err)
		assert.Equal(t, "Nave", out)
	}
	assert.Len(t, p.calls, 1)
}

func TestServiceFailures(t *testing.T) {
	boom := errors.New("quota exceeded")

	tests := []struct {
		name string
		p    *fakeProvider
		text string
	}{
		{"provider error", &fakeProvider{err: boom}, "Ship"},
		{"empty answer", &fakeProvider{answers: map[string]string{"Ship": "   "}}, "Ship"},
		{"empty source", &fakeProvider{}, " \n"},
		{"mangled placeholder", &fakeProvider{answers: map[string]string{
			"You have {{var_1}} credits {{var_2}}": "Tienes {{var_ 1}} creditos {{var_2}}",
		}}, "You have %d credits <icon>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cache.New(nil, zerolog.Nop())
			s := NewService(tt.p, zerolog.Nop(), WithCache(c))

			_, err := s.Translate(context.Background(), tt.text, "en", "es")
			assert.ErrorIs(t, err, ErrProviderFailure)
			assert.Zero(t, c.Len(), "failures are not cached")
		})
	}

	_, err := NewService(&fakeProvider{err: boom}, zerolog.Nop()).
		Translate(context.Background(), "Ship", "en", "es")
	assert.ErrorIs(t, err, boom)
}

func TestServiceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &fakeProvider{err: context.Canceled}
	_, err := NewService(p, zerolog.Nop(), WithDelay(time.Hour)).Translate(ctx, "Ship", "en", "es")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrProviderFailure)
}

func TestServiceDelay(t *testing.T) {
	p := &fakeProvider{answers: map[string]string{"a": "A", "b": "B", "c": "C"}}
	s := NewService(p, zerolog.Nop(), WithDelay(40*time.Millisecond))

	start := time.Now()
	for _, text := range []string{"a", "b", "c"} {
		_, err := s.Translate(context.Background(), text, "en", "es")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}

func TestPromptBuilderIncludesGlossary(t *testing.T) {
	g := glossary.NewStatic([]glossary.Term{
		{Source: "Hyperdrive", Target: "Hiperimpulsor", Category: "tech", Related: []string{"Jump Gate"}},
		{Source: "Fuel", Target: "Combustible"},
	})
	pb := NewPromptBuilder(g, zerolog.Nop())

	prompt := pb.UserPrompt(context.Background(), "Engage the hyperdrive")
	assert.Contains(t, prompt, "• Hyperdrive → Hiperimpulsor (tech) [related: Jump Gate]")
	assert.NotContains(t, prompt, "Combustible")
	assert.True(t, strings.HasSuffix(prompt, "Text to translate:\nEngage the hyperdrive"))

	assert.Equal(t, "Text to translate:\nHi", NewPromptBuilder(nil, zerolog.Nop()).UserPrompt(context.Background(), "Hi"))
	assert.Contains(t, pb.SystemPrompt("en", "es"), "from en to es")
}

func TestGeminiProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) && assert.Len(t, req.Contents, 1) {
			assert.Contains(t, req.Contents[0].Parts[0].Text, "Text to translate:\nHello")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":" Hola"},{"text":" mundo\n"}]}}]}`)
	}))
	defer srv.Close()

	p := NewGeminiProvider("secret", "gemini-test", srv.URL, NewPromptBuilder(nil, zerolog.Nop()), zerolog.Nop())
	out, err := p.Translate(context.Background(), "Hello", "en", "es")
	require.NoError(t, err)
	assert.Equal(t, "Hola mundo", out)
}

func TestGeminiProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http status", http.StatusTooManyRequests, `{"error":{"code":429}}`},
		{"api error", http.StatusOK, `{"error":{"code":400,"message":"bad","status":"INVALID_ARGUMENT"}}`},
		{"no candidates", http.StatusOK, `{"candidates":[]}`},
		{"garbage", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			p := NewGeminiProvider("k", "", srv.URL, NewPromptBuilder(nil, zerolog.Nop()), zerolog.Nop())
			_, err := p.Translate(context.Background(), "Hello", "en", "es")
			assert.Error(t, err)
			assert.Equal(t, 1, calls, "no retries")
		})
	}
}

func TestOpenAIProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 0,
			"model": "test-model",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "Hola"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
		}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL+"/", "sk-test", "test-model", NewPromptBuilder(nil, zerolog.Nop()), zerolog.Nop())
	out, err := p.Translate(context.Background(), "Hello", "en", "es")
	require.NoError(t, err)
	assert.Equal(t, "Hola", out)
}

func TestGoogleProvider(t *testing.T) {
	p := NewGoogleProvider()
	p.translate = func(text string, params gtranslate.TranslationParams) (string, error) {
		assert.Equal(t, "en", params.From)
		assert.Equal(t, "es", params.To)
		return "Hola", nil
	}

	out, err := p.Translate(context.Background(), "Hello", "en", "es")
	require.NoError(t, err)
	assert.Equal(t, "Hola", out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Translate(ctx, "Hello", "en", "es")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Options{})
	require.NoError(t, err)
	assert.Equal(t, ProviderGoogle, p.Name())

	p, err = NewProvider(Options{Name: "Gemini", GeminiAPIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, p.Name())

	p, err = NewProvider(Options{Name: "openai", OpenAIModel: "m"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, p.Name())

	_, err = NewProvider(Options{Name: "gemini"})
	assert.Error(t, err)

	_, err = NewProvider(Options{Name: "deepl"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
