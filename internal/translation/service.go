package translation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gamedat-translator/internal/cache"
	"gamedat-translator/internal/interpolation"
	"gamedat-translator/internal/textutil"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Service wraps a Provider with caching, placeholder protection and a
// minimum delay between provider calls.
type Service struct {
	provider Provider
	cache    *cache.TranslationCache
	limiter  *rate.Limiter
	log      zerolog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCache serves repeated texts from c.
func WithCache(c *cache.TranslationCache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithDelay enforces at least d between provider calls.
func WithDelay(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

func NewService(p Provider, log zerolog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		provider: p,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the wrapped provider.
func (s *Service) Provider() Provider { return s.provider }

// Translate returns the translation of text. Provider errors, empty answers
// and answers missing a placeholder are reported as ErrProviderFailure and
// never cached. Context cancellation is returned as is.
func (s *Service) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty source text", ErrProviderFailure)
	}

	if s.cache != nil {
		if v, ok := s.cache.Get(ctx, sourceLang, targetLang, text); ok {
			s.log.Debug().Str("text", textutil.Truncate(text, 40)).Msg("Cache hit")
			return v, nil
		}
	}

	safe, mappings := interpolation.Protect(text)

	if err := s.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("rate limit: %w", err)
	}

	out, err := s.provider.Translate(ctx, safe, sourceLang, targetLang)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %s: %w", ErrProviderFailure, s.provider.Name(), err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: %s returned an empty translation", ErrProviderFailure, s.provider.Name())
	}

	out, complete := interpolation.Restore(out, mappings)
	if !complete {
		s.log.Warn().
			Str("text", textutil.Truncate(text, 40)).
			Msg("Translation dropped placeholders")
		return "", fmt.Errorf("%w: %s dropped placeholders", ErrProviderFailure, s.provider.Name())
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, sourceLang, targetLang, text, out); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache translation")
		}
	}

	return out, nil
}
