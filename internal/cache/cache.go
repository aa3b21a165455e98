// Package cache remembers provider translations so repeated texts are not
// sent twice.
package cache

import (
	"context"
	"fmt"
	"sync"

	"gamedat-translator/internal/textutil"

	"github.com/rs/zerolog"
)

// Store persists translations across runs.
type Store interface {
	Get(ctx context.Context, hash string) (string, bool, error)
	Upsert(ctx context.Context, hash, source, translated string) error
	All(ctx context.Context) (map[string]string, error)
}

// TranslationCache is an in-memory cache with an optional persistent Store
// behind it.
type TranslationCache struct {
	store  Store
	log    zerolog.Logger
	mu     sync.RWMutex
	memory map[string]string // hash → translated text
}

// New creates a cache. store may be nil for a memory-only cache.
func New(store Store, log zerolog.Logger) *TranslationCache {
	return &TranslationCache{
		store:  store,
		log:    log,
		memory: make(map[string]string),
	}
}

// Key is the cache key of text translated between the two languages.
func Key(sourceLang, targetLang, text string) string {
	return textutil.Hash(sourceLang, targetLang, text)
}

// Get returns a cached translation. Store errors count as a miss.
func (c *TranslationCache) Get(ctx context.Context, sourceLang, targetLang, text string) (string, bool) {
	hash := Key(sourceLang, targetLang, text)

	c.mu.RLock()
	v, ok := c.memory[hash]
	c.mu.RUnlock()
	if ok {
		return v, true
	}
	if c.store == nil {
		return "", false
	}

	translated, ok, err := c.store.Get(ctx, hash)
	if err != nil {
		c.log.Warn().Err(err).Str("text", textutil.Truncate(text, 40)).Msg("Cache lookup failed")
		return "", false
	}
	if !ok {
		return "", false
	}

	c.mu.Lock()
	c.memory[hash] = translated
	c.mu.Unlock()
	return translated, true
}

// Set stores a translation in memory and in the store.
func (c *TranslationCache) Set(ctx context.Context, sourceLang, targetLang, text, translated string) error {
	hash := Key(sourceLang, targetLang, text)

	c.mu.Lock()
	c.memory[hash] = translated
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if err := c.store.Upsert(ctx, hash, text, translated); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Len returns the number of translations held in memory.
func (c *TranslationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}

// Preload loads every stored translation into memory.
func (c *TranslationCache) Preload(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	rows, err := c.store.All(ctx)
	if err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}

	c.mu.Lock()
	for hash, translated := range rows {
		c.memory[hash] = translated
	}
	c.mu.Unlock()

	c.log.Info().Int("count", len(rows)).Msg("Preloaded translation cache")
	return nil
}
