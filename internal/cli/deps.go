package cli

import (
	"context"
	"fmt"

	"gamedat-translator/internal/cache"
	"gamedat-translator/internal/config"
	"gamedat-translator/internal/glossary"
	"gamedat-translator/internal/translation"

	"github.com/rs/zerolog"
)

// dependencies are the services behind the translate command.
type dependencies struct {
	service *translation.Service
	closers []func(context.Context)
}

func (d *dependencies) Close(ctx context.Context) {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i](ctx)
	}
}

// initDependencies wires the cache, glossary and provider. PostgreSQL and
// Neo4j are optional; each is used only when configured.
func initDependencies(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	var store cache.Store
	if cfg.Postgres.URL != "" {
		pg, err := cache.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, func(context.Context) { pg.Close() })
		store = pg
		logger.Info().Msg("Connected to PostgreSQL")
	}
	tc := cache.New(store, logger)
	if err := tc.Preload(ctx); err != nil {
		logger.Warn().Err(err).Msg("Could not preload translation cache")
	}

	g, closeGlossary, err := openGlossary(ctx, cfg, logger)
	if err != nil {
		deps.Close(ctx)
		return nil, err
	}
	deps.closers = append(deps.closers, func(context.Context) { closeGlossary() })

	provider, err := translation.NewProvider(translation.Options{
		Name:          cfg.Translation.Provider,
		GeminiAPIKey:  cfg.Gemini.APIKey,
		GeminiModel:   cfg.Gemini.Model,
		OpenAIBaseURL: cfg.OpenAI.BaseURL,
		OpenAIAPIKey:  cfg.OpenAI.APIKey,
		OpenAIModel:   cfg.OpenAI.Model,
		Glossary:      g,
		Log:           logger,
	})
	if err != nil {
		deps.Close(ctx)
		return nil, err
	}

	deps.service = translation.NewService(provider, logger,
		translation.WithCache(tc),
		translation.WithDelay(cfg.Delay()),
	)
	return deps, nil
}

// openGlossary prefers the Neo4j glossary and falls back to the TSV file.
// It returns a nil glossary when neither is configured.
func openGlossary(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (glossary.Glossary, func(), error) {
	if cfg.Neo4j.URI != "" {
		store, err := glossary.ConnectGraph(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password, logger)
		if err != nil {
			return nil, func() {}, err
		}
		logger.Info().Msg("Connected to Neo4j")
		return store, func() { store.Close(context.Background()) }, nil
	}
	if cfg.Glossary.File != "" {
		static, err := glossary.LoadTSV(cfg.Glossary.File)
		if err != nil {
			return nil, func() {}, fmt.Errorf("load glossary: %w", err)
		}
		logger.Info().Int("terms", len(static.Terms())).Msg("Loaded glossary file")
		return static, func() {}, nil
	}
	return nil, func() {}, nil
}
