package cli

import (
	"context"
	"errors"
	"fmt"

	"gamedat-translator/internal/glossary"
	"gamedat-translator/internal/pipeline"

	"github.com/spf13/cobra"
)

func extractCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file...]",
		Short: "Extract translatable entries of game files into JSON documents",
		Long: `Parses the named game files (relative to the game directory), or every
supported file when none is given, and writes one JSON document per file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, "Extract", args, (*pipeline.Pipeline).Extract, (*pipeline.Pipeline).ExtractAll)
		},
	}
}

func applyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply [file...]",
		Short: "Write the translations of JSON documents back into the game files",
		Long: `Applies the named documents, or every document in the translation directory
when none is given. The first change to a game file keeps a backup of the
original next to it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, "Apply", args, (*pipeline.Pipeline).Apply, (*pipeline.Pipeline).ApplyAll)
		},
	}
}

func runBatch(
	opts *options,
	op string,
	names []string,
	one func(*pipeline.Pipeline, context.Context, string) (*pipeline.FileResult, error),
	all func(*pipeline.Pipeline, context.Context) (*pipeline.Summary, error),
) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, logger, err := opts.loadConfig()
	if err != nil {
		return err
	}
	p := pipeline.New(layoutFor(cfg), logger)

	var sum *pipeline.Summary
	if len(names) == 0 {
		sum, err = all(p, ctx)
	} else {
		sum, err = p.Run(ctx, names, func(ctx context.Context, name string) (*pipeline.FileResult, error) {
			return one(p, ctx, name)
		})
	}
	if err != nil {
		return err
	}
	return report(logger, op, sum)
}

func translateCmd(opts *options) *cobra.Command {
	var source, target, provider string

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Fill in untranslated entries of every document through a translation provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			cfg, logger, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if source != "" {
				cfg.Translation.SourceLang = source
			}
			if target != "" {
				cfg.Translation.TargetLang = target
			}
			if provider != "" {
				cfg.Translation.Provider = provider
			}

			deps, err := initDependencies(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer deps.Close(context.Background())

			logger.Info().
				Str("provider", deps.service.Provider().Name()).
				Str("source", cfg.Translation.SourceLang).
				Str("target", cfg.Translation.TargetLang).
				Msg("Starting translation")

			p := pipeline.New(layoutFor(cfg), logger,
				pipeline.WithTranslator(deps.service),
				pipeline.WithObserver(newProgressObserver()),
			)
			sum, err := p.TranslateAll(ctx, cfg.Translation.SourceLang, cfg.Translation.TargetLang)
			if errors.Is(err, context.Canceled) {
				logger.Warn().Msg("Translation interrupted, progress saved")
				return nil
			}
			if err != nil {
				return err
			}
			return report(logger, "Translate", sum)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source language code (default from config, en)")
	cmd.Flags().StringVar(&target, "target", "", "target language code (default from config, es)")
	cmd.Flags().StringVar(&provider, "provider", "", "translation provider: google, gemini or openai")

	return cmd
}

func glossaryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glossary",
		Short: "Manage the terminology glossary used by the LLM providers",
	}
	cmd.AddCommand(glossaryImportCmd(opts))
	cmd.AddCommand(glossaryLookupCmd(opts))
	return cmd
}

func glossaryImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <tsv>",
		Short: "Import a tab-separated glossary into Neo4j",
		Long: `Reads rows of source, target, and optionally category and a comma-separated
list of related source terms, and upserts them as Term nodes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			cfg, logger, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Neo4j.URI == "" {
				return errors.New("glossary import: NEO4J_URI is not set")
			}

			static, err := glossary.LoadTSV(args[0])
			if err != nil {
				return err
			}

			store, err := glossary.ConnectGraph(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password, logger)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			if err := store.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("ensure glossary schema: %w", err)
			}
			n, err := store.Import(ctx, static.Terms())
			if err != nil {
				return fmt.Errorf("import glossary: %w", err)
			}
			logger.Info().Int("terms", n).Str("file", args[0]).Msg("Glossary imported")
			return nil
		},
	}
}

func glossaryLookupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <text>",
		Short: "Show the glossary terms found in a text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			cfg, logger, err := opts.loadConfig()
			if err != nil {
				return err
			}
			g, closeFn, err := openGlossary(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeFn()
			if g == nil {
				return errors.New("glossary lookup: neither NEO4J_URI nor GLOSSARY_FILE is set")
			}

			terms, err := g.Lookup(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range terms {
				fmt.Fprintf(out, "%s\t%s\t%s\n", t.Source, t.Target, t.Category)
			}
			return nil
		},
	}
}
