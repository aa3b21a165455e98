package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gamedat-translator/internal/config"
	"gamedat-translator/internal/filewalker"
	"gamedat-translator/internal/pipeline"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by all commands.
type options struct {
	configFile     string
	gameDir        string
	translationDir string
	logLevel       string
}

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "gamedat-translator",
		Short: "Extract, translate and patch the text files of a game's data directory",
		Long: `Extracts the translatable text of text.dat, optionsdata.dat, techdata.dat,
itemdata.dat, systemdata.dat and traintext.sw into JSON documents, fills them
in through a translation provider, and writes the translations back into the
game files, keeping a backup of each original.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "TOML config file (default "+config.DefaultFile+" if present)")
	flags.StringVar(&opts.gameDir, "game-dir", "", "game data directory")
	flags.StringVar(&opts.translationDir, "translation-dir", "", "directory of the JSON documents (default <game-dir>/translation)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(extractCmd(opts))
	rootCmd.AddCommand(applyCmd(opts))
	rootCmd.AddCommand(translateCmd(opts))
	rootCmd.AddCommand(glossaryCmd(opts))

	return rootCmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// loadConfig reads the configuration and applies the persistent flags on
// top of it.
func (o *options) loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, dotenv, err := config.Load(o.configFile)
	if err != nil {
		return nil, log.Logger, err
	}
	if o.gameDir != "" {
		cfg.Game.Dir = o.gameDir
	}
	if o.translationDir != "" {
		cfg.Game.TranslationDir = o.translationDir
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, log.Logger, err
	}
	log.Logger = logger
	if !dotenv {
		logger.Debug().Msg("No .env file found, using environment variables")
	}
	return cfg, logger, nil
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.Logger, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().
		Logger(), nil
}

func layoutFor(cfg *config.Config) filewalker.Layout {
	return filewalker.NewLayout(cfg.Game.Dir, cfg.Game.TranslationDir, cfg.Game.BackupSuffix)
}

// report logs a batch summary and turns per-file failures into an error.
func report(logger zerolog.Logger, op string, sum *pipeline.Summary) error {
	for _, f := range sum.Files {
		if f.Err != nil {
			logger.Error().Err(f.Err).Str("file", f.Name).Msgf("%s failed", op)
		}
	}
	logger.Info().
		Int("files", len(sum.Files)).
		Int("written", sum.Written()).
		Int("failed", sum.Failed()).
		Msgf("%s complete", op)

	if n := sum.Failed(); n > 0 {
		return fmt.Errorf("%s: %d of %d files failed", strings.ToLower(op), n, len(sum.Files))
	}
	return nil
}
