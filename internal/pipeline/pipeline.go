// Package pipeline runs extraction, translation and application over the
// game files of one layout.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gamedat-translator/internal/entry"
	"gamedat-translator/internal/filewalker"
	"gamedat-translator/internal/fsutil"
	"gamedat-translator/internal/parser"

	"github.com/rs/zerolog"
)

var (
	// ErrFileNotFound is returned when a game file or document is missing.
	ErrFileNotFound = errors.New("file not found")
	// ErrWriteFailure is returned when a document, backup or patched file
	// could not be written. The game file is left as it was.
	ErrWriteFailure = errors.New("write failed")
)

// Translator translates one text. *translation.Service implements it.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Pipeline is the orchestrator. It is not safe for concurrent use.
type Pipeline struct {
	layout     filewalker.Layout
	registry   *parser.Registry
	walker     *filewalker.Walker
	translator Translator
	observer   Observer
	log        zerolog.Logger
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithRegistry(r *parser.Registry) Option {
	return func(p *Pipeline) { p.registry = r }
}

func WithTranslator(t Translator) Option {
	return func(p *Pipeline) { p.translator = t }
}

func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// WithClock sets the source of extraction timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(layout filewalker.Layout, log zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		layout:   layout,
		registry: parser.Default(),
		observer: NopObserver{},
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.walker = filewalker.NewWalker(p.registry, log)
	return p
}

// Layout returns the paths the pipeline works on.
func (p *Pipeline) Layout() filewalker.Layout { return p.layout }

// Extract parses the game file name and saves its entries as a document.
// A file without translatable entries produces no document.
func (p *Pipeline) Extract(_ context.Context, name string) (*FileResult, error) {
	res := &FileResult{Name: name}
	src := p.layout.SourcePath(name)
	if !fsutil.Exists(src) {
		return res, fmt.Errorf("%w: %s", ErrFileNotFound, src)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return res, fmt.Errorf("read %s: %w", src, err)
	}
	content := string(data)

	codec, ok := p.registry.ForFile(name)
	if !ok {
		codec, ok = p.registry.Detect(content)
	}
	if !ok {
		return res, fmt.Errorf("%s: %w", name, parser.ErrFormatMismatch)
	}

	entries, err := codec.Parse(content)
	if err != nil {
		return res, fmt.Errorf("%s: %w", name, err)
	}
	res.Entries = len(entries)
	if len(entries) == 0 {
		p.log.Info().Str("file", name).Msg("No translatable entries, skipping")
		return res, nil
	}

	set := entry.NewSet(codec.Format(), name, p.now(), entries)
	if err := p.saveDocument(name, set); err != nil {
		return res, err
	}
	res.Written = true

	p.log.Info().
		Str("file", name).
		Str("format", codec.Format()).
		Int("entries", len(entries)).
		Msg("Extracted entries")
	return res, nil
}

// Apply writes the translations of name's document back into the game
// file. The first write keeps a backup of the original file.
func (p *Pipeline) Apply(_ context.Context, name string) (*FileResult, error) {
	res := &FileResult{Name: name}
	docPath := p.layout.DocumentPath(name)
	src := p.layout.SourcePath(name)
	if !fsutil.Exists(docPath) {
		return res, fmt.Errorf("%w: %s", ErrFileNotFound, docPath)
	}
	if !fsutil.Exists(src) {
		return res, fmt.Errorf("%w: %s", ErrFileNotFound, src)
	}

	set, err := entry.Load(docPath)
	if err != nil {
		return res, err
	}
	res.Entries = len(set.Entries)

	dict := entry.BuildDictionary(set)
	if len(dict) == 0 {
		p.log.Info().Str("file", name).Msg("No translations to apply")
		return res, nil
	}

	codec, ok := p.registry.Resolve(name, set.Metadata.FileType)
	if !ok {
		return res, fmt.Errorf("%s: no codec for file type %q: %w", name, set.Metadata.FileType, parser.ErrFormatMismatch)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return res, fmt.Errorf("read %s: %w", src, err)
	}
	content := string(data)

	patch, err := codec.Apply(content, dict)
	if err != nil {
		return res, fmt.Errorf("%s: %w", name, err)
	}
	res.Replaced = patch.Replaced
	res.Warnings = patch.Warnings
	for _, w := range patch.Warnings {
		p.log.Warn().Str("file", name).Msg(w)
	}

	if !patch.Changed(content) {
		p.log.Info().Str("file", name).Msg("File already up to date")
		return res, nil
	}

	backup := p.layout.BackupPath(name)
	if !fsutil.Exists(backup) {
		if err := fsutil.CopyFile(src, backup); err != nil {
			return res, fmt.Errorf("%w: backup %s: %w", ErrWriteFailure, backup, err)
		}
		p.log.Info().Str("file", name).Str("backup", backup).Msg("Created backup")
	}

	if err := fsutil.WriteFileAtomic(src, []byte(patch.Content), 0o644); err != nil {
		return res, fmt.Errorf("%w: %s: %w", ErrWriteFailure, src, err)
	}
	res.Written = true

	p.log.Info().
		Str("file", name).
		Int("replaced", patch.Replaced).
		Int("warnings", len(patch.Warnings)).
		Msg("Applied translations")
	return res, nil
}

func (p *Pipeline) saveDocument(name string, set *entry.Set) error {
	path := p.layout.DocumentPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrWriteFailure, filepath.Dir(path), err)
	}
	if err := entry.Save(path, set); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	return nil
}
