// Package filewalker knows where game files, intermediate documents and
// backups live, and discovers the files the codecs can handle.
package filewalker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gamedat-translator/internal/parser"

	"github.com/rs/zerolog"
)

// DocumentExt is the extension of intermediate documents.
const DocumentExt = ".json"

// DefaultBackupSuffix is appended to a game file name for its backup.
const DefaultBackupSuffix = ".bak"

// Layout maps a game file name to its source, document and backup paths.
// Names are slash-separated paths relative to GameDir.
type Layout struct {
	GameDir        string
	TranslationDir string
	BackupSuffix   string
}

// NewLayout fills in defaults: documents go to <gameDir>/translation and
// backups use DefaultBackupSuffix.
func NewLayout(gameDir, translationDir, backupSuffix string) Layout {
	if translationDir == "" {
		translationDir = filepath.Join(gameDir, "translation")
	}
	if backupSuffix == "" {
		backupSuffix = DefaultBackupSuffix
	}
	return Layout{
		GameDir:        gameDir,
		TranslationDir: translationDir,
		BackupSuffix:   backupSuffix,
	}
}

func (l Layout) SourcePath(name string) string {
	return filepath.Join(l.GameDir, filepath.FromSlash(name))
}

func (l Layout) DocumentPath(name string) string {
	return filepath.Join(l.TranslationDir, filepath.FromSlash(name)+DocumentExt)
}

func (l Layout) BackupPath(name string) string {
	return l.SourcePath(name) + l.BackupSuffix
}

// FileEntry is a discovered game file and the codec that handles it.
type FileEntry struct {
	Name  string
	Path  string
	Codec parser.Codec
}

// Walker discovers game files and documents.
type Walker struct {
	registry *parser.Registry
	log      zerolog.Logger
}

func NewWalker(registry *parser.Registry, log zerolog.Logger) *Walker {
	return &Walker{registry: registry, log: log}
}

// SourceFiles returns the game files under l.GameDir that a codec claims by
// name, sorted by name. Backups and the translation directory are skipped.
func (w *Walker) SourceFiles(l Layout) ([]FileEntry, error) {
	root, err := checkDir(l.GameDir)
	if err != nil {
		return nil, err
	}
	skip, _ := filepath.Abs(l.TranslationDir)

	var entries []FileEntry
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if d.IsDir() {
			if path == skip && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, l.BackupSuffix) {
			return nil
		}

		c, ok := w.registry.ForFile(path)
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		entries = append(entries, FileEntry{
			Name:  filepath.ToSlash(rel),
			Path:  path,
			Codec: c,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk game directory: %w", err)
	}

	slices.SortFunc(entries, func(a, b FileEntry) int { return strings.Compare(a.Name, b.Name) })
	w.log.Debug().Int("count", len(entries)).Str("root", root).Msg("Discovered game files")
	return entries, nil
}

// Documents returns the names of the game files that have a document in
// l.TranslationDir, sorted. A missing translation directory yields none.
func (w *Walker) Documents(l Layout) ([]string, error) {
	root, err := filepath.Abs(l.TranslationDir)
	if err != nil {
		return nil, fmt.Errorf("resolve translation directory: %w", err)
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}
	if _, err := checkDir(root); err != nil {
		return nil, err
	}

	var names []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), DocumentExt) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		names = append(names, filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel))))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk translation directory: %w", err)
	}

	slices.Sort(names)
	return names, nil
}

func checkDir(dir string) (string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", root)
	}
	return root, nil
}
