package pipeline

import (
	"context"
	"errors"
	"fmt"

	"gamedat-translator/internal/entry"
	"gamedat-translator/internal/textutil"
)

// ExtractAll extracts every game file a codec claims. Per-file failures are
// recorded in the summary; the returned error is reserved for failures to
// list the game directory and for cancellation.
func (p *Pipeline) ExtractAll(ctx context.Context) (*Summary, error) {
	files, err := p.walker.SourceFiles(p.layout)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return p.Run(ctx, names, p.Extract)
}

// ApplyAll applies every document in the translation directory.
func (p *Pipeline) ApplyAll(ctx context.Context) (*Summary, error) {
	names, err := p.walker.Documents(p.layout)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, names, p.Apply)
}

// Run applies op to each name, isolating failures per file.
func (p *Pipeline) Run(ctx context.Context, names []string, op func(context.Context, string) (*FileResult, error)) (*Summary, error) {
	sum := &Summary{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		p.observer.FileStarted(name, 1)
		res, err := op(ctx, name)
		if res == nil {
			res = &FileResult{Name: name}
		}
		res.Err = err
		if err != nil {
			p.log.Error().Err(err).Str("file", name).Msg("File failed")
		}
		p.observer.FileDone(name, err)
		sum.Files = append(sum.Files, *res)
	}
	return sum, nil
}

// TranslateAll fills the untranslated fields of every document through the
// translator. Failed entries stay empty and the pass moves on. Each
// document is saved once after all its entries were attempted; on
// cancellation the document in progress is saved before returning.
func (p *Pipeline) TranslateAll(ctx context.Context, sourceLang, targetLang string) (*Summary, error) {
	if p.translator == nil {
		return nil, errors.New("translate: no translator configured")
	}
	names, err := p.walker.Documents(p.layout)
	if err != nil {
		return nil, err
	}

	sum := &Summary{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		res, err := p.translateDocument(ctx, name, sourceLang, targetLang)
		res.Err = err
		sum.Files = append(sum.Files, *res)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return sum, ctxErr
		}
		if err != nil {
			p.log.Error().Err(err).Str("file", name).Msg("Translation of document failed")
		}
	}
	return sum, nil
}

func (p *Pipeline) translateDocument(ctx context.Context, name, sourceLang, targetLang string) (*FileResult, error) {
	res := &FileResult{Name: name}
	path := p.layout.DocumentPath(name)

	set, err := entry.Load(path)
	if err != nil {
		return res, err
	}
	res.Entries = len(set.Entries)

	pending := set.Pending()
	p.observer.FileStarted(name, pending)
	if pending == 0 {
		p.log.Info().Str("file", name).Msg("Document fully translated")
		p.observer.FileDone(name, nil)
		return res, nil
	}

	fileType := set.Metadata.FileType
	translate := func(src string, dst *string) bool {
		out, err := p.translator.Translate(ctx, src, sourceLang, targetLang)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			res.Failed++
			p.log.Warn().Err(err).
				Str("file", name).
				Str("text", textutil.Truncate(src, 40)).
				Msg("Translation failed")
			return true
		}
		*dst = out
		res.Translated++
		return true
	}

	for i := range set.Entries {
		e := &set.Entries[i]
		needText := e.Original != "" && e.Translated == ""
		needTitle := e.IsTech(fileType) && e.Title != "" && e.TranslatedTitle == ""
		if !needText && !needTitle {
			continue
		}

		if needTitle && !translate(e.Title, &e.TranslatedTitle) {
			break
		}
		if needText && !translate(e.Original, &e.Translated) {
			break
		}
		p.observer.EntryDone(name, e.Translated != "" || e.TranslatedTitle != "")
	}

	var saveErr error
	if res.Translated > 0 {
		if saveErr = p.saveDocument(name, set); saveErr == nil {
			res.Written = true
		}
	}
	p.observer.FileDone(name, saveErr)

	p.log.Info().
		Str("file", name).
		Int("translated", res.Translated).
		Int("failed", res.Failed).
		Msg("Translated document")

	if saveErr != nil {
		return res, fmt.Errorf("save %s: %w", name, saveErr)
	}
	return res, nil
}
