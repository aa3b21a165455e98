package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gamedat-translator/internal/entry"
	"gamedat-translator/internal/filewalker"
	"gamedat-translator/internal/parser"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)

type translatorFunc func(ctx context.Context, text, sourceLang, targetLang string) (string, error)

func (f translatorFunc) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return f(ctx, text, sourceLang, targetLang)
}

var errQuota = errors.New("quota exceeded")

// prefixTranslator prefixes every text with the target language and fails
// on texts containing "FAIL".
func prefixTranslator() translatorFunc {
	return func(_ context.Context, text, _, targetLang string) (string, error) {
		if strings.Contains(text, "FAIL") {
			return "", errQuota
		}
		return strings.ToUpper(targetLang) + ":" + text, nil
	}
}

type recordingObserver struct {
	started []string
	entries int
	done    []string
}

func (o *recordingObserver) FileStarted(name string, _ int) { o.started = append(o.started, name) }
func (o *recordingObserver) EntryDone(string, bool)         { o.entries++ }
func (o *recordingObserver) FileDone(name string, _ error)  { o.done = append(o.done, name) }

func newPipeline(t *testing.T, opts ...Option) (*Pipeline, filewalker.Layout) {
	t.Helper()
	layout := filewalker.NewLayout(t.TempDir(), "", "")
	opts = append([]Option{WithClock(func() time.Time { return fixedTime })}, opts...)
	return New(layout, zerolog.Nop(), opts...), layout
}

func writeGameFile(t *testing.T, l filewalker.Layout, name, content string) {
	t.Helper()
	path := l.SourcePath(name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestExtract(t *testing.T) {
	p, l := newPipeline(t)
	writeGameFile(t, l, "text.dat", "1=Hello\n2=<icon>\n3=Bye\n")

	res, err := p.Extract(context.Background(), "text.dat")
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Equal(t, 2, res.Entries)

	set, err := entry.Load(l.DocumentPath("text.dat"))
	require.NoError(t, err)
	assert.Equal(t, entry.Metadata{
		FileType:       "text",
		SourceFile:     "text.dat",
		ExtractionDate: "2024-05-06 07:08:09",
	}, set.Metadata)
	assert.Equal(t, []entry.Entry{
		{Key: "1", Original: "Hello", Type: entry.TypeText},
		{Key: "3", Original: "Bye", Type: entry.TypeText},
	}, set.Entries)
}

func TestExtractErrors(t *testing.T) {
	p, l := newPipeline(t)

	_, err := p.Extract(context.Background(), "text.dat")
	assert.ErrorIs(t, err, ErrFileNotFound)

	writeGameFile(t, l, "itemdata.dat", "garbage\n")
	_, err = p.Extract(context.Background(), "itemdata.dat")
	assert.ErrorIs(t, err, parser.ErrFormatMismatch)

	writeGameFile(t, l, "notes.bin", "nothing to see")
	_, err = p.Extract(context.Background(), "notes.bin")
	assert.ErrorIs(t, err, parser.ErrFormatMismatch)
}

func TestExtractWithoutEntriesWritesNothing(t *testing.T) {
	p, l := newPipeline(t)
	writeGameFile(t, l, "text.dat", "1=<icon>\n2=\n")

	res, err := p.Extract(context.Background(), "text.dat")
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.NoFileExists(t, l.DocumentPath("text.dat"))
}

func TestExtractDetectsUnknownFileNames(t *testing.T) {
	p, l := newPipeline(t)
	writeGameFile(t, l, "custom.txt", "+Item001\nLines=1\nSword\n")

	_, err := p.Extract(context.Background(), "custom.txt")
	require.NoError(t, err)

	set, err := entry.Load(l.DocumentPath("custom.txt"))
	require.NoError(t, err)
	assert.Equal(t, "item", set.Metadata.FileType)

	set.Entries[0].Translated = "Espada"
	require.NoError(t, entry.Save(l.DocumentPath("custom.txt"), set))

	_, err = p.Apply(context.Background(), "custom.txt")
	require.NoError(t, err)
	assert.Equal(t, "+Item001\nLines=1\nEspada\n", readFile(t, l.SourcePath("custom.txt")))
}

func TestApplyKeepsPristineBackup(t *testing.T) {
	p, l := newPipeline(t)
	original := "HELLO=Hi there\r\nBYE=Bye\r\n"
	writeGameFile(t, l, "text.dat", original)

	_, err := p.Extract(context.Background(), "text.dat")
	require.NoError(t, err)

	edit := func(translated string) {
		set, err := entry.Load(l.DocumentPath("text.dat"))
		require.NoError(t, err)
		set.Entries[0].Translated = translated
		require.NoError(t, entry.Save(l.DocumentPath("text.dat"), set))
	}

	edit("Hola")
	res, err := p.Apply(context.Background(), "text.dat")
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Equal(t, 1, res.Replaced)
	assert.Equal(t, "HELLO=Hola\r\nBYE=Bye\r\n", readFile(t, l.SourcePath("text.dat")))
	assert.Equal(t, original, readFile(t, l.BackupPath("text.dat")))

	edit("Buenas")
	_, err = p.Apply(context.Background(), "text.dat")
	require.NoError(t, err)
	assert.Equal(t, "HELLO=Buenas\r\nBYE=Bye\r\n", readFile(t, l.SourcePath("text.dat")))
	assert.Equal(t, original, readFile(t, l.BackupPath("text.dat")), "backup is never overwritten")
}

func TestApplyNoOps(t *testing.T) {
	p, l := newPipeline(t)
	writeGameFile(t, l, "text.dat", "1=Hello\n")

	_, err := p.Extract(context.Background(), "text.dat")
	require.NoError(t, err)

	res, err := p.Apply(context.Background(), "text.dat")
	require.NoError(t, err, "empty dictionary")
	assert.False(t, res.Written)
	assert.NoFileExists(t, l.BackupPath("text.dat"))

	set, err := entry.Load(l.DocumentPath("text.dat"))
	require.NoError(t, err)
	set.Entries[0].Translated = "Hello"
	require.NoError(t, entry.Save(l.DocumentPath("text.dat"), set))

	res, err = p.Apply(context.Background(), "text.dat")
	require.NoError(t, err, "translation equal to the original")
	assert.False(t, res.Written)
	assert.NoFileExists(t, l.BackupPath("text.dat"))
}

func TestApplyErrors(t *testing.T) {
	p, l := newPipeline(t)

	_, err := p.Apply(context.Background(), "text.dat")
	assert.ErrorIs(t, err, ErrFileNotFound, "missing document")

	require.NoError(t, os.MkdirAll(l.TranslationDir, 0o755))
	require.NoError(t, os.WriteFile(l.DocumentPath("text.dat"), []byte(`{"entries": {}}`), 0o644))
	_, err = p.Apply(context.Background(), "text.dat")
	assert.ErrorIs(t, err, ErrFileNotFound, "missing game file")

	writeGameFile(t, l, "text.dat", "1=Hello\n")
	_, err = p.Apply(context.Background(), "text.dat")
	assert.ErrorIs(t, err, entry.ErrMalformedDocument)
}

func TestApplyWriteFailureLeavesSourceIntact(t *testing.T) {
	p, l := newPipeline(t)
	writeGameFile(t, l, "text.dat", "1=Hello\n")

	set := entry.NewSet("text", "text.dat", fixedTime, []entry.Entry{
		{Key: "1", Original: "Hello", Translated: "Hola", Type: entry.TypeText},
	})
	require.NoError(t, os.MkdirAll(l.TranslationDir, 0o755))
	require.NoError(t, entry.Save(l.DocumentPath("text.dat"), set))

	// A directory where the backup should go makes the backup fail.
	require.NoError(t, os.MkdirAll(filepath.Join(l.BackupPath("text.dat"), "blocker"), 0o755))

	_, err := p.Apply(context.Background(), "text.dat")
	assert.ErrorIs(t, err, ErrWriteFailure)
	assert.Equal(t, "1=Hello\n", readFile(t, l.SourcePath("text.dat")))
}

func TestTranslateAll(t *testing.T) {
	obs := &recordingObserver{}
	p, l := newPipeline(t, WithTranslator(prefixTranslator()), WithObserver(obs))

	writeGameFile(t, l, "text.dat", "1=Hello\n2=FAIL here\n3=Bye\n")
	writeGameFile(t, l, "techdata.dat", "+Fireball\nLines=2\nFireball\nBurns enemies.\n+Shield\nLines=1\nShield\n")
	for _, name := range []string{"text.dat", "techdata.dat"} {
		_, err := p.Extract(context.Background(), name)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(l.DocumentPath("broken.dat"), []byte("{"), 0o644))

	sum, err := p.TranslateAll(context.Background(), "en", "es")
	require.NoError(t, err)
	require.Len(t, sum.Files, 3)
	assert.Equal(t, 1, sum.Failed())
	assert.ErrorIs(t, sum.Files[0].Err, entry.ErrMalformedDocument)

	text, err := entry.Load(l.DocumentPath("text.dat"))
	require.NoError(t, err)
	assert.Equal(t, "ES:Hello", text.Entries[0].Translated)
	assert.Empty(t, text.Entries[1].Translated)
	assert.Equal(t, "ES:Bye", text.Entries[2].Translated)

	assert.Equal(t, 2, sum.Files[2].Translated)
	assert.Equal(t, 1, sum.Files[2].Failed)
	assert.Equal(t, []string{"techdata.dat", "text.dat"}, obs.started)
	assert.Equal(t, obs.started, obs.done)
	assert.Equal(t, 5, obs.entries)

	_, err = p.Apply(context.Background(), "techdata.dat")
	require.NoError(t, err)
	assert.Equal(t, "+Fireball\nLines=2\nES:Fireball\nES:Burns enemies.\n+Shield\nLines=1\nES:Shield\n",
		readFile(t, l.SourcePath("techdata.dat")))

	sum, err = p.TranslateAll(context.Background(), "en", "es")
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Files[1].Translated, "fully translated documents are left alone")
	assert.Equal(t, 1, sum.Files[2].Failed, "failed entries are retried on the next pass")
}

func TestTranslateAllCancelSavesProgress(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	tr := translatorFunc(func(ctx context.Context, text, _, _ string) (string, error) {
		calls++
		if calls == 1 {
			return "uno", nil
		}
		cancel()
		return "", ctx.Err()
	})
	p, l := newPipeline(t, WithTranslator(tr))
	writeGameFile(t, l, "text.dat", "1=One\n2=Two\n3=Three\n")
	writeGameFile(t, l, "traintext.sw", "-1\n1\nHello\n")
	for _, name := range []string{"text.dat", "traintext.sw"} {
		_, err := p.Extract(context.Background(), name)
		require.NoError(t, err)
	}

	sum, err := p.TranslateAll(ctx, "en", "es")
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, sum.Files, 1, "the pass stops at the cancelled document")
	assert.Equal(t, 2, calls)

	text, err := entry.Load(l.DocumentPath("text.dat"))
	require.NoError(t, err)
	assert.Equal(t, "uno", text.Entries[0].Translated)
	assert.Equal(t, 2, text.Pending())

	tutorial, err := entry.Load(l.DocumentPath("traintext.sw"))
	require.NoError(t, err)
	assert.Equal(t, 1, tutorial.Pending())
}

func TestTranslateAllRequiresTranslator(t *testing.T) {
	p, _ := newPipeline(t)
	_, err := p.TranslateAll(context.Background(), "en", "es")
	assert.Error(t, err)
}

func TestExtractAllAndApplyAll(t *testing.T) {
	p, l := newPipeline(t)
	writeGameFile(t, l, "text.dat", "1=Hello\n")
	writeGameFile(t, l, "itemdata.dat", "not an item file\n")
	writeGameFile(t, l, "readme.txt", "ignored")

	sum, err := p.ExtractAll(context.Background())
	require.NoError(t, err)
	require.Len(t, sum.Files, 2)
	assert.Equal(t, 1, sum.Failed())
	assert.Equal(t, 1, sum.Written())
	assert.ErrorIs(t, sum.Files[0].Err, parser.ErrFormatMismatch)

	set, err := entry.Load(l.DocumentPath("text.dat"))
	require.NoError(t, err)
	set.Entries[0].Translated = "Hola"
	require.NoError(t, entry.Save(l.DocumentPath("text.dat"), set))

	sum, err = p.ApplyAll(context.Background())
	require.NoError(t, err)
	require.Len(t, sum.Files, 1)
	assert.Equal(t, 0, sum.Failed())
	assert.Equal(t, "1=Hola\n", readFile(t, l.SourcePath("text.dat")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.ApplyAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
