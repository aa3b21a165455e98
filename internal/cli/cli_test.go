package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExtractAndApplyCommands(t *testing.T) {
	chdir(t, t.TempDir())
	game := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(game, "text.dat"), []byte("1=Hello\n"), 0o644))

	_, err := run(t, "--game-dir", game, "--log-level", "error", "extract")
	require.NoError(t, err)

	doc := filepath.Join(game, "translation", "text.dat.json")
	data, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"original": "Hello"`)

	patched := bytes.Replace(data, []byte(`"translated": ""`), []byte(`"translated": "Hola"`), 1)
	require.NoError(t, os.WriteFile(doc, patched, 0o644))

	_, err = run(t, "--game-dir", game, "--log-level", "error", "apply", "text.dat")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(game, "text.dat"))
	require.NoError(t, err)
	assert.Equal(t, "1=Hola\n", string(got))
	assert.FileExists(t, filepath.Join(game, "text.dat.bak"))
}

func TestBatchFailuresReturnError(t *testing.T) {
	chdir(t, t.TempDir())
	game := t.TempDir()

	_, err := run(t, "--game-dir", game, "--log-level", "error", "extract", "text.dat")
	assert.ErrorContains(t, err, "1 of 1 files failed")
}

func TestInvalidLogLevel(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := run(t, "--game-dir", t.TempDir(), "--log-level", "loud", "extract")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestGlossaryImportRequiresNeo4j(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NEO4J_URI", "")
	_, err := run(t, "glossary", "import", "terms.tsv")
	assert.ErrorContains(t, err, "NEO4J_URI")
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores the previous one when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
