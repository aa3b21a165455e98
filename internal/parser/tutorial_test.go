package parser

import (
	"testing"

	"gamedat-translator/internal/entry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tutorialContent = "-1\n10\nIndicators=1\nWaitEnter=1\n" +
	"Welcome pilot.\nPress the fire button\nto shoot.\n" +
	"-2\n5\nIndicators=0\n" +
	"Good luck.\n"

func TestTutorialParse(t *testing.T) {
	entries, err := NewTutorialCodec().Parse(tutorialContent)
	require.NoError(t, err)

	assert.Equal(t, []entry.Entry{
		{Key: "train_0", Original: "Welcome pilot. Press the fire button to shoot.", Type: entry.TypeTutorial},
		{Key: "train_1", Original: "Good luck.", Type: entry.TypeTutorial},
	}, entries)
}

func TestTutorialApplyWrapsToOriginalLines(t *testing.T) {
	patch, err := NewTutorialCodec().Apply(tutorialContent, entry.Dictionary{
		"train_0": {Text: "Bienvenido piloto. Pulsa el botón de disparo para disparar."},
	})
	require.NoError(t, err)

	want := "-1\n10\nIndicators=1\nWaitEnter=1\n" +
		"Bienvenido piloto.\nPulsa el botón de\ndisparo para disparar.\n" +
		"-2\n5\nIndicators=0\n" +
		"Good luck.\n"
	assert.Equal(t, want, patch.Content)
}

func TestTutorialApplyShorterTranslation(t *testing.T) {
	patch, err := NewTutorialCodec().Apply("-1\n1\nFirst line\nSecond line\n", entry.Dictionary{
		"train_0": {Text: "Hola"},
	})
	require.NoError(t, err)
	assert.Equal(t, "-1\n1\nHola\n", patch.Content)
}

func TestTutorialControlLinesInBody(t *testing.T) {
	c := NewTutorialCodec()
	content := "-3\n1\nHello\nWaitEnter=1\nworld\n"

	entries, err := c.Parse(content)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Hello world", entries[0].Original)

	patch, err := c.Apply(content, entry.Dictionary{"train_0": {Text: "Hola mundo"}})
	require.NoError(t, err)
	assert.Equal(t, "-3\n1\nHola\nWaitEnter=1\nmundo\n", patch.Content)
}

func TestWrapLines(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		widths []int
		want   []string
	}{
		{"empty", "   ", []int{10}, nil},
		{"single line", "one two three", []int{3}, []string{"one two three"}},
		{"fits", "aa bb cc dd", []int{5, 5}, []string{"aa bb", "cc dd"}},
		{"overflow joins last line", "a b c d e f", []int{1, 1}, []string{"a b c", "d e f"}},
		{"multibyte widths", "ñá ñá", []int{2, 2}, []string{"ñá", "ñá"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapLines(tt.text, tt.widths))
		})
	}
}
