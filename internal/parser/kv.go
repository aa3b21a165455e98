package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"gamedat-translator/internal/entry"
	"gamedat-translator/internal/textutil"
)

// tagMarker starts values that are placeholders rather than text.
const tagMarker = "<"

// KVCodec handles text.dat, one key=value entry per line.
type KVCodec struct{}

func NewKVCodec() *KVCodec { return &KVCodec{} }

func (c *KVCodec) Format() string   { return "text" }
func (c *KVCodec) Filename() string { return "text.dat" }

func (c *KVCodec) Matches(filename string) bool {
	return strings.Contains(strings.ToLower(filepath.Base(filename)), c.Filename())
}

func (c *KVCodec) Parse(content string) ([]entry.Entry, error) {
	var entries []entry.Entry
	sawPair := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			continue
		}
		sawPair = true

		key = textutil.CleanKey(key)
		value = textutil.Clean(strings.TrimSpace(value))
		if key == "" || !translatableValue(value) {
			continue
		}

		entries = append(entries, entry.Entry{
			Key:      key,
			Original: value,
			Type:     entry.TypeText,
		})
	}

	if !sawPair {
		return nil, fmt.Errorf("parse text: %w", ErrFormatMismatch)
	}
	return entries, nil
}

func (c *KVCodec) Apply(content string, dict entry.Dictionary) (*Patch, error) {
	var sb strings.Builder
	sb.Grow(len(content))

	patch := &Patch{}
	sawPair := false

	for _, raw := range strings.SplitAfter(content, "\n") {
		if raw == "" {
			continue
		}

		line, eol := cutLineEnding(raw)
		eq := strings.Index(line, "=")
		if eq < 0 {
			sb.WriteString(raw)
			continue
		}
		sawPair = true

		// Leading blanks and a byte order mark stay in place.
		prefix := line[:len(line)-len(strings.TrimLeft(line, " \t\ufeff"))]
		rawKey := strings.TrimSpace(line[len(prefix):eq])
		value := strings.TrimSpace(line[eq+1:])

		t, ok := dict[textutil.CleanKey(rawKey)]
		if !ok || t.Text == "" || !translatableValue(value) {
			sb.WriteString(raw)
			continue
		}

		text, flattened := singleLine(t.Text)
		if flattened {
			patch.Warnings = append(patch.Warnings,
				fmt.Sprintf("%s: line breaks in translation replaced by spaces", rawKey))
		}

		sb.WriteString(prefix)
		sb.WriteString(rawKey)
		sb.WriteString("=")
		sb.WriteString(text)
		sb.WriteString(eol)
		patch.Replaced++
	}

	if !sawPair {
		return nil, fmt.Errorf("apply text: %w", ErrFormatMismatch)
	}

	patch.Content = sb.String()
	return patch, nil
}

// translatableValue reports whether a trimmed value is text to extract.
func translatableValue(value string) bool {
	return value != "" && !strings.HasPrefix(value, tagMarker)
}

// cutLineEnding separates a line from its terminator.
func cutLineEnding(raw string) (string, string) {
	if strings.HasSuffix(raw, "\r\n") {
		return raw[:len(raw)-2], "\r\n"
	}
	if strings.HasSuffix(raw, "\n") {
		return raw[:len(raw)-1], "\n"
	}
	return raw, ""
}
