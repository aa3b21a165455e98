package parser

import (
	"errors"

	"gamedat-translator/internal/entry"
)

// ErrFormatMismatch is returned when content matches none of a codec's
// header grammar.
var ErrFormatMismatch = errors.New("content does not match format")

// Patch is the result of applying a dictionary to file content.
type Patch struct {
	// Content is the patched file content.
	Content string
	// Replaced counts the text spans that received a translation.
	Replaced int
	// Warnings describe replacements the format could not represent exactly.
	Warnings []string
}

// Changed reports whether the patch differs from the given original content.
func (p *Patch) Changed(original string) bool {
	return p.Content != original
}

// Codec is the parse/apply pair for one game file format.
type Codec interface {
	// Format returns the format name stored as the document's file type.
	Format() string
	// Filename returns the game file this codec is written for.
	Filename() string
	// Matches returns true if this codec handles the given file name.
	Matches(filename string) bool
	// Parse extracts translatable entries from file content, in file order.
	Parse(content string) ([]entry.Entry, error)
	// Apply rebuilds content with the translations in dict. Text without a
	// dictionary entry is copied through unchanged.
	Apply(content string, dict entry.Dictionary) (*Patch, error)
}
