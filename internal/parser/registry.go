package parser

import (
	"regexp"
	"strings"
)

// Registry dispatches game files to their codec.
type Registry struct {
	codecs []Codec
}

// NewRegistry creates a registry holding the given codecs, consulted in order.
func NewRegistry(codecs ...Codec) *Registry {
	return &Registry{codecs: codecs}
}

// Default returns a registry with the six game file codecs.
func Default() *Registry {
	return NewRegistry(
		NewKVCodec(),
		NewDescCodec(),
		NewTechCodec(),
		NewItemCodec(),
		NewSystemCodec(),
		NewTutorialCodec(),
	)
}

// Register appends a codec.
func (r *Registry) Register(c Codec) {
	r.codecs = append(r.codecs, c)
}

// Codecs returns the registered codecs in dispatch order.
func (r *Registry) Codecs() []Codec {
	return append([]Codec(nil), r.codecs...)
}

// ForFile returns the first codec whose file name marker matches name.
func (r *Registry) ForFile(name string) (Codec, bool) {
	for _, c := range r.codecs {
		if c.Matches(name) {
			return c, true
		}
	}
	return nil, false
}

// ForFormat returns the codec for a document file type.
func (r *Registry) ForFormat(format string) (Codec, bool) {
	for _, c := range r.codecs {
		if c.Format() == format {
			return c, true
		}
	}
	return nil, false
}

// Resolve picks the codec for a file, by name first and then by the
// document's recorded file type.
func (r *Registry) Resolve(name, format string) (Codec, bool) {
	if c, ok := r.ForFile(name); ok {
		return c, true
	}
	if format == "" {
		return nil, false
	}
	return r.ForFormat(format)
}

// detectPatterns are tried in order against each of the first lines.
var detectPatterns = []struct {
	format  string
	pattern *regexp.Regexp
}{
	{"text", regexp.MustCompile(`^\d+=`)},
	{"item", regexp.MustCompile(`^\+Item`)},
	{"desc", regexp.MustCompile(`^\+Desc=`)},
	{"tech", regexp.MustCompile(`^\+[A-Za-z]`)},
	{"system", regexp.MustCompile(`^-?\d+\s*$|^[A-Za-z ]+:`)},
}

const detectLines = 10

// Detect sniffs the format of content from its first lines. Tutorial files
// are recognized by their indicator lines before the per-line patterns run,
// since their headers also look like system headers.
func (r *Registry) Detect(content string) (Codec, bool) {
	lines := strings.Split(content, "\n")
	if len(lines) > detectLines {
		lines = lines[:detectLines]
	}
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}

	for _, line := range lines {
		if isControlLine(strings.TrimSpace(line)) {
			return r.ForFormat("tutorial")
		}
	}

	for _, line := range lines {
		for _, dp := range detectPatterns {
			if dp.pattern.MatchString(line) {
				return r.ForFormat(dp.format)
			}
		}
	}
	return nil, false
}
