// Package interpolation shields format placeholders and markup from the
// translation provider.
package interpolation

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Mapping ties a protected token to the placeholder standing in for it.
type Mapping struct {
	Original    string
	Placeholder string
}

type span struct {
	start, end int
}

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\{[a-zA-Z_][a-zA-Z0-9_]*\}`),         // ${value}
	regexp.MustCompile(`\{[0-9]+\}`),                           // {0}, {1}
	regexp.MustCompile(`%[-+0-9]*\.?[0-9]*[dsfieEgGxXoubcpq]`), // %d, %s, %2d
	regexp.MustCompile(`%%`),
	regexp.MustCompile(`</?[A-Za-z][A-Za-z0-9]*(?:[ =][^<>]*)?/?>`), // <icon>, </b>, <c=red>
}

// Protect replaces every placeholder and markup tag in text with a
// {{var_N}} token, numbered from 1 in text order.
func Protect(text string) (string, []Mapping) {
	var spans []span
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			spans = append(spans, span{loc[0], loc[1]})
		}
	}
	if len(spans) == 0 {
		return text, nil
	}

	// Earliest first; on a tie the longer match wins.
	slices.SortFunc(spans, func(a, b span) int {
		if a.start != b.start {
			return a.start - b.start
		}
		return (b.end - b.start) - (a.end - a.start)
	})

	var sb strings.Builder
	var mappings []Mapping
	last := 0
	for _, s := range spans {
		if s.start < last {
			continue
		}
		m := Mapping{
			Original:    text[s.start:s.end],
			Placeholder: fmt.Sprintf("{{var_%d}}", len(mappings)+1),
		}
		sb.WriteString(text[last:s.start])
		sb.WriteString(m.Placeholder)
		mappings = append(mappings, m)
		last = s.end
	}
	sb.WriteString(text[last:])

	return sb.String(), mappings
}

// Restore puts the original tokens back. It returns false if the
// translation lost any placeholder.
func Restore(translated string, mappings []Mapping) (string, bool) {
	result := translated
	complete := true
	for _, m := range mappings {
		if !strings.Contains(result, m.Placeholder) {
			complete = false
			continue
		}
		result = strings.Replace(result, m.Placeholder, m.Original, 1)
	}
	return result, complete
}
