package parser

import (
	"regexp"
	"strings"
	"unicode"

	"gamedat-translator/internal/textutil"
)

// section is one header and the body text up to the next header.
type section struct {
	Header string
	Body   string
}

// segmented is content split by a header grammar into explicit records.
// Joining Prefix and every Header+Body reproduces the input exactly.
type segmented struct {
	Prefix   string
	Sections []section
}

// segment splits content at every match of header. Parse and apply of all
// sectioned formats go through here so both directions see the same
// sections.
func segment(header *regexp.Regexp, content string) (*segmented, error) {
	locs := header.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return nil, ErrFormatMismatch
	}

	seg := &segmented{
		Prefix:   content[:locs[0][0]],
		Sections: make([]section, 0, len(locs)),
	}
	for i, loc := range locs {
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		seg.Sections = append(seg.Sections, section{
			Header: content[loc[0]:loc[1]],
			Body:   content[loc[1]:end],
		})
	}
	return seg, nil
}

func (s *segmented) String() string {
	var sb strings.Builder
	sb.WriteString(s.Prefix)
	for _, sec := range s.Sections {
		sb.WriteString(sec.Header)
		sb.WriteString(sec.Body)
	}
	return sb.String()
}

// headerKey derives a section key from the first line of its header.
func headerKey(header string) string {
	first, _, _ := strings.Cut(header, "\n")
	return textutil.CleanKey(first)
}

// body splits a section body into surrounding whitespace and core text.
// Apply only ever rewrites Core.
type body struct {
	Lead  string
	Core  string
	Trail string
}

func splitBody(raw string) body {
	rest := strings.TrimLeftFunc(raw, unicode.IsSpace)
	core := strings.TrimRightFunc(rest, unicode.IsSpace)
	lead := len(raw) - len(rest)
	return body{
		Lead:  raw[:lead],
		Core:  core,
		Trail: raw[lead+len(core):],
	}
}

func (b body) String() string {
	return b.Lead + b.Core + b.Trail
}

// lines splits Core on any line ending, the same way text sees it.
func (b body) lines() []string {
	if b.Core == "" {
		return nil
	}
	return strings.Split(textutil.NormalizeNewlines(b.Core), "\n")
}

// text returns Core with normalized line endings and invalid bytes dropped.
func (b body) text() string {
	return textutil.Clean(textutil.NormalizeNewlines(b.Core))
}

// lineEnding picks the line ending used by a section, preferring its body.
func lineEnding(sec section) string {
	if strings.Contains(sec.Body, "\r\n") {
		return "\r\n"
	}
	if strings.Contains(sec.Body, "\r") && !strings.Contains(sec.Body, "\n") {
		return "\r"
	}
	if !strings.Contains(sec.Body, "\n") && strings.HasSuffix(sec.Header, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// splitText splits a translation into lines.
func splitText(s string) []string {
	return strings.Split(textutil.NormalizeNewlines(s), "\n")
}

// singleLine flattens a translation that must fit on one line.
func singleLine(s string) (string, bool) {
	if !strings.ContainsAny(s, "\r\n") {
		return s, false
	}
	return strings.Join(strings.Fields(textutil.NormalizeNewlines(s)), " "), true
}

// indentOf returns the leading blanks of a line.
func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
