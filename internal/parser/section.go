package parser

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gamedat-translator/internal/entry"
)

var linesPattern = regexp.MustCompile(`Lines=(\d+)`)

// SectionCodec handles formats made of "+<Name>\nLines=<n>\n" sections
// followed by free text. Tech sections split their body into a title line
// and a description.
type SectionCodec struct {
	format    string
	filename  string
	entryType entry.Type
	header    *regexp.Regexp
	titled    bool
}

// NewDescCodec handles optionsdata.dat.
func NewDescCodec() *SectionCodec {
	return &SectionCodec{
		format:    "desc",
		filename:  "optionsdata.dat",
		entryType: entry.TypeDesc,
		header:    regexp.MustCompile(`(?m)^\+Desc=\d+[ \t]*\r?\nLines=\d+[ \t]*\r?\n`),
	}
}

// NewTechCodec handles techdata.dat.
func NewTechCodec() *SectionCodec {
	return &SectionCodec{
		format:    "tech",
		filename:  "techdata.dat",
		entryType: entry.TypeTech,
		header:    regexp.MustCompile(`(?m)^\+[A-Za-z0-9]+[ \t]*\r?\nLines=\d+[ \t]*\r?\n`),
		titled:    true,
	}
}

// NewItemCodec handles itemdata.dat.
func NewItemCodec() *SectionCodec {
	return &SectionCodec{
		format:    "item",
		filename:  "itemdata.dat",
		entryType: entry.TypeItem,
		header:    regexp.MustCompile(`(?m)^\+Item\d+[ \t]*\r?\nLines=\d+[ \t]*\r?\n`),
	}
}

func (c *SectionCodec) Format() string   { return c.format }
func (c *SectionCodec) Filename() string { return c.filename }

func (c *SectionCodec) Matches(filename string) bool {
	return strings.Contains(strings.ToLower(filepath.Base(filename)), c.filename)
}

func (c *SectionCodec) Parse(content string) ([]entry.Entry, error) {
	seg, err := segment(c.header, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.format, err)
	}

	var entries []entry.Entry
	for _, sec := range seg.Sections {
		b := splitBody(sec.Body)
		if b.Core == "" {
			continue
		}

		e := entry.Entry{
			Key:      headerKey(sec.Header),
			Original: b.text(),
			Type:     c.entryType,
		}
		if c.titled {
			title, description, _ := strings.Cut(e.Original, "\n")
			e.Title = title
			e.Original = description
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func (c *SectionCodec) Apply(content string, dict entry.Dictionary) (*Patch, error) {
	seg, err := segment(c.header, content)
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", c.format, err)
	}

	patch := &Patch{}
	for i, sec := range seg.Sections {
		key := headerKey(sec.Header)
		t, ok := dict[key]
		if !ok {
			continue
		}

		eol := lineEnding(sec)
		b := splitBody(sec.Body)
		lines := c.replaceLines(b.lines(), t)
		if lines == nil {
			continue
		}

		core := strings.Join(lines, eol)
		if b.Core == "" {
			// Empty body: the text needs its own line ending before
			// whatever followed the header.
			seg.Sections[i].Body = core + eol + b.Lead
		} else {
			b.Core = core
			seg.Sections[i].Body = b.String()
		}
		patch.Replaced++

		if declared, ok := declaredLines(sec.Header); ok && declared != len(lines) {
			patch.Warnings = append(patch.Warnings,
				fmt.Sprintf("%s: header declares %d lines, translation has %d", key, declared, len(lines)))
		}
	}

	patch.Content = seg.String()
	return patch, nil
}

// replaceLines returns the new body lines, or nil when t changes nothing.
func (c *SectionCodec) replaceLines(lines []string, t entry.Translation) []string {
	if !t.Structured() {
		if t.Text == "" {
			return nil
		}
		return splitText(t.Text)
	}

	out := append([]string(nil), lines...)
	if t.Title != "" {
		title, _ := singleLine(t.Title)
		if len(out) == 0 {
			out = []string{title}
		} else {
			out[0] = title
		}
	}
	if t.Description != "" {
		if len(out) == 0 {
			// No title line to keep; the description starts the body.
			return splitText(t.Description)
		}
		out = append(out[:1], splitText(t.Description)...)
	}
	return out
}

func declaredLines(header string) (int, bool) {
	m := linesPattern.FindStringSubmatch(header)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
