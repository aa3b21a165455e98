package parser

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"gamedat-translator/internal/entry"
	"gamedat-translator/internal/textutil"
)

var tutorialHeader = regexp.MustCompile(
	`(?m)^-\d+[ \t]*\r?\n\d+[ \t]*\r?\n(?:Indicators=\d[ \t]*\r?\n)?(?:WaitEnter=\d[ \t]*\r?\n)?`)

// TutorialCodec handles traintext.sw. Each section's text lines are
// flattened into one entry; apply wraps the translation back onto the
// section's text lines.
type TutorialCodec struct{}

func NewTutorialCodec() *TutorialCodec { return &TutorialCodec{} }

func (c *TutorialCodec) Format() string   { return "tutorial" }
func (c *TutorialCodec) Filename() string { return "traintext.sw" }

func (c *TutorialCodec) Matches(filename string) bool {
	return strings.Contains(strings.ToLower(filepath.Base(filename)), c.Filename())
}

type tutorialPart struct {
	sec   int
	body  body
	eol   string
	lines []string
	text  []int
	key   string
}

func isControlLine(line string) bool {
	return strings.HasPrefix(line, "Indicators=") || strings.HasPrefix(line, "WaitEnter=")
}

func scanTutorial(content string) (*segmented, []*tutorialPart, error) {
	seg, err := segment(tutorialHeader, content)
	if err != nil {
		return nil, nil, err
	}

	var parts []*tutorialPart
	for i, sec := range seg.Sections {
		b := splitBody(sec.Body)
		eol := lineEnding(sec)
		part := &tutorialPart{sec: i, body: b, eol: eol, lines: b.lines()}

		for j, line := range part.lines {
			line = strings.TrimSpace(line)
			if line == "" || isControlLine(line) {
				continue
			}
			part.text = append(part.text, j)
		}
		if len(part.text) == 0 {
			continue
		}

		part.key = fmt.Sprintf("train_%d", len(parts))
		parts = append(parts, part)
	}

	return seg, parts, nil
}

func (c *TutorialCodec) Parse(content string) ([]entry.Entry, error) {
	_, parts, err := scanTutorial(content)
	if err != nil {
		return nil, fmt.Errorf("parse tutorial: %w", err)
	}

	entries := make([]entry.Entry, 0, len(parts))
	for _, p := range parts {
		words := make([]string, 0, len(p.text))
		for _, j := range p.text {
			words = append(words, textutil.Clean(strings.TrimSpace(p.lines[j])))
		}
		entries = append(entries, entry.Entry{
			Key:      p.key,
			Original: strings.Join(words, " "),
			Type:     entry.TypeTutorial,
		})
	}
	return entries, nil
}

func (c *TutorialCodec) Apply(content string, dict entry.Dictionary) (*Patch, error) {
	seg, parts, err := scanTutorial(content)
	if err != nil {
		return nil, fmt.Errorf("apply tutorial: %w", err)
	}

	patch := &Patch{}
	for _, p := range parts {
		t, ok := dict[p.key]
		if !ok || t.Text == "" {
			continue
		}

		widths := make([]int, 0, len(p.text))
		for _, j := range p.text {
			widths = append(widths, textutil.RuneLen(strings.TrimSpace(p.lines[j])))
		}
		wrapped := wrapLines(t.Text, widths)
		if len(wrapped) == 0 {
			continue
		}

		slot := make(map[int]int, len(p.text))
		for k, j := range p.text {
			slot[j] = k
		}
		lines := make([]string, 0, len(p.lines))
		for j, line := range p.lines {
			k, isText := slot[j]
			if !isText {
				lines = append(lines, line)
				continue
			}
			if k < len(wrapped) {
				lines = append(lines, indentOf(line)+wrapped[k])
			}
		}

		p.body.Core = strings.Join(lines, p.eol)
		seg.Sections[p.sec].Body = p.body.String()
		patch.Replaced++
	}

	patch.Content = seg.String()
	return patch, nil
}

// wrapLines word-wraps text onto at most len(widths) lines. The wrap width
// is the longest original line, widened when the text would not otherwise
// fit; anything left over is joined onto the last line.
func wrapLines(text string, widths []int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(widths) <= 1 {
		return []string{strings.Join(words, " ")}
	}

	width := 0
	for _, w := range widths {
		width = max(width, w)
	}
	n := len(widths)
	total := textutil.RuneLen(strings.Join(words, " "))
	width = max(width, (total+n-1)/n)

	var lines []string
	current := words[0]
	for _, w := range words[1:] {
		if textutil.RuneLen(current)+1+textutil.RuneLen(w) <= width {
			current += " " + w
			continue
		}
		lines = append(lines, current)
		current = w
	}
	lines = append(lines, current)

	if len(lines) > n {
		tail := strings.Join(lines[n-1:], " ")
		lines = append(lines[:n-1], tail)
	}
	return lines
}
