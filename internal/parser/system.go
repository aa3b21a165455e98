package parser

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"gamedat-translator/internal/entry"
	"gamedat-translator/internal/textutil"
)

const (
	systemMarker = "System Information:"
	alertMarker  = "Alerts:"
)

var systemHeader = regexp.MustCompile(`(?m)^-?\d+[ \t]*\r?\n\d+[ \t]*\r?\n`)

// SystemCodec handles systemdata.dat: sections behind a two-line numeric
// header. A section whose first line carries the system marker yields a
// name entry and an info entry; any other section yields one entry.
type SystemCodec struct{}

func NewSystemCodec() *SystemCodec { return &SystemCodec{} }

func (c *SystemCodec) Format() string   { return "system" }
func (c *SystemCodec) Filename() string { return "systemdata.dat" }

func (c *SystemCodec) Matches(filename string) bool {
	return strings.Contains(strings.ToLower(filepath.Base(filename)), c.Filename())
}

// systemPart is one non-empty section with its derived keys.
type systemPart struct {
	sec   int
	body  body
	eol   string
	lines []string
	// n is the number of entries emitted before this section.
	n     int
	named bool
	name  string
	// before and after are the trimmed name text on each side of the
	// marker, as offsets into lines[0].
	before, after span
	// info indexes the lines making up the info entry.
	info []int
}

// span is a half-open byte range of a line; empty when start == end.
type span struct{ start, end int }

func (s span) empty() bool { return s.start == s.end }

// trimmedSpan returns the range of line[from:to] without surrounding blanks.
func trimmedSpan(line string, from, to int) span {
	part := line[from:to]
	lead := len(part) - len(strings.TrimLeft(part, " \t"))
	core := strings.TrimRight(part[lead:], " \t")
	return span{start: from + lead, end: from + lead + len(core)}
}

func (p *systemPart) nameKey() string  { return fmt.Sprintf("system_%d_name", p.n) }
func (p *systemPart) infoKey() string  { return fmt.Sprintf("system_%d_info", p.n) }
func (p *systemPart) otherKey() string { return fmt.Sprintf("system_%d", p.n) }

// scanSystem segments content and derives keys exactly once for both
// parse and apply.
func scanSystem(content string) (*segmented, []*systemPart, error) {
	seg, err := segment(systemHeader, content)
	if err != nil {
		return nil, nil, err
	}

	var parts []*systemPart
	emitted := 0
	for i, sec := range seg.Sections {
		b := splitBody(sec.Body)
		if b.Core == "" {
			continue
		}

		eol := lineEnding(sec)
		part := &systemPart{
			sec:   i,
			body:  b,
			eol:   eol,
			lines: b.lines(),
			n:     emitted,
		}

		first := part.lines[0]
		if m := strings.Index(first, systemMarker); m >= 0 {
			part.before = trimmedSpan(first, 0, m)
			part.after = trimmedSpan(first, m+len(systemMarker), len(first))
			part.named = !part.before.empty() || !part.after.empty()
		}
		if part.named {
			var words []string
			for _, sp := range []span{part.before, part.after} {
				if !sp.empty() {
					words = append(words, first[sp.start:sp.end])
				}
			}
			part.name = strings.Join(words, " ")
			for j := 1; j < len(part.lines); j++ {
				line := strings.TrimSpace(part.lines[j])
				if line != "" && !strings.HasPrefix(line, alertMarker) {
					part.info = append(part.info, j)
				}
			}
			emitted++
			if len(part.info) > 0 {
				emitted++
			}
		} else {
			emitted++
		}

		parts = append(parts, part)
	}

	return seg, parts, nil
}

func (c *SystemCodec) Parse(content string) ([]entry.Entry, error) {
	_, parts, err := scanSystem(content)
	if err != nil {
		return nil, fmt.Errorf("parse system: %w", err)
	}

	var entries []entry.Entry
	for _, p := range parts {
		if !p.named {
			entries = append(entries, entry.Entry{
				Key:      p.otherKey(),
				Original: p.body.text(),
				Type:     entry.TypeSystemOther,
			})
			continue
		}

		entries = append(entries, entry.Entry{
			Key:      p.nameKey(),
			Original: textutil.Clean(p.name),
			Type:     entry.TypeSystemName,
		})

		if len(p.info) == 0 {
			continue
		}
		info := make([]string, 0, len(p.info))
		for _, j := range p.info {
			info = append(info, textutil.Clean(strings.TrimSpace(p.lines[j])))
		}
		entries = append(entries, entry.Entry{
			Key:      p.infoKey(),
			Original: strings.Join(info, "\n"),
			Type:     entry.TypeSystemInfo,
		})
	}

	return entries, nil
}

func (c *SystemCodec) Apply(content string, dict entry.Dictionary) (*Patch, error) {
	seg, parts, err := scanSystem(content)
	if err != nil {
		return nil, fmt.Errorf("apply system: %w", err)
	}

	patch := &Patch{}
	for _, p := range parts {
		lines := p.lines
		changed := false

		if !p.named {
			t, ok := dict[p.otherKey()]
			if !ok || t.Text == "" {
				continue
			}
			lines = splitText(t.Text)
			changed = true
			patch.Replaced++
		} else {
			if t, ok := dict[p.nameKey()]; ok && t.Text != "" {
				name, flattened := singleLine(t.Text)
				if flattened {
					patch.Warnings = append(patch.Warnings,
						fmt.Sprintf("%s: line breaks in translation replaced by spaces", p.nameKey()))
				}
				lines = append([]string(nil), lines...)
				lines[0] = replaceName(lines[0], p.before, p.after, name)
				changed = true
				patch.Replaced++
			}
			if t, ok := dict[p.infoKey()]; ok && t.Text != "" && len(p.info) > 0 {
				lines = replaceInfo(lines, p.info, splitText(t.Text))
				changed = true
				patch.Replaced++
			}
		}

		if !changed {
			continue
		}
		p.body.Core = strings.Join(lines, p.eol)
		seg.Sections[p.sec].Body = p.body.String()
	}

	patch.Content = seg.String()
	return patch, nil
}

// replaceName swaps the system name on the marker line, keeping the marker
// and the surrounding spacing. A name split around the marker is moved
// after it.
func replaceName(line string, before, after span, translated string) string {
	if after.empty() {
		return line[:before.start] + translated + line[before.end:]
	}
	head := line[:after.start]
	if !before.empty() {
		head = line[:before.start] + strings.TrimLeft(line[before.end:after.start], " \t")
	}
	return head + translated + line[after.end:]
}

// replaceInfo writes translated lines over the info lines in order. Alert
// and blank lines keep their place. Surplus translated lines follow the
// last info line; surplus info lines are dropped.
func replaceInfo(lines []string, info []int, translated []string) []string {
	slot := make(map[int]int, len(info))
	for k, j := range info {
		slot[j] = k
	}
	last := len(info) - 1

	out := make([]string, 0, len(lines)+len(translated))
	for j, line := range lines {
		k, isInfo := slot[j]
		if !isInfo {
			out = append(out, line)
			continue
		}
		indent := indentOf(line)
		switch {
		case k < last && k < len(translated):
			out = append(out, indent+translated[k])
		case k == last:
			for _, tl := range translated[min(k, len(translated)):] {
				out = append(out, indent+tl)
			}
		}
	}
	return out
}
