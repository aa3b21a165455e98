// Package glossary supplies preferred translations of game terms to the
// LLM providers.
package glossary

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// Term is a source-language term and its required translation.
type Term struct {
	Source   string
	Target   string
	Category string
	// Related lists the sources of terms this one is linked to.
	Related []string
}

// Glossary returns the terms occurring in a text.
type Glossary interface {
	Lookup(ctx context.Context, text string) ([]Term, error)
}

// Static is an in-memory glossary.
type Static struct {
	terms []Term
}

// NewStatic creates a glossary from terms. Later duplicates of a source
// replace earlier ones.
func NewStatic(terms []Term) *Static {
	byKey := make(map[string]int, len(terms))
	var out []Term
	for _, t := range terms {
		k := strings.ToLower(t.Source)
		if i, ok := byKey[k]; ok {
			out[i] = t
			continue
		}
		byKey[k] = len(out)
		out = append(out, t)
	}
	sortLongestFirst(out)
	return &Static{terms: out}
}

// Terms returns every term, longest source first.
func (s *Static) Terms() []Term {
	return slices.Clone(s.terms)
}

// Lookup returns the terms whose source occurs in text, ignoring case,
// longest source first.
func (s *Static) Lookup(_ context.Context, text string) ([]Term, error) {
	lower := strings.ToLower(text)
	var out []Term
	for _, t := range s.terms {
		if strings.Contains(lower, strings.ToLower(t.Source)) {
			out = append(out, t)
		}
	}
	return out, nil
}

func sortLongestFirst(terms []Term) {
	slices.SortStableFunc(terms, func(a, b Term) int {
		return len(b.Source) - len(a.Source)
	})
}

// ParseTSV reads tab-separated rows of source, target and optionally
// category and a comma-separated list of related sources. Blank lines and
// lines starting with # are ignored.
func ParseTSV(r io.Reader) ([]Term, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var terms []Term
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read glossary: %w", err)
		}
		if len(rec) < 2 {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("read glossary: line %d: want at least 2 columns, got %d", line, len(rec))
		}

		t := Term{
			Source: strings.TrimSpace(rec[0]),
			Target: strings.TrimSpace(rec[1]),
		}
		if t.Source == "" || t.Target == "" {
			continue
		}
		if len(rec) > 2 {
			t.Category = strings.TrimSpace(rec[2])
		}
		if len(rec) > 3 {
			for _, rel := range strings.Split(rec[3], ",") {
				if rel = strings.TrimSpace(rel); rel != "" {
					t.Related = append(t.Related, rel)
				}
			}
		}
		terms = append(terms, t)
	}
	return terms, nil
}

// LoadTSV reads a glossary file.
func LoadTSV(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open glossary: %w", err)
	}
	defer f.Close()

	terms, err := ParseTSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewStatic(terms), nil
}
