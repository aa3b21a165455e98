package entry

import "strings"

// Translation is the replacement recorded for one key. Plain formats use
// Text; tech sections use Title and Description, each optional.
type Translation struct {
	Text        string
	Title       string
	Description string
}

// Structured reports whether t replaces the halves of a tech section
// independently.
func (t Translation) Structured() bool {
	return t.Title != "" || t.Description != ""
}

// Dictionary maps entry keys to their translations.
type Dictionary map[string]Translation

// BuildDictionary projects the translated entries of s into a lookup keyed
// by entry key. Entries without a key or without any translated text are
// skipped, so the applier never touches their file text.
//
// Keys may repeat. The first non-empty translation for a key wins; for tech
// entries the rule applies per field, so an entry supplying a title and a
// later one supplying a description merge into one Translation.
func BuildDictionary(s *Set) Dictionary {
	dict := make(Dictionary)
	if s == nil {
		return dict
	}

	for _, e := range s.Entries {
		key := strings.TrimSpace(e.Key)
		if key == "" {
			continue
		}
		translated := strings.TrimSpace(e.Translated)

		if !e.IsTech(s.Metadata.FileType) {
			if translated == "" {
				continue
			}
			if _, exists := dict[key]; !exists {
				dict[key] = Translation{Text: translated}
			}
			continue
		}

		title := strings.TrimSpace(e.TranslatedTitle)
		description := translated
		// A title-only section has nothing to describe, so its translation
		// is the title.
		if title == "" && strings.TrimSpace(e.Original) == "" && e.Title != "" {
			title, description = translated, ""
		}
		if title == "" && description == "" {
			continue
		}

		t := dict[key]
		if t.Title == "" {
			t.Title = title
		}
		if t.Description == "" {
			t.Description = description
		}
		dict[key] = t
	}

	return dict
}
