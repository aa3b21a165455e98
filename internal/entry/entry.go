package entry

import "time"

// Type classifies an Entry by the grammar element it was extracted from.
type Type string

const (
	TypeText        Type = "text"
	TypeDesc        Type = "desc"
	TypeTech        Type = "tech"
	TypeItem        Type = "item"
	TypeSystemName  Type = "system_name"
	TypeSystemInfo  Type = "system_info"
	TypeSystemOther Type = "system_other"
	TypeTutorial    Type = "tutorial"
)

// DateLayout is the layout of Metadata.ExtractionDate.
const DateLayout = "2006-01-02 15:04:05"

// Entry is one translatable unit extracted from a game file.
type Entry struct {
	// Key is derived from a section header or a positional index.
	Key string `json:"key"`
	// Original is the source text. For tech entries it is the description,
	// which may be empty when the section has a title only.
	Original string `json:"original"`
	// Translated is empty until filled; empty means "do not apply".
	Translated string `json:"translated"`
	Type       Type   `json:"type"`
	// Title is the first body line of a tech section.
	Title           string `json:"title,omitempty"`
	TranslatedTitle string `json:"translated_title,omitempty"`
}

// IsTech reports whether e carries a title/description pair. Entries
// without a type inherit it from the document's file type.
func (e Entry) IsTech(fileType string) bool {
	return e.Type == TypeTech || (e.Type == "" && fileType == string(TypeTech))
}

// HasSource reports whether e holds any source text.
func (e Entry) HasSource() bool {
	return e.Original != "" || e.Title != ""
}

// Metadata describes the file an EntrySet was extracted from.
type Metadata struct {
	FileType       string `json:"file_type"`
	SourceFile     string `json:"source_file"`
	ExtractionDate string `json:"extraction_date"`
}

// Set is the ordered collection of entries extracted from one file. It is
// the durable contract between extraction and application.
type Set struct {
	Metadata Metadata `json:"metadata"`
	Entries  []Entry  `json:"entries"`
}

// NewSet creates a Set for entries extracted from sourceFile at the given time.
func NewSet(fileType, sourceFile string, extracted time.Time, entries []Entry) *Set {
	return &Set{
		Metadata: Metadata{
			FileType:       fileType,
			SourceFile:     sourceFile,
			ExtractionDate: extracted.Format(DateLayout),
		},
		Entries: entries,
	}
}

// Pending counts the entries with at least one field still untranslated.
func (s *Set) Pending() int {
	n := 0
	for _, e := range s.Entries {
		if (e.Original != "" && e.Translated == "") ||
			(e.IsTech(s.Metadata.FileType) && e.Title != "" && e.TranslatedTitle == "") {
			n++
		}
	}
	return n
}
