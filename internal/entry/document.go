package entry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gamedat-translator/internal/fsutil"
)

// ErrMalformedDocument marks an intermediate document that is not a JSON
// object with an entries array.
var ErrMalformedDocument = errors.New("malformed intermediate document")

type rawDocument struct {
	Metadata json.RawMessage   `json:"metadata"`
	Entries  []json.RawMessage `json:"entries"`
}

// Decode parses an intermediate document. Documents are hand-edited, so
// missing, extra or reordered fields are accepted and entries that are not
// objects of the expected shape are dropped. Only a document that is not a
// JSON object, or whose entries are not an array, fails with
// ErrMalformedDocument.
func Decode(data []byte) (*Set, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, fmt.Errorf("%w: document is null", ErrMalformedDocument)
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	set := &Set{}
	if len(raw.Metadata) > 0 && string(raw.Metadata) != "null" {
		// A metadata block of the wrong shape loses its file type but is
		// not fatal; apply falls back to the file name.
		_ = json.Unmarshal(raw.Metadata, &set.Metadata)
	}

	set.Entries = make([]Entry, 0, len(raw.Entries))
	for _, item := range raw.Entries {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}
		var e Entry
		if err := json.Unmarshal(item, &e); err != nil {
			continue
		}
		set.Entries = append(set.Entries, e)
	}

	return set, nil
}

// Encode renders s as indented JSON without HTML escaping, so game text
// stays readable for hand editing.
func Encode(s *Set) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	doc := *s
	if doc.Entries == nil {
		doc.Entries = []Entry{}
	}
	if err := encoder.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// Load reads the document at path.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	set, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return set, nil
}

// Save writes s to path atomically.
func Save(path string, s *Set) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}
