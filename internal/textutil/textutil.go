package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

const bom = "\ufeff"

// Hash computes a SHA-256 hex hash over the given parts, separated by NUL.
func Hash(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}

// Clean drops invalid UTF-8 bytes, the way the game files are read with
// errors ignored.
func Clean(s string) string {
	return strings.ToValidUTF8(s, "")
}

// CleanKey cleans s and strips a leading byte order mark and surrounding
// whitespace, producing a lookup key.
func CleanKey(s string) string {
	s = Clean(s)
	s = strings.TrimPrefix(strings.TrimSpace(s), bom)
	return strings.TrimSpace(s)
}

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
