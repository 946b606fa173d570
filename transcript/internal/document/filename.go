package document

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Suffix is appended to every sanitized title.
const Suffix = "_transcript.txt"

// MaxStemLength caps the sanitized title, in characters.
const MaxStemLength = 200

const unsafeChars = `<>:"/\|?*`

var reUnderscores = regexp.MustCompile(`_+`)

// Sanitize turns a title into a filesystem-safe stem: unsafe characters and
// whitespace become underscores, underscore runs collapse, leading and
// trailing underscores are trimmed, and the result is capped at
// MaxStemLength characters.
func Sanitize(title string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(unsafeChars, r),
			unicode.IsSpace(r),
			unicode.IsControl(r):
			return '_'
		}
		return r
	}, norm.NFC.String(title))
	s = reUnderscores.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")

	if r := []rune(s); len(r) > MaxStemLength {
		// Cutting can expose a trailing underscore again.
		s = strings.TrimRight(string(r[:MaxStemLength]), "_")
	}
	return s
}

// Filename returns Sanitize(title) + Suffix, falling back to "transcript"
// when nothing printable survives.
func Filename(title string) string {
	stem := Sanitize(title)
	if stem == "" {
		stem = "transcript"
	}
	return stem + Suffix
}
