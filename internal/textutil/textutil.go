// Package textutil covers the text chores that accumulate around file and
// web handling: legacy encoding conversion, HTML tag stripping, and small
// string transformations.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/milkywaygod2/sysutil/internal/errors"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	urlPattern   = regexp.MustCompile(`https?://[^\s<>"']+`)
	spacePattern = regexp.MustCompile(`\s+`)
	slugPattern  = regexp.MustCompile(`[^a-z0-9]+`)
)

// Decode converts bytes in the named encoding (an IANA/WHATWG label such
// as "euc-kr", "shift_jis", or "latin-1") to a UTF-8 string.
func Decode(data []byte, encoding string) (string, error) {
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return "", errors.NewValidationError(errors.ErrCodeInvalidArgument,
			"unknown encoding: "+encoding)
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeValidationFailed,
			"failed to decode "+encoding+" text", err)
	}
	return string(decoded), nil
}

// Encode converts a UTF-8 string to bytes in the named encoding.
func Encode(text, encoding string) ([]byte, error) {
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidArgument,
			"unknown encoding: "+encoding)
	}

	encoded, _, err := transform.Bytes(enc.NewEncoder(), []byte(text))
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeValidationFailed,
			"failed to encode text as "+encoding, err)
	}
	return encoded, nil
}

// Convert re-encodes bytes from one named encoding to another.
func Convert(data []byte, from, to string) ([]byte, error) {
	text, err := Decode(data, from)
	if err != nil {
		return nil, err
	}
	return Encode(text, to)
}

// StripTags removes HTML tags, leaving the text between them.
func StripTags(html string) string {
	return tagPattern.ReplaceAllString(html, "")
}

// ExtractEmails returns the e-mail addresses found in text, in order,
// without duplicates.
func ExtractEmails(text string) []string {
	return dedupe(emailPattern.FindAllString(text, -1))
}

// ExtractURLs returns the http/https URLs found in text, in order,
// without duplicates.
func ExtractURLs(text string) []string {
	return dedupe(urlPattern.FindAllString(text, -1))
}

func dedupe(matches []string) []string {
	seen := make(map[string]bool, len(matches))
	var unique []string
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			unique = append(unique, m)
		}
	}
	return unique
}

// Truncate shortens text to at most width runes, appending the suffix when
// truncation happens. The suffix counts toward the width.
func Truncate(text string, width int, suffix string) string {
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	sfx := []rune(suffix)
	if width <= len(sfx) {
		// The suffix alone would exceed the width, so clamp to it.
		return string(sfx[:width])
	}
	return string(runes[:width-len(sfx)]) + suffix
}

// NormalizeWhitespace collapses whitespace runs to single spaces and trims
// the ends.
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}

// WordCount reports the number of whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Slugify lowercases text and replaces every non-alphanumeric run with a
// single hyphen, suitable for filenames and URLs.
func Slugify(text string) string {
	lower := strings.ToLower(text)
	lower = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, lower)
	return strings.Trim(slugPattern.ReplaceAllString(lower, "-"), "-")
}
