// Package sanitize prepares model output for speech synthesis by
// stripping markdown punctuation and normalizing whitespace.
package sanitize

import "strings"

// Clean removes the literal characters '*', '#' and '-' wherever they
// appear, collapses every whitespace run (including newlines) into a
// single space and trims the result. This is a blunt character strip,
// not markdown parsing: a hyphen inside a compound word is removed too.
// Clean is pure and total; it never fails.
func Clean(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		switch r {
		case '*', '#', '-':
			continue
		default:
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
