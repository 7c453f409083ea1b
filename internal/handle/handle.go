// Package handle canonicalizes user supplied profile handles into URL-safe
// slugs. Two raw handles collide iff their normalized forms are equal.
package handle

import (
	"strings"
	"unicode"
)

// Normalize lowercases and trims the raw handle, replaces whitespace runs
// with a single hyphen, drops every character outside [a-z0-9_-] and
// collapses hyphen runs. Idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(s))

	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace {
			b.WriteByte('-')
			inSpace = false
		}

		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	// Collapse hyphen runs left by stripped characters
	var out strings.Builder
	out.Grow(b.Len())
	prevHyphen := false
	for _, r := range b.String() {
		if r == '-' {
			if prevHyphen {
				continue
			}
			prevHyphen = true
		} else {
			prevHyphen = false
		}
		out.WriteRune(r)
	}

	return out.String()
}
