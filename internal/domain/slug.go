package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxSlugLen = 80

// Slugify lower-cases s and joins runs of letters and digits with single hyphens.
// Non-Latin letters (Hebrew titles) are kept as they are.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	out := b.String()
	if len(out) > maxSlugLen {
		out = out[:maxSlugLen]
		// don't cut a multi-byte rune in half
		for len(out) > 0 && !utf8.ValidString(out) {
			out = out[:len(out)-1]
		}
		out = strings.TrimRight(out, "-")
	}
	return out
}
