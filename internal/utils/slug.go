package utils

import "strings"

// Slugify converts a movie title into a URL-friendly slug: lower-cased,
// spaces collapsed to single dashes, everything outside [a-z0-9-] dropped.
// "The Dark Knight" becomes "the-dark-knight".
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == ' ' || r == '-' || r == '_':
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
