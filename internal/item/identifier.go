package item

import (
	"regexp"
	"strings"
)

// maxIdentifierLen is the archive.org identifier length limit.
const maxIdentifierLen = 100

var invalidIdentifierChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeIdentifier maps an arbitrary string to a valid archive.org
// identifier: only [A-Za-z0-9._-], starting with an alphanumeric, at most
// 100 characters. Returns the empty string when nothing usable remains.
func SanitizeIdentifier(s string) string {
	s = invalidIdentifierChars.ReplaceAllString(s, "-")

	// Identifiers must start with a letter or digit.
	s = strings.TrimLeft(s, "-._")

	if len(s) > maxIdentifierLen {
		s = s[:maxIdentifierLen]
	}
	s = strings.TrimRight(s, "-._")

	return s
}
