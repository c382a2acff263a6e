// backend/src/security/validation/sanitizers.go
package validation

import (
	"strings"
	"unicode"
)

// SanitizeLabel trims surrounding whitespace and strips non-printable
// characters from a user-supplied label (product, category or display name)
// before it reaches storage. Receipt OCR and QR scanners occasionally embed
// control bytes in product names.
func SanitizeLabel(s string) string {
	return strings.TrimSpace(StripUnprintable(s))
}

// StripUnprintable removes non-printable characters, allowing common whitespace
// like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1 // Drop the rune
	}, s)
}
