package validator

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxDisplayNameRunes = 128

// SanitizeFileName returns a bounded display copy of an uploaded file name
// for logs and events: base name only, NFC, invalid UTF-8 replaced, control
// and format runes (bidi overrides included) escaped as \uXXXX.
func SanitizeFileName(original string) string {
	if original == "" {
		return ""
	}

	s := strings.ToValidUTF8(original, string(unicode.ReplacementChar))
	s = path.Base(strings.ReplaceAll(s, "\\", "/"))
	s = strings.TrimSpace(norm.NFC.String(s))
	if s == "" || s == "." || s == ".." || s == "/" {
		return "file"
	}

	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		if n == maxDisplayNameRunes {
			b.WriteString("...")
			break
		}
		n++

		switch {
		case unicode.IsControl(r) || unicode.Is(unicode.Cf, r):
			if r > 0xFFFF {
				fmt.Fprintf(&b, `\U%08x`, r)
			} else {
				fmt.Fprintf(&b, `\u%04x`, r)
			}
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}
