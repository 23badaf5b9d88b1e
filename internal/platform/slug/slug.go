package slug

import (
	"strings"
	"unicode"
)

// MaxLen caps slugs so report file names stay short.
const MaxLen = 40

// Make turns a session label into a file-name safe token: lowercase ASCII
// letters and digits separated by single dashes.
func Make(input string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(input) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
		if b.Len() >= MaxLen {
			break
		}
	}
	s := strings.Trim(b.String(), "-")
	if len(s) > MaxLen {
		s = strings.TrimRight(s[:MaxLen], "-")
	}
	if s == "" {
		return "session"
	}
	return s
}
