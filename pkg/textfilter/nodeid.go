package textfilter

import (
	"strings"
	"unicode"
)

// NormalizeNodeID removes trailing win glyphs, along with the whitespace
// around them, and trims what is left. Repeated glyphs are all removed so
// that the result is stable under a second call.
func NormalizeNodeID(raw string) string {
	id := raw
	for {
		id = strings.TrimRightFunc(id, unicode.IsSpace)
		if !strings.HasSuffix(id, WinGlyph) {
			break
		}
		id = strings.TrimSuffix(id, WinGlyph)
	}
	return strings.TrimSpace(id)
}
