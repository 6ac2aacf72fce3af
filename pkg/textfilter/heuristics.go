package textfilter

import (
	"strings"

	"golang.org/x/text/cases"
)

// WinGlyph is the marker generated content uses to flag a victorious node or edge.
const WinGlyph = "✅"

// winningKeywords are matched as case-insensitive substrings. The generator
// writes both Italian and English content, so both vocabularies are listed.
var winningKeywords = []string{
	"tesoro", "treasure", "vittoria", "victory", "successo", "success",
	"completato", "completed", "vinto", "won", "triumph", "achieve",
	"treasure_claimed: true", "puzzle_solved: true",
}

// ContainsWinningSignal reports whether text mentions any victory keyword.
func ContainsWinningSignal(text string) bool {
	return ContainsAny(text, winningKeywords...)
}

// ContainsAny reports whether text contains any of tokens, ignoring case.
func ContainsAny(text string, tokens ...string) bool {
	if text == "" {
		return false
	}
	folded := foldCase(text)
	for _, token := range tokens {
		if token == "" {
			continue
		}
		if strings.Contains(folded, foldCase(token)) {
			return true
		}
	}
	return false
}

// foldCase upper-cases before folding so that forms like the dotless i or
// long s land on the same letters as their ASCII counterparts.
func foldCase(s string) string {
	return cases.Fold().String(strings.ToUpper(s))
}
