package textfilter

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	trailingMetadataRe = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	leadingAsterisksRe = regexp.MustCompile(`^\*+\s*`)
	trailingColonRe    = regexp.MustCompile(`:\s*$`)
)

// OptionLabel turns raw option text into a button label: a trailing
// parenthetical, leading asterisks and a trailing colon are dropped.
func OptionLabel(text string) string {
	label := trailingMetadataRe.ReplaceAllString(text, "")
	label = leadingAsterisksRe.ReplaceAllString(label, "")
	label = trailingColonRe.ReplaceAllString(label, "")
	return strings.TrimSpace(label)
}

// FallbackLabel is shown for an option key that has no option behind it.
func FallbackLabel(key string) string {
	return fmt.Sprintf("Option %s", key)
}
