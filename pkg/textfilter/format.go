package textfilter

import (
	"regexp"
	"strings"
)

// NarrativeLabel introduces the story text inside a generated node description.
const NarrativeLabel = "**Narrative Description:**"

var (
	// The section runs until the next line opening a bold label, or the end.
	narrativeSectionRe = regexp.MustCompile(`(?s)\*\*Narrative Description:\*\*\s*(.*?)(?:\n\*\*|$)`)
	boldRe             = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe           = regexp.MustCompile(`\*(.*?)\*`)
)

// Markup renders the small markdown subset found in node descriptions.
type Markup struct {
	Bold      func(string) string
	Italic    func(string) string
	LineBreak string
}

// HTMLMarkup renders descriptions for a browser.
var HTMLMarkup = Markup{
	Bold:      func(s string) string { return "<strong>" + s + "</strong>" },
	Italic:    func(s string) string { return "<em>" + s + "</em>" },
	LineBreak: "<br>",
}

// PlainMarkup strips emphasis markers and keeps newlines.
var PlainMarkup = Markup{
	Bold:      func(s string) string { return s },
	Italic:    func(s string) string { return s },
	LineBreak: "\n",
}

// Formatter turns a raw node description into display text.
type Formatter struct {
	Markup Markup
}

// NewFormatter returns a formatter using m. Nil wrappers in m pass text through.
func NewFormatter(m Markup) *Formatter {
	if m.Bold == nil {
		m.Bold = PlainMarkup.Bold
	}
	if m.Italic == nil {
		m.Italic = PlainMarkup.Italic
	}
	return &Formatter{Markup: m}
}

// Format extracts the narrative section, if any, and converts bold, italic
// and newlines with the formatter's markup.
func (f *Formatter) Format(description string) string {
	text := NarrativeSection(description)

	text = boldRe.ReplaceAllStringFunc(text, func(match string) string {
		return f.Markup.Bold(match[2 : len(match)-2])
	})
	text = italicRe.ReplaceAllStringFunc(text, func(match string) string {
		return f.Markup.Italic(match[1 : len(match)-1])
	})

	return strings.ReplaceAll(text, "\n", f.Markup.LineBreak)
}

// NarrativeSection returns the text of the "Narrative Description" section,
// or the whole description when there is no such section.
func NarrativeSection(description string) string {
	m := narrativeSectionRe.FindStringSubmatch(description)
	if m == nil {
		return description
	}
	return strings.TrimSpace(m[1])
}
