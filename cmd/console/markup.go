package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/questmaster/pkg/textfilter"
)

var (
	boldStyle   = lipgloss.NewStyle().Bold(true)
	italicStyle = lipgloss.NewStyle().Italic(true)
)

// terminalMarkup renders description emphasis with terminal styles.
var terminalMarkup = textfilter.Markup{
	Bold:      func(s string) string { return boldStyle.Render(s) },
	Italic:    func(s string) string { return italicStyle.Render(s) },
	LineBreak: "\n",
}

// plainFormatter renders text for the clipboard.
var plainFormatter = textfilter.NewFormatter(textfilter.PlainMarkup)
