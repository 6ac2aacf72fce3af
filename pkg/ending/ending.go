// Package ending decides whether a finished adventure was won or lost.
//
// Generated stories never say so explicitly. The decision is inferred from
// conventions in the content: the win glyph on node ids and descriptions,
// victory vocabulary, and puzzle choices taken in a treasure room. The
// priority order below is relied on by existing content and must not change.
package ending

import (
	"strings"

	"github.com/jwebster45206/questmaster/pkg/state"
	"github.com/jwebster45206/questmaster/pkg/story"
	"github.com/jwebster45206/questmaster/pkg/textfilter"
)

var (
	puzzleTokens   = []string{"puzzle", "solve"}
	treasureTokens = []string{"treasure", "vault", "altar"}
)

// Analysis holds the signals behind an unresolved-target decision.
type Analysis struct {
	TargetHasWinGlyph  bool
	OptionHasWinSignal bool
	IsPuzzleRelated    bool
	IsTreasureContext  bool
	Outcome            state.Outcome
}

// ClassifyTerminalNode decides the outcome of reaching a node without options.
func ClassifyTerminalNode(node story.Node) state.Outcome {
	if strings.Contains(node.Description, textfilter.WinGlyph) ||
		textfilter.ContainsWinningSignal(node.Description) {
		return state.OutcomeWin
	}
	return state.OutcomeLoss
}

// ClassifyUnresolvedTarget decides the outcome of choosing an option whose
// target is not in the graph. rawTargetID must not be normalized.
func ClassifyUnresolvedTarget(optionText, rawTargetID, currentDescription string) state.Outcome {
	return AnalyzeUnresolvedTarget(optionText, rawTargetID, currentDescription).Outcome
}

// AnalyzeUnresolvedTarget is ClassifyUnresolvedTarget with its inputs exposed.
func AnalyzeUnresolvedTarget(optionText, rawTargetID, currentDescription string) Analysis {
	a := Analysis{
		TargetHasWinGlyph:  strings.Contains(rawTargetID, textfilter.WinGlyph),
		OptionHasWinSignal: textfilter.ContainsWinningSignal(optionText),
		IsPuzzleRelated:    textfilter.ContainsAny(optionText, puzzleTokens...),
		IsTreasureContext:  textfilter.ContainsAny(currentDescription, treasureTokens...),
	}

	switch {
	case a.IsTreasureContext && a.IsPuzzleRelated && a.TargetHasWinGlyph:
		a.Outcome = state.OutcomeWin
	case a.TargetHasWinGlyph || a.OptionHasWinSignal:
		a.Outcome = state.OutcomeWin
	default:
		a.Outcome = state.OutcomeLoss
	}
	return a
}
