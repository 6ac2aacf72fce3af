package ending

import (
	"testing"

	"github.com/jwebster45206/questmaster/pkg/state"
	"github.com/jwebster45206/questmaster/pkg/story"
	"github.com/stretchr/testify/assert"
)

func TestClassifyTerminalNode(t *testing.T) {
	tests := []struct {
		name     string
		node     story.Node
		expected state.Outcome
	}{
		{
			name:     "win glyph",
			node:     story.Node{Description: "The gate closes behind you ✅"},
			expected: state.OutcomeWin,
		},
		{
			name:     "win glyph beats death text",
			node:     story.Node{Description: "You die, but the realm is saved ✅"},
			expected: state.OutcomeWin,
		},
		{
			name:     "winning keyword",
			node:     story.Node{Description: "You claim the TREASURE."},
			expected: state.OutcomeWin,
		},
		{
			name:     "state flag",
			node:     story.Node{Description: "puzzle_solved: true"},
			expected: state.OutcomeWin,
		},
		{
			name:     "loss",
			node:     story.Node{Description: "The floor collapses. ❌"},
			expected: state.OutcomeLoss,
		},
		{
			name:     "empty description",
			node:     story.Node{},
			expected: state.OutcomeLoss,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyTerminalNode(tt.node))
		})
	}
}

func TestClassifyUnresolvedTarget(t *testing.T) {
	tests := []struct {
		name        string
		optionText  string
		rawTarget   string
		description string
		expected    state.Outcome
	}{
		{
			name:        "treasure context puzzle with glyph",
			optionText:  "Solve the puzzle",
			rawTarget:   "node_9 ✅",
			description: "You kneel before the ancient altar.",
			expected:    state.OutcomeWin,
		},
		{
			name:        "glyph alone wins",
			optionText:  "Walk through the door",
			rawTarget:   "node_4✅",
			description: "A corridor.",
			expected:    state.OutcomeWin,
		},
		{
			name:        "winning option text",
			optionText:  "Claim your victory",
			rawTarget:   "node_10",
			description: "A corridor.",
			expected:    state.OutcomeWin,
		},
		{
			name:        "puzzle in treasure context without glyph loses",
			optionText:  "Solve the riddle",
			rawTarget:   "node_10",
			description: "The vault door is sealed.",
			expected:    state.OutcomeLoss,
		},
		{
			name:        "no signals",
			optionText:  "Jump off cliff",
			rawTarget:   "node_X",
			description: "start",
			expected:    state.OutcomeLoss,
		},
		{
			name:        "glyph stripped before call loses",
			optionText:  "Jump off cliff",
			rawTarget:   "node_9",
			description: "start",
			expected:    state.OutcomeLoss,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyUnresolvedTarget(tt.optionText, tt.rawTarget, tt.description)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAnalyzeUnresolvedTarget(t *testing.T) {
	a := AnalyzeUnresolvedTarget("Solve the PUZZLE", "node_9 ✅", "A glittering Vault")

	assert.True(t, a.TargetHasWinGlyph)
	assert.False(t, a.OptionHasWinSignal)
	assert.True(t, a.IsPuzzleRelated)
	assert.True(t, a.IsTreasureContext)
	assert.Equal(t, state.OutcomeWin, a.Outcome)

	a = AnalyzeUnresolvedTarget("Run away", "node_2", "A dark cave")
	assert.Equal(t, Analysis{Outcome: state.OutcomeLoss}, a)
}
