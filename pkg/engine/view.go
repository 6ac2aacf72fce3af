package engine

import (
	"github.com/google/uuid"
	"github.com/jwebster45206/questmaster/pkg/state"
	"github.com/jwebster45206/questmaster/pkg/textfilter"
)

// Choice is an option as shown to the player.
type Choice struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// View is what a front-end needs to draw the current screen.
type View struct {
	SessionID      uuid.UUID     `json:"session_id"`
	Phase          state.Phase   `json:"phase"`
	CurrentNodeID  string        `json:"current_node_id,omitempty"`
	Description    string        `json:"description,omitempty"`     // Formatted with the engine's markup
	RawDescription string        `json:"raw_description,omitempty"` // As received from the backend
	Choices        []Choice      `json:"choices,omitempty"`         // Only while playing
	Outcome        state.Outcome `json:"outcome,omitempty"`
	Pending        bool          `json:"pending"`
	History        []string      `json:"history,omitempty"`
	Turns          int           `json:"turns"`
	LastError      string        `json:"last_error,omitempty"`
}

// View returns a snapshot of the session for presentation.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session.Snapshot()
	v := View{
		SessionID:     s.ID,
		Phase:         s.Phase,
		CurrentNodeID: s.CurrentNodeID,
		Outcome:       s.Outcome,
		Pending:       s.Pending,
		History:       s.History,
		Turns:         s.Turns(),
		LastError:     s.LastError,
	}

	node, ok := e.store.Lookup(s.CurrentNodeID)
	if s.Phase == state.PhaseIdle || !ok {
		return v
	}

	v.RawDescription = node.Description
	v.Description = e.formatter.Format(node.Description)

	if s.Phase == state.PhasePlaying && e.store.HasOptions(s.CurrentNodeID) {
		for _, ko := range e.store.OptionsOf(s.CurrentNodeID) {
			v.Choices = append(v.Choices, Choice{Key: ko.Key, Label: choiceLabel(ko.Key, ko.Option.Text)})
		}
	}
	return v
}

// ChoiceLabel returns the display label of option key on the current node.
func (e *Engine) ChoiceLabel(key string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	node, ok := e.store.Lookup(e.session.CurrentNodeID)
	if !ok {
		return textfilter.FallbackLabel(key)
	}
	opt, ok := node.Option(key)
	if !ok {
		return textfilter.FallbackLabel(key)
	}
	return choiceLabel(key, opt.Text)
}

func choiceLabel(key, text string) string {
	if label := textfilter.OptionLabel(text); label != "" {
		return label
	}
	return textfilter.FallbackLabel(key)
}
