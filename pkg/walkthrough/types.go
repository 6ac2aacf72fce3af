package walkthrough

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/questmaster/pkg/state"
	"github.com/jwebster45206/questmaster/pkg/story"
)

// RestartChoice is a step choice that restarts the game and reloads the
// suite's graph instead of selecting an option.
const RestartChoice = "RESTART"

// Suite is a scripted playthrough.
// It is either a list of Steps over a graph, or a sequence of other suite files.
type Suite struct {
	Name      string      `yaml:"name"`
	Graph     story.Graph `yaml:"graph,omitempty"`      // Inline graph
	GraphFile string      `yaml:"graph_file,omitempty"` // JSON graph, relative to the suite file
	StartNode string      `yaml:"start_node,omitempty"`
	Steps     []Step      `yaml:"steps,omitempty"`
	Cases     []string    `yaml:"cases,omitempty"` // Suite files run in order
}

// IsSequence returns true if this suite only references other suites
func (s *Suite) IsSequence() bool {
	return len(s.Cases) > 0
}

// Step selects one option and checks the result.
// Use choose: "RESTART" to start over from the start node.
type Step struct {
	Name   string       `yaml:"name,omitempty"`
	Choose string       `yaml:"choose"`
	Expect Expectations `yaml:"expect"`
}

// Expectations are checked against the game view after a step.
// Nil and empty fields are not checked.
type Expectations struct {
	Accepted *bool          `yaml:"accepted,omitempty"` // Whether the engine took the selection
	Phase    *state.Phase   `yaml:"phase,omitempty"`
	Node     *string        `yaml:"node,omitempty"`
	Outcome  *state.Outcome `yaml:"outcome,omitempty"`
	Turns    *int           `yaml:"turns,omitempty"`

	Choices                []string `yaml:"choices,omitempty"` // Option keys, in order
	DescriptionContains    []string `yaml:"description_contains,omitempty"`
	DescriptionNotContains []string `yaml:"description_not_contains,omitempty"`
}

// StepResult is the outcome of running one step
type StepResult struct {
	StepName  string
	Success   bool
	Error     error
	Duration  time.Duration
	IsRestart bool // Restart steps do not count toward pass/fail totals
}

// Job is a suite together with the file it came from
type Job struct {
	Name     string
	Suite    Suite
	CaseFile string
}

// RunResult contains the results of running an entire suite
type RunResult struct {
	Job       Job
	Results   []StepResult
	Error     error
	Duration  time.Duration
	SessionID uuid.UUID // Session of the last game played
}

// Passed counts successful steps, excluding restarts
func (r RunResult) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Success && !res.IsRestart {
			n++
		}
	}
	return n
}

// Counted returns the number of steps that count toward pass/fail totals
func (r RunResult) Counted() int {
	n := 0
	for _, res := range r.Results {
		if !res.IsRestart {
			n++
		}
	}
	return n
}
