package story

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/jwebster45206/questmaster/pkg/textfilter"
)

// Severity grades a validation issue. Only errors make a graph unplayable.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found in a graph.
type Issue struct {
	Severity  Severity
	NodeID    string
	OptionKey string
	Message   string
}

func (i Issue) String() string {
	where := i.NodeID
	if i.OptionKey != "" {
		where += "." + i.OptionKey
	}
	if where == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, where, i.Message)
}

// Report lists the issues of a graph, errors first, then by node id.
type Report struct {
	Issues []Issue
}

// HasErrors reports whether any issue is an error.
func (r Report) HasErrors() bool {
	return slices.ContainsFunc(r.Issues, func(i Issue) bool { return i.Severity == SeverityError })
}

// Count returns the number of issues with severity s.
func (r Report) Count(s Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == s {
			n++
		}
	}
	return n
}

var validNodeIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

// Validate checks that graph can be played from startNodeID.
//
// A missing start node and options without a target are errors. Dangling
// targets are only warnings: choosing them ends the game.
func Validate(graph Graph, startNodeID string) Report {
	v := &validator{}

	if len(graph) == 0 {
		v.add(SeverityError, "", "", "graph has no nodes")
		return v.report()
	}
	if _, ok := graph[startNodeID]; !ok {
		v.add(SeverityError, "", "", fmt.Sprintf("start node %q not found", startNodeID))
	}

	for id, node := range graph {
		if !validNodeIDRegex.MatchString(id) {
			v.add(SeverityWarning, id, "", "node id should be lowercase snake_case")
		}
		if strings.TrimSpace(node.Description) == "" {
			v.add(SeverityWarning, id, "", "description is empty")
		}
		for _, ko := range node.KeyedOptions() {
			v.validateOption(graph, id, ko)
		}
	}

	for _, id := range unreachable(graph, startNodeID) {
		v.add(SeverityWarning, id, "", "node cannot be reached from the start node")
	}
	return v.report()
}

type validator struct {
	issues []Issue
}

func (v *validator) add(s Severity, nodeID, key, msg string) {
	v.issues = append(v.issues, Issue{Severity: s, NodeID: nodeID, OptionKey: key, Message: msg})
}

func (v *validator) validateOption(graph Graph, nodeID string, ko KeyedOption) {
	target := textfilter.NormalizeNodeID(ko.Option.Target)
	if target == "" {
		v.add(SeverityError, nodeID, ko.Key, "option has no target")
		return
	}
	if textfilter.OptionLabel(ko.Option.Text) == "" {
		v.add(SeverityWarning, nodeID, ko.Key, "option has no label text")
	}
	if _, ok := graph[target]; !ok {
		v.add(SeverityWarning, nodeID, ko.Key, fmt.Sprintf("target %q is not in the graph and ends the game", ko.Option.Target))
	}
}

func (v *validator) report() Report {
	slices.SortStableFunc(v.issues, func(a, b Issue) int {
		if a.Severity != b.Severity {
			if a.Severity == SeverityError {
				return -1
			}
			return 1
		}
		if c := strings.Compare(a.NodeID, b.NodeID); c != 0 {
			return c
		}
		return strings.Compare(a.OptionKey, b.OptionKey)
	})
	return Report{Issues: v.issues}
}

// unreachable returns the sorted ids of nodes no path from startNodeID visits.
func unreachable(graph Graph, startNodeID string) []string {
	if _, ok := graph[startNodeID]; !ok {
		return nil
	}

	seen := map[string]bool{startNodeID: true}
	queue := []string{startNodeID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, ko := range graph[id].KeyedOptions() {
			next := textfilter.NormalizeNodeID(ko.Option.Target)
			if _, ok := graph[next]; ok && !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}

	var out []string
	for id := range graph {
		if !seen[id] {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}
