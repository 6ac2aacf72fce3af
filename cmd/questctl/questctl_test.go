package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/jwebster45206/questmaster/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func TestPlay_ScriptedChoices(t *testing.T) {
	out, err := runCLI(t, "", "play", "--graph", "testdata/graph.json", "--choices", "option_1,1")
	require.NoError(t, err)

	assert.Contains(t, out, "The ship's hold is dark.")
	assert.NotContains(t, out, "Narrative Description")
	assert.Contains(t, out, "1. Climb to the deck")
	assert.Contains(t, out, "2. Open the sealed crate")
	assert.Contains(t, out, "VICTORY! You completed the quest in 2 turns.")
}

func TestPlay_Interactive(t *testing.T) {
	stdin := "9\n2\n"
	out, err := runCLI(t, stdin, "play", "--graph", "testdata/graph.json")
	require.NoError(t, err)

	assert.Contains(t, out, `There is no choice "9".`)
	assert.Contains(t, out, "The crate was full of snakes.")
	assert.Contains(t, out, "GAME OVER")
}

func TestPlay_RestartAndQuit(t *testing.T) {
	out, err := runCLI(t, "option_1\nrestart\nquit\noption_1\n", "play", "--graph", "testdata/graph.json")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "The ship's hold is dark."))
	assert.Equal(t, 1, strings.Count(out, "Storm winds"))
}

func TestPlay_JSON(t *testing.T) {
	out, err := runCLI(t, "", "play", "--graph", "testdata/graph.json", "--choices", "option_1,option_1", "--json")
	require.NoError(t, err)

	var session state.Session
	require.NoError(t, json.Unmarshal([]byte(out), &session))
	assert.Equal(t, state.PhaseEnded, session.Phase)
	assert.Equal(t, state.OutcomeLoss, session.Outcome)
	assert.Equal(t, []string{"node_1", "node_2"}, session.History)
}

func TestPlay_MissingStartNode(t *testing.T) {
	_, err := runCLI(t, "", "play", "--graph", "testdata/graph.json", "--start", "node_99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start node")
}

func TestGraph_FromBackend(t *testing.T) {
	body, err := os.ReadFile("testdata/graph.json")
	require.NoError(t, err)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getGraph" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	defer server.Close()

	out, err := runCLI(t, "", "graph", "--api", server.URL)
	require.NoError(t, err)

	assert.Contains(t, out, "node_1\n  option_1: Climb to the deck -> node_2\n  option_0: Open the sealed crate -> node_3\n")
	assert.Contains(t, out, "node_3 (end)")
	assert.Contains(t, out, "option_1: Jump overboard -> node_sea (missing)")
	assert.Contains(t, out, "option_0: Follow the map -> node_4 ✅\n")
	assert.Contains(t, out, "4 nodes")
}

func TestGraph_JSONKeepsOptionOrder(t *testing.T) {
	out, err := runCLI(t, "", "graph", "--graph", "testdata/graph.json", "--json")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, `"option_1"`), strings.Index(out, `"option_0"`))
}

func TestGenerate(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"generation failed upstream"}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	out, err := runCLI(t, "", "generate", "--api", server.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Story generated.")

	_, err = runCLI(t, "", "generate", "--api", server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation failed upstream")
}

func TestWalk(t *testing.T) {
	out, err := runCLI(t, "", "walk", "testdata/win.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "deck to treasure")
	assert.Contains(t, out, "✓ follow the map")
	assert.Contains(t, out, "2/2 steps passed")

	out, err = runCLI(t, "", "walk", "--graph", "testdata/graph.json", "testdata/win.yaml", "testdata/wrong.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 walkthroughs failed")
	assert.Contains(t, out, "✗ crate")
}

func TestValidate(t *testing.T) {
	out, err := runCLI(t, "", "validate", "testdata/graph.json")
	require.NoError(t, err)
	assert.Contains(t, out, `warning: node_2.option_1: target "node_sea" is not in the graph and ends the game`)
	assert.Contains(t, out, "Graph is playable (4 nodes, 1 warnings).")

	out, err = runCLI(t, "", "validate", "--start", "node_0", "testdata/graph.json")
	require.Error(t, err)
	assert.Contains(t, out, `error: start node "node_0" not found`)
	assert.Contains(t, err.Error(), "validation failed: 1 errors")
}
