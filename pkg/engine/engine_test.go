package engine

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/questmaster/pkg/state"
	"github.com/jwebster45206/questmaster/pkg/story"
	"github.com/jwebster45206/questmaster/pkg/textfilter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type graphSourceFunc func(ctx context.Context) (story.Graph, error)

func (f graphSourceFunc) RequestGraph(ctx context.Context) (story.Graph, error) {
	return f(ctx)
}

type generatorFunc func(ctx context.Context) error

func (f generatorFunc) RequestStoryGeneration(ctx context.Context) error {
	return f(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func newTestEngine(opts ...Option) *Engine {
	return New(append([]Option{WithLogger(testLogger())}, opts...)...)
}

func scenarioAGraph() story.Graph {
	return story.Graph{
		"node_1": {
			Description: "go",
			Options:     story.NewOptions(story.Choice("a", "Open door", "node_2")),
		},
		"node_2": {Description: "You win the treasure! ✅", Options: story.NewOptions()},
	}
}

func TestEngine_ScenarioA_TerminalWin(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.LoadGraph(scenarioAGraph()))
	require.NoError(t, e.Start("node_1"))

	accepted, err := e.SelectOption(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, accepted)

	s := e.Session()
	assert.Equal(t, state.PhaseEnded, s.Phase)
	assert.Equal(t, state.OutcomeWin, s.Outcome)
	assert.Equal(t, "node_2", s.CurrentNodeID)
	assert.Equal(t, []string{"node_1", "node_2"}, s.History)
	assert.False(t, s.Pending)
	assert.Equal(t, 1, e.View().Turns)
}

func TestEngine_ScenarioB_DanglingLoss(t *testing.T) {
	g := story.Graph{
		"node_1": {
			Description: "start",
			Options:     story.NewOptions(story.Choice("a", "Jump off cliff", "node_X")),
		},
	}
	e := newTestEngine()
	require.NoError(t, e.LoadGraph(g))
	require.NoError(t, e.Start("node_1"))

	accepted, err := e.SelectOption(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, accepted)

	s := e.Session()
	assert.Equal(t, state.PhaseEnded, s.Phase)
	assert.Equal(t, state.OutcomeLoss, s.Outcome)
	assert.Equal(t, "node_1", s.CurrentNodeID, "dangling targets do not move the player")
}

func TestEngine_ScenarioC_TreasurePuzzleWin(t *testing.T) {
	g := story.Graph{
		"node_1": {
			Description: "You stand before the ancient altar.",
			Options:     story.NewOptions(story.Choice("solve", "Solve the puzzle", "node_9 ✅")),
		},
	}
	e := newTestEngine()
	require.NoError(t, e.LoadGraph(g))

	accepted, err := e.SelectOption(context.Background(), "solve")
	require.NoError(t, err)
	assert.True(t, accepted)

	s := e.Session()
	assert.Equal(t, state.PhaseEnded, s.Phase)
	assert.Equal(t, state.OutcomeWin, s.Outcome)
}

func TestEngine_NormalizedTargetResolves(t *testing.T) {
	g := story.Graph{
		"node_1": {
			Description: "A bridge.",
			Options:     story.NewOptions(story.Choice("a", "Cross", "  node_2 ✅ ")),
		},
		"node_2": {
			Description: "The far side.",
			Options:     story.NewOptions(story.Choice("a", "Rest", "node_3")),
		},
	}
	e := newTestEngine()
	require.NoError(t, e.LoadGraph(g))

	accepted, err := e.SelectOption(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, accepted)

	s := e.Session()
	assert.Equal(t, state.PhasePlaying, s.Phase)
	assert.Equal(t, "node_2", s.CurrentNodeID)
	assert.Equal(t, state.OutcomeNone, s.Outcome)
}

func TestEngine_StartMissingNode(t *testing.T) {
	e := newTestEngine()
	err := e.LoadGraph(story.Graph{"node_2": {Description: "orphan"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingStartNode))

	s := e.Session()
	assert.Equal(t, state.PhaseIdle, s.Phase)
	assert.Empty(t, s.CurrentNodeID)
	assert.NotEmpty(t, s.LastError)

	// Start with an explicit id works on the graph that stayed loaded.
	require.NoError(t, e.Start("node_2"))
	assert.Equal(t, state.PhasePlaying, e.Session().Phase)

	err = e.Start("nope")
	assert.ErrorIs(t, err, ErrMissingStartNode)
	assert.Equal(t, state.PhaseIdle, e.Session().Phase)
}

func TestEngine_StartResetsOutcome(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.LoadGraph(scenarioAGraph()))
	_, err := e.SelectOption(context.Background(), "a")
	require.NoError(t, err)
	require.Equal(t, state.PhaseEnded, e.Session().Phase)

	require.NoError(t, e.Start("node_1"))
	s := e.Session()
	assert.Equal(t, state.PhasePlaying, s.Phase)
	assert.Equal(t, state.OutcomeNone, s.Outcome)
	assert.Equal(t, []string{"node_1"}, s.History)
}

func TestEngine_StartOnTerminalNodeKeepsPlaying(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.LoadGraph(story.Graph{"node_1": {Description: "Nothing to do."}}))

	v := e.View()
	assert.Equal(t, state.PhasePlaying, v.Phase)
	assert.Empty(t, v.Choices)
}

func TestEngine_SelectOptionIgnored(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *Engine)
		key   string
	}{
		{
			name:  "idle",
			setup: func(e *Engine) {},
			key:   "a",
		},
		{
			name: "unknown key",
			setup: func(e *Engine) {
				_ = e.LoadGraph(scenarioAGraph())
			},
			key: "zzz",
		},
		{
			name: "ended",
			setup: func(e *Engine) {
				_ = e.LoadGraph(story.Graph{
					"node_1": {Description: "x", Options: story.NewOptions(story.Choice("a", "Fall", "gone"))},
				})
				_, _ = e.SelectOption(context.Background(), "a")
			},
			key: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			tt.setup(e)
			before := e.Session()

			accepted, err := e.SelectOption(context.Background(), tt.key)
			require.NoError(t, err)
			assert.False(t, accepted)
			assert.Equal(t, before, e.Session())
		})
	}
}

func TestEngine_SecondSelectionWhilePendingIgnored(t *testing.T) {
	release := make(chan struct{})
	waiting := make(chan struct{})
	var once sync.Once
	delay := DelayFunc(func(ctx context.Context) error {
		once.Do(func() { close(waiting) })
		<-release
		return nil
	})

	g := story.Graph{
		"node_1": {
			Description: "fork",
			Options: story.NewOptions(
				story.Choice("left", "Go left", "node_2"),
				story.Choice("right", "Go right", "node_3"),
			),
		},
		"node_2": {Description: "left room", Options: story.NewOptions(story.Choice("a", "on", "node_1"))},
		"node_3": {Description: "right room", Options: story.NewOptions(story.Choice("a", "on", "node_1"))},
	}
	e := newTestEngine(WithDelay(delay))
	require.NoError(t, e.LoadGraph(g))

	done := make(chan bool)
	go func() {
		accepted, _ := e.SelectOption(context.Background(), "left")
		done <- accepted
	}()
	<-waiting

	pending := e.Session()
	require.True(t, pending.Pending)
	assert.True(t, e.View().Pending)

	accepted, err := e.SelectOption(context.Background(), "right")
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, pending, e.Session(), "ignored selection must not change state")

	close(release)
	assert.True(t, <-done)

	s := e.Session()
	assert.Equal(t, "node_2", s.CurrentNodeID)
	assert.False(t, s.Pending)
}

func TestEngine_SelectionCancelledDuringDelay(t *testing.T) {
	e := newTestEngine(WithDelay(FixedDelay(time.Hour)))
	require.NoError(t, e.LoadGraph(scenarioAGraph()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	accepted, err := e.SelectOption(ctx, "a")
	assert.False(t, accepted)
	assert.ErrorIs(t, err, context.Canceled)

	s := e.Session()
	assert.Equal(t, state.PhasePlaying, s.Phase)
	assert.Equal(t, "node_1", s.CurrentNodeID)
	assert.False(t, s.Pending)
}

func TestEngine_RestartDuringPendingSelection(t *testing.T) {
	release := make(chan struct{})
	waiting := make(chan struct{})
	delay := DelayFunc(func(ctx context.Context) error {
		close(waiting)
		<-release
		return nil
	})

	e := newTestEngine(WithDelay(delay))
	require.NoError(t, e.LoadGraph(scenarioAGraph()))

	done := make(chan bool)
	go func() {
		accepted, _ := e.SelectOption(context.Background(), "a")
		done <- accepted
	}()
	<-waiting

	e.Restart()
	close(release)
	assert.False(t, <-done)

	s := e.Session()
	assert.Equal(t, state.PhaseIdle, s.Phase)
	assert.Equal(t, state.OutcomeNone, s.Outcome)
}

func TestEngine_RestartFromAnyState(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *Engine)
	}{
		{name: "idle", setup: func(e *Engine) {}},
		{name: "playing", setup: func(e *Engine) { _ = e.LoadGraph(scenarioAGraph()) }},
		{name: "ended", setup: func(e *Engine) {
			_ = e.LoadGraph(scenarioAGraph())
			_, _ = e.SelectOption(context.Background(), "a")
		}},
		{name: "failed start", setup: func(e *Engine) { _ = e.LoadGraph(story.Graph{}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			tt.setup(e)

			e.Restart()

			s := e.Session()
			assert.Equal(t, state.PhaseIdle, s.Phase)
			assert.Empty(t, s.CurrentNodeID)
			assert.Equal(t, state.OutcomeNone, s.Outcome)
			assert.False(t, s.Pending)
			assert.Equal(t, uuid.Nil, s.ID)
			assert.Empty(t, e.Graph())
		})
	}
}

func TestEngine_Load(t *testing.T) {
	t.Run("success starts at configured node", func(t *testing.T) {
		g := scenarioAGraph()
		g["intro"] = story.Node{Description: "intro", Options: story.NewOptions(story.Choice("a", "Go", "node_1"))}

		e := newTestEngine(WithStartNode("intro"))
		err := e.Load(context.Background(), graphSourceFunc(func(ctx context.Context) (story.Graph, error) {
			return g, nil
		}))
		require.NoError(t, err)

		s := e.Session()
		assert.Equal(t, state.PhasePlaying, s.Phase)
		assert.Equal(t, "intro", s.CurrentNodeID)
		assert.Equal(t, "intro", e.StartNode())
	})

	t.Run("fetch failure stays idle", func(t *testing.T) {
		e := newTestEngine()
		err := e.Load(context.Background(), graphSourceFunc(func(ctx context.Context) (story.Graph, error) {
			return nil, errors.New("connection refused")
		}))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrGraphLoadFailed)
		assert.Contains(t, err.Error(), "connection refused")

		s := e.Session()
		assert.Equal(t, state.PhaseIdle, s.Phase)
		assert.NotEmpty(t, s.LastError)
		assert.Empty(t, e.Graph())
	})

	t.Run("fetch failure drops the game in progress", func(t *testing.T) {
		e := newTestEngine()
		require.NoError(t, e.LoadGraph(scenarioAGraph()))
		require.True(t, e.Session().IsPlaying())

		err := e.Load(context.Background(), graphSourceFunc(func(ctx context.Context) (story.Graph, error) {
			return nil, errors.New("connection refused")
		}))
		assert.ErrorIs(t, err, ErrGraphLoadFailed)

		s := e.Session()
		assert.Equal(t, state.PhaseIdle, s.Phase)
		assert.Empty(t, s.CurrentNodeID)
		assert.NotEmpty(t, s.LastError)
		assert.Empty(t, e.Graph())
		assert.Empty(t, e.View().Choices)
	})

	t.Run("missing start node", func(t *testing.T) {
		e := newTestEngine()
		err := e.Load(context.Background(), graphSourceFunc(func(ctx context.Context) (story.Graph, error) {
			return story.Graph{"node_7": {}}, nil
		}))
		assert.ErrorIs(t, err, ErrMissingStartNode)
		assert.Equal(t, state.PhaseIdle, e.Session().Phase)
	})
}

func TestEngine_LoadSuperseded(t *testing.T) {
	e := newTestEngine()

	started := make(chan struct{})
	release := make(chan struct{})
	slow := graphSourceFunc(func(ctx context.Context) (story.Graph, error) {
		close(started)
		<-release
		return story.Graph{"node_1": {Description: "stale"}}, nil
	})

	errs := make(chan error)
	go func() { errs <- e.Load(context.Background(), slow) }()
	<-started

	require.NoError(t, e.LoadGraph(scenarioAGraph()))
	close(release)

	assert.ErrorIs(t, <-errs, ErrLoadSuperseded)
	assert.Equal(t, "go", e.View().RawDescription, "the newer graph must stay installed")
}

func TestEngine_Generate(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.LoadGraph(scenarioAGraph()))
	before := e.Session()

	err := e.Generate(context.Background(), generatorFunc(func(ctx context.Context) error { return nil }))
	require.NoError(t, err)

	err = e.Generate(context.Background(), generatorFunc(func(ctx context.Context) error {
		return errors.New("backend returned status 500")
	}))
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, before, e.Session(), "generation never touches traversal state")
}

func TestEngine_View(t *testing.T) {
	g := story.Graph{
		"node_1": {
			Description: "**Narrative Description:** You wake in a *dark* cell.\n**Options:** ...",
			Options: story.NewOptions(
				story.Choice("option_2", "**Pick the lock (needs a pin)", "node_2"),
				story.Choice("option_0", "Shout for the guard:", "node_3"),
				story.Choice("option_1", "(wait)", "node_4"),
			),
		},
	}

	e := newTestEngine()
	v := e.View()
	assert.Equal(t, state.PhaseIdle, v.Phase)
	assert.Empty(t, v.Description)
	assert.Empty(t, v.Choices)

	require.NoError(t, e.LoadGraph(g))
	v = e.View()
	assert.Equal(t, state.PhasePlaying, v.Phase)
	assert.Equal(t, "node_1", v.CurrentNodeID)
	assert.Equal(t, "You wake in a <em>dark</em> cell.", v.Description)
	assert.Equal(t, g["node_1"].Description, v.RawDescription)
	assert.Equal(t, []Choice{
		{Key: "option_2", Label: "Pick the lock"},
		{Key: "option_0", Label: "Shout for the guard"},
		{Key: "option_1", Label: "Option option_1"},
	}, v.Choices)

	assert.Equal(t, "Pick the lock", e.ChoiceLabel("option_2"))
	assert.Equal(t, "Option missing", e.ChoiceLabel("missing"))
}

func TestEngine_ViewPlainMarkup(t *testing.T) {
	e := newTestEngine(WithMarkup(textfilter.PlainMarkup))
	require.NoError(t, e.LoadGraph(story.Graph{
		"node_1": {Description: "The **end** is near.\nRun."},
	}))
	assert.Equal(t, "The end is near.\nRun.", e.View().Description)
}

func TestEngine_ViewEndedHasNoChoices(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.LoadGraph(scenarioAGraph()))
	_, err := e.SelectOption(context.Background(), "a")
	require.NoError(t, err)

	v := e.View()
	assert.Equal(t, state.PhaseEnded, v.Phase)
	assert.Equal(t, state.OutcomeWin, v.Outcome)
	assert.Equal(t, "You win the treasure! ✅", v.Description)
	assert.Empty(t, v.Choices)
}
