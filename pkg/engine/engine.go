package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jwebster45206/questmaster/pkg/ending"
	"github.com/jwebster45206/questmaster/pkg/state"
	"github.com/jwebster45206/questmaster/pkg/story"
	"github.com/jwebster45206/questmaster/pkg/textfilter"
)

// DefaultStartNode is the id the generator gives the first node of a story.
const DefaultStartNode = "node_1"

// Engine runs one game session over a loaded story graph.
//
// Phases move Idle -> Playing -> Ended, and Restart returns to Idle from
// anywhere. At most one option selection is resolved at a time: a selection
// made while another is pending is ignored.
type Engine struct {
	mu        sync.Mutex
	store     *story.Store
	session   *state.Session
	formatter *textfilter.Formatter
	delay     Delay
	startNode string
	logger    *slog.Logger

	// generation is bumped by every load and restart so that a graph
	// fetched by an overtaken Load is discarded.
	generation uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithDelay sets the delay waited on before resolving a selection.
func WithDelay(d Delay) Option {
	return func(e *Engine) {
		if d != nil {
			e.delay = d
		}
	}
}

// WithStartNode sets the node id games start from.
func WithStartNode(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.startNode = id
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMarkup sets the markup used for formatted descriptions.
func WithMarkup(m textfilter.Markup) Option {
	return func(e *Engine) {
		e.formatter = textfilter.NewFormatter(m)
	}
}

// New creates an idle engine with an empty graph.
func New(opts ...Option) *Engine {
	e := &Engine{
		store:     story.NewStore(),
		session:   state.NewSession(),
		formatter: textfilter.NewFormatter(textfilter.HTMLMarkup),
		delay:     NoDelay,
		startNode: DefaultStartNode,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartNode returns the id games start from.
func (e *Engine) StartNode() string {
	return e.startNode
}

// Generate asks gen to produce a new story. Traversal state is untouched.
func (e *Engine) Generate(ctx context.Context, gen StoryGenerator) error {
	e.logger.Info("Requesting story generation")
	if err := gen.RequestStoryGeneration(ctx); err != nil {
		e.logger.Error("Story generation failed", "error", err)
		return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	e.logger.Info("Story generated")
	return nil
}

// Load fetches the graph from src and starts a game at the start node.
// On failure any game in progress is dropped and the session is left Idle
// with LastError set.
func (e *Engine) Load(ctx context.Context, src GraphSource) error {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	graph, err := src.RequestGraph(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		e.logger.Debug("Discarding superseded graph load", "generation", gen, "current", e.generation)
		return ErrLoadSuperseded
	}
	if err != nil {
		e.logger.Error("Failed to load graph", "error", err)
		e.store.Reset()
		e.session.Fail("Could not load the game. Make sure a story has been generated.")
		return fmt.Errorf("%w: %w", ErrGraphLoadFailed, err)
	}

	e.logger.Info("Graph loaded", "nodes", len(graph))
	e.store.Load(graph)
	return e.startLocked(e.startNode)
}

// LoadGraph installs an already fetched graph and starts a game.
func (e *Engine) LoadGraph(graph story.Graph) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	e.store.Load(graph)
	return e.startLocked(e.startNode)
}

// Start begins a game at startNodeID in the loaded graph. If the node is
// missing the session returns to Idle and ErrMissingStartNode is returned.
func (e *Engine) Start(startNodeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.startLocked(startNodeID)
}

func (e *Engine) startLocked(startNodeID string) error {
	if _, ok := e.store.Lookup(startNodeID); !ok {
		e.logger.Warn("Start node not found", "node_id", startNodeID, "nodes", e.store.Len())
		e.session.Fail("Start node not found in the story graph.")
		return fmt.Errorf("%w: %q", ErrMissingStartNode, startNodeID)
	}

	e.session.Begin(startNodeID)
	e.logger.Info("Game started", "session_id", e.session.ID, "node_id", startNodeID)
	return nil
}

// SelectOption resolves the option stored under key on the current node.
// It reports false without error when the selection is ignored: the game
// is not being played, the key is unknown, or another selection is pending.
// If ctx ends while waiting on the delay, the selection is abandoned and
// ctx's error is returned.
func (e *Engine) SelectOption(ctx context.Context, key string) (bool, error) {
	e.mu.Lock()
	if !e.session.IsPlaying() || e.session.Pending {
		e.mu.Unlock()
		return false, nil
	}
	node, ok := e.store.Lookup(e.session.CurrentNodeID)
	if !ok {
		e.mu.Unlock()
		return false, nil
	}
	opt, ok := node.Option(key)
	if !ok {
		e.mu.Unlock()
		return false, nil
	}
	e.session.Pending = true
	sessionID := e.session.ID
	e.mu.Unlock()

	waitErr := e.delay.Wait(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.ID != sessionID || !e.session.Pending {
		// Restarted or started over while waiting.
		return false, nil
	}
	e.session.Pending = false
	if waitErr != nil {
		return false, waitErr
	}

	e.resolveLocked(node, key, opt)
	return true, nil
}

func (e *Engine) resolveLocked(from *story.Node, key string, opt story.Option) {
	log := e.logger.With("session_id", e.session.ID, "from", e.session.CurrentNodeID, "option", key)
	targetID := textfilter.NormalizeNodeID(opt.Target)

	if next, ok := e.store.Lookup(targetID); ok {
		e.session.MoveTo(targetID)
		log.Debug("Moved to node", "node_id", targetID)

		if next.IsTerminal() {
			outcome := ending.ClassifyTerminalNode(*next)
			e.session.End(outcome)
			log.Info("Game ended on terminal node", "node_id", targetID, "outcome", outcome)
		}
		return
	}

	a := ending.AnalyzeUnresolvedTarget(opt.Text, opt.Target, from.Description)
	e.session.End(a.Outcome)
	log.Info("Game ended on unresolved target",
		"target", opt.Target,
		"target_has_win_glyph", a.TargetHasWinGlyph,
		"option_has_win_signal", a.OptionHasWinSignal,
		"puzzle_related", a.IsPuzzleRelated,
		"treasure_context", a.IsTreasureContext,
		"outcome", a.Outcome,
	)
}

// Restart returns to Idle and clears the graph and session.
func (e *Engine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	e.store.Reset()
	e.session.Reset()
	e.logger.Info("Game restarted")
}

// Session returns a copy of the current session state.
func (e *Engine) Session() state.Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.session.Snapshot()
}

// Graph returns the loaded graph. Callers must not mutate it.
func (e *Engine) Graph() story.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.store.Graph()
}
