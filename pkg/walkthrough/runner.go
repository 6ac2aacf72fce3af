package walkthrough

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/questmaster/internal/services"
	"github.com/jwebster45206/questmaster/pkg/engine"
	"github.com/jwebster45206/questmaster/pkg/textfilter"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// ErrNoGraph is returned for a suite with no graph when the runner has no
// default source.
var ErrNoGraph = errors.New("suite has no graph and no default source is configured")

// Runner plays suites against a fresh engine each.
type Runner struct {
	source    engine.GraphSource
	startNode string
	logger    *slog.Logger
	mode      ErrorHandlingMode
}

// Option configures a Runner.
type Option func(*Runner)

// WithSource sets the graph source used by suites without a graph of their own.
func WithSource(src engine.GraphSource) Option {
	return func(r *Runner) {
		r.source = src
	}
}

// WithStartNode sets the start node for suites that do not name one.
func WithStartNode(id string) Option {
	return func(r *Runner) {
		r.startNode = id
	}
}

// WithLogger sets the logger passed to each engine.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithErrorHandling sets whether a failed step stops its suite.
func WithErrorHandling(mode ErrorHandlingMode) Option {
	return func(r *Runner) {
		r.mode = mode
	}
}

// NewRunner creates a runner. Failed steps do not stop a suite by default.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		startNode: engine.DefaultStartNode,
		logger:    slog.New(slog.DiscardHandler),
		mode:      ErrorHandlingContinue,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadSuite loads a suite from a YAML file. A relative graph_file is
// resolved against the suite file's directory.
func LoadSuite(filename string) (Suite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return Suite{}, fmt.Errorf("failed to read suite file %s: %w", filename, err)
	}

	var suite Suite
	if err := yaml.Unmarshal(content, &suite); err != nil {
		return Suite{}, fmt.Errorf("failed to parse YAML in %s: %w", filename, err)
	}
	if suite.GraphFile != "" && !filepath.IsAbs(suite.GraphFile) {
		suite.GraphFile = filepath.Join(filepath.Dir(filename), suite.GraphFile)
	}
	return suite, nil
}

// LoadSuiteWithExpansion loads a suite and expands it if it's a sequence.
// Case files are resolved relative to the sequence file.
func LoadSuiteWithExpansion(filename string) ([]Job, error) {
	return loadExpanded(filename, nil)
}

func loadExpanded(filename string, seen []string) ([]Job, error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", filename, err)
	}
	if slices.Contains(seen, abs) {
		return nil, fmt.Errorf("sequence cycle through %s", filename)
	}

	suite, err := LoadSuite(filename)
	if err != nil {
		return nil, err
	}
	if !suite.IsSequence() {
		return []Job{{Name: suite.Name, Suite: suite, CaseFile: filename}}, nil
	}

	var jobs []Job
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(filepath.Dir(filename), caseFile)
		subJobs, err := loadExpanded(casePath, append(seen, abs))
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}
	return jobs, nil
}

// RunSuite plays suite from its start node and checks every step.
// The returned error is the first failure, if any.
func (r *Runner) RunSuite(ctx context.Context, suite Suite) (RunResult, error) {
	start := time.Now()
	result := RunResult{
		Job:     Job{Name: suite.Name, Suite: suite},
		Results: make([]StepResult, 0, len(suite.Steps)),
	}
	log := r.logger.With("suite", suite.Name)

	startNode := suite.StartNode
	if startNode == "" {
		startNode = r.startNode
	}
	e := engine.New(
		engine.WithStartNode(startNode),
		engine.WithLogger(r.logger),
		engine.WithMarkup(textfilter.PlainMarkup),
	)

	if err := r.load(ctx, e, suite); err != nil {
		result.Error = fmt.Errorf("failed to start game: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}

	for i, step := range suite.Steps {
		if err := ctx.Err(); err != nil {
			if result.Error == nil {
				result.Error = err
			}
			break
		}

		log.Debug("Running step", "step", i+1, "of", len(suite.Steps), "name", step.Name)
		stepResult := r.runStep(ctx, e, suite, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			log.Info("Step failed", "step", i+1, "name", step.Name, "error", stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i+1, step.Name, stepResult.Error)
			}
			if r.mode == ErrorHandlingExit {
				break
			}
		}
	}

	result.SessionID = e.Session().ID
	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) load(ctx context.Context, e *engine.Engine, suite Suite) error {
	switch {
	case len(suite.Graph) > 0:
		return e.LoadGraph(suite.Graph)
	case suite.GraphFile != "":
		return e.Load(ctx, services.NewFileSource(suite.GraphFile))
	case r.source != nil:
		return e.Load(ctx, r.source)
	default:
		return ErrNoGraph
	}
}

func (r *Runner) runStep(ctx context.Context, e *engine.Engine, suite Suite, step Step) StepResult {
	start := time.Now()
	result := StepResult{StepName: step.Name}

	var accepted bool
	if step.Choose == RestartChoice {
		result.IsRestart = true
		e.Restart()
		if err := r.load(ctx, e, suite); err != nil {
			result.Error = fmt.Errorf("failed to restart game: %w", err)
			result.Duration = time.Since(start)
			return result
		}
		accepted = true
	} else {
		var err error
		accepted, err = e.SelectOption(ctx, step.Choose)
		if err != nil {
			result.Error = fmt.Errorf("failed to select %q: %w", step.Choose, err)
			result.Duration = time.Since(start)
			return result
		}
	}

	if err := checkExpectations(step.Expect, accepted, e.View()); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
	} else {
		result.Success = true
	}
	result.Duration = time.Since(start)
	return result
}

// checkExpectations validates the expectations against the view after a step
func checkExpectations(exp Expectations, accepted bool, v engine.View) error {
	if exp.Accepted != nil && *exp.Accepted != accepted {
		return fmt.Errorf("expected accepted to be %t, got %t", *exp.Accepted, accepted)
	}
	if exp.Phase != nil && *exp.Phase != v.Phase {
		return fmt.Errorf("expected phase %s, got %s", *exp.Phase, v.Phase)
	}
	if exp.Node != nil && *exp.Node != v.CurrentNodeID {
		return fmt.Errorf("expected node %s, got %s", *exp.Node, v.CurrentNodeID)
	}
	if exp.Outcome != nil && *exp.Outcome != v.Outcome {
		return fmt.Errorf("expected outcome %q, got %q", *exp.Outcome, v.Outcome)
	}
	if exp.Turns != nil {
		if *exp.Turns != v.Turns {
			return fmt.Errorf("expected turns to be %d, got %d", *exp.Turns, v.Turns)
		}
	}

	if exp.Choices != nil {
		keys := make([]string, 0, len(v.Choices))
		for _, c := range v.Choices {
			keys = append(keys, c.Key)
		}
		if !slices.Equal(exp.Choices, keys) {
			return fmt.Errorf("expected choices %v, got %v", exp.Choices, keys)
		}
	}

	desc := strings.ToLower(v.Description)
	for _, text := range exp.DescriptionContains {
		if !strings.Contains(desc, strings.ToLower(text)) {
			return fmt.Errorf("expected description to contain '%s', but it didn't", text)
		}
	}
	for _, text := range exp.DescriptionNotContains {
		if strings.Contains(desc, strings.ToLower(text)) {
			return fmt.Errorf("expected description to NOT contain '%s', but it did", text)
		}
	}
	return nil
}
