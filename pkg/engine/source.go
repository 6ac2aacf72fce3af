package engine

import (
	"context"

	"github.com/jwebster45206/questmaster/pkg/story"
)

// GraphSource returns a complete story graph.
type GraphSource interface {
	RequestGraph(ctx context.Context) (story.Graph, error)
}

// StoryGenerator asks the backend to generate a new story graph.
type StoryGenerator interface {
	RequestStoryGeneration(ctx context.Context) error
}
