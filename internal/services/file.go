package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jwebster45206/questmaster/pkg/story"
)

// FileSource reads a story graph saved as JSON, in the same shape the
// backend serves from /getGraph.
type FileSource struct {
	Path string
}

// NewFileSource returns a graph source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// RequestGraph reads and parses the file.
func (f *FileSource) RequestGraph(ctx context.Context) (story.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	var graph story.Graph
	if err := json.Unmarshal(data, &graph); err != nil {
		return nil, fmt.Errorf("failed to parse graph file %s: %w", f.Path, err)
	}
	if graph == nil {
		graph = story.Graph{}
	}
	return graph, nil
}
