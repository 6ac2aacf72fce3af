package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/questmaster/pkg/story"
)

// MockBackend is a mock story backend for testing
type MockBackend struct {
	RequestStoryGenerationFunc func(ctx context.Context) error
	RequestGraphFunc           func(ctx context.Context) (story.Graph, error)

	// Graph is returned by RequestGraph when RequestGraphFunc is nil
	Graph story.Graph

	// Track calls for testing
	GenerateCalls int
	GraphCalls    int

	mu sync.Mutex // protects all fields above
}

// NewMockBackend creates a mock backend serving graph
func NewMockBackend(graph story.Graph) *MockBackend {
	return &MockBackend{Graph: graph}
}

// RequestStoryGeneration mocks story generation
func (m *MockBackend) RequestStoryGeneration(ctx context.Context) error {
	m.mu.Lock()
	m.GenerateCalls++
	fn := m.RequestStoryGenerationFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return nil
}

// RequestGraph mocks fetching the graph
func (m *MockBackend) RequestGraph(ctx context.Context) (story.Graph, error) {
	m.mu.Lock()
	m.GraphCalls++
	fn := m.RequestGraphFunc
	graph := m.Graph
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return graph, nil
}

// Calls returns the number of generation and graph requests made so far
func (m *MockBackend) Calls() (generate, graph int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.GenerateCalls, m.GraphCalls
}
