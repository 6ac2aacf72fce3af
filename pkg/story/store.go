package story

// Store holds the loaded graph for a session. It performs no consistency
// checks: dangling option targets are expected and resolved by the engine.
type Store struct {
	graph Graph
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{graph: Graph{}}
}

// Load replaces the held graph. A nil graph is stored as empty.
func (s *Store) Load(g Graph) {
	if g == nil {
		g = Graph{}
	}
	s.graph = g
}

// Reset drops the held graph.
func (s *Store) Reset() {
	s.graph = Graph{}
}

// Len returns the number of nodes in the graph.
func (s *Store) Len() int {
	return len(s.graph)
}

// Graph returns the held graph. Callers must not mutate it.
func (s *Store) Graph() Graph {
	return s.graph
}

// Lookup returns the node stored under id. A missing node is not an error.
func (s *Store) Lookup(id string) (*Node, bool) {
	node, ok := s.graph[id]
	if !ok {
		return nil, false
	}
	return &node, true
}

// OptionsOf lists the options of node id in insertion order. Unknown ids
// yield an empty list.
func (s *Store) OptionsOf(id string) []KeyedOption {
	node, ok := s.graph[id]
	if !ok {
		return nil
	}
	return node.KeyedOptions()
}

// HasOptions reports whether node id exists and has at least one option.
func (s *Store) HasOptions(id string) bool {
	node, ok := s.graph[id]
	return ok && !node.IsTerminal()
}
