package services

import "github.com/jwebster45206/questmaster/pkg/engine"

var (
	_ engine.GraphSource    = (*QuestAPI)(nil)
	_ engine.StoryGenerator = (*QuestAPI)(nil)
	_ engine.GraphSource    = (*FileSource)(nil)
	_ engine.GraphSource    = (*MockBackend)(nil)
	_ engine.StoryGenerator = (*MockBackend)(nil)
)
