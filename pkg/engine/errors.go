package engine

import "errors"

// ErrMissingStartNode is returned when the start node id is not in the loaded graph.
var ErrMissingStartNode = errors.New("start node not found in graph")

// ErrGraphLoadFailed is returned when the graph could not be fetched.
var ErrGraphLoadFailed = errors.New("graph load failed")

// ErrGenerationFailed is returned when the backend could not generate a story.
var ErrGenerationFailed = errors.New("story generation failed")

// ErrLoadSuperseded is returned by a load whose result was discarded because
// a later load or a restart happened while it was in flight.
var ErrLoadSuperseded = errors.New("graph load superseded")
