package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/questmaster/pkg/story"
)

// ErrorResponse is the error body returned by the story backend.
type ErrorResponse struct {
	Error string `json:"error"`
}

// QuestAPI talks to the story backend over HTTP.
type QuestAPI struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewQuestAPI creates a client for the backend at baseURL.
func NewQuestAPI(baseURL string, httpClient *http.Client, logger *slog.Logger) *QuestAPI {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &QuestAPI{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// RequestStoryGeneration asks the backend to generate a new story graph.
// The response body is not used.
func (q *QuestAPI) RequestStoryGeneration(ctx context.Context) error {
	q.logger.Debug("Requesting story generation", "url", q.baseURL+"/genStory")
	if _, err := q.get(ctx, "/genStory"); err != nil {
		return fmt.Errorf("failed to generate story: %w", err)
	}
	return nil
}

// RequestGraph fetches the current story graph.
func (q *QuestAPI) RequestGraph(ctx context.Context) (story.Graph, error) {
	q.logger.Debug("Requesting story graph", "url", q.baseURL+"/getGraph")
	body, err := q.get(ctx, "/getGraph")
	if err != nil {
		return nil, fmt.Errorf("failed to get graph: %w", err)
	}

	var graph story.Graph
	if err := json.Unmarshal(body, &graph); err != nil {
		return nil, fmt.Errorf("failed to parse graph response: %w", err)
	}
	if graph == nil {
		return nil, fmt.Errorf("failed to parse graph response: empty graph")
	}
	q.logger.Debug("Story graph received", "nodes", len(graph))
	return graph, nil
}

func (q *QuestAPI) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, errorResp.Error)
	}
	return body, nil
}
