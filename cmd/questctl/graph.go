package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/jwebster45206/questmaster/pkg/story"
	"github.com/jwebster45206/questmaster/pkg/textfilter"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	graphCmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the current story graph",
		Long:  `Fetches the graph and lists every node with its options in story order.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := setup(cmd)
			graph, err := e.source.RequestGraph(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get graph: %w", err)
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(graph)
			}
			printGraph(cmd.OutOrStdout(), graph)
			return nil
		},
	}

	graphCmd.Flags().Bool("json", false, "Print the graph as JSON")
	return graphCmd
}

// printGraph lists nodes by id and flags targets missing from the graph.
func printGraph(w io.Writer, graph story.Graph) {
	ids := make([]string, 0, len(graph))
	for id := range graph {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		node := graph[id]
		marker := ""
		if node.IsTerminal() {
			marker = " (end)"
		}
		_, _ = fmt.Fprintf(w, "%s%s\n", id, marker)
		for _, ko := range node.KeyedOptions() {
			target := ko.Option.Target
			if _, ok := graph[textfilter.NormalizeNodeID(target)]; !ok {
				target += " (missing)"
			}
			_, _ = fmt.Fprintf(w, "  %s: %s -> %s\n", ko.Key, textfilter.OptionLabel(ko.Option.Text), target)
		}
	}
	_, _ = fmt.Fprintf(w, "%d nodes\n", len(graph))
}
