package main

import (
	"fmt"

	"github.com/jwebster45206/questmaster/internal/services"
	"github.com/jwebster45206/questmaster/pkg/story"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [graph.json]",
		Short: "Check that a story graph is playable",
		Long: `Validates a graph file, or the --graph file or backend graph when no file is given.
Errors make the story unplayable; warnings point at content that ends games early or
can never be seen.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := setup(cmd)
			src := e.source
			name := "backend graph"
			if len(args) == 1 {
				src = services.NewFileSource(args[0])
				name = args[0]
			} else if path, _ := cmd.Flags().GetString("graph"); path != "" {
				name = path
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Validating %s...\n", name)

			graph, err := src.RequestGraph(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get graph: %w", err)
			}

			report := story.Validate(graph, e.cfg.StartNode)
			for _, issue := range report.Issues {
				_, _ = fmt.Fprintf(out, "  - %s\n", issue)
			}

			if report.HasErrors() {
				return fmt.Errorf("validation failed: %d errors, %d warnings", report.Count(story.SeverityError), report.Count(story.SeverityWarning))
			}
			_, _ = fmt.Fprintf(out, "Graph is playable (%d nodes, %d warnings).\n", len(graph), report.Count(story.SeverityWarning))
			return nil
		},
	}
}
