package main

import (
	"fmt"

	"github.com/jwebster45206/questmaster/pkg/walkthrough"
	"github.com/spf13/cobra"
)

func newWalkCmd() *cobra.Command {
	walkCmd := &cobra.Command{
		Use:   "walk <suite.yaml>...",
		Short: "Run scripted walkthroughs",
		Long: `Plays each YAML walkthrough and checks the expectations of every step.
Suites without a graph of their own use --graph or the backend.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := setup(cmd)
			mode, _ := cmd.Flags().GetString("err")
			out := cmd.OutOrStdout()

			var jobs []walkthrough.Job
			for _, file := range args {
				expanded, err := walkthrough.LoadSuiteWithExpansion(file)
				if err != nil {
					return err
				}
				jobs = append(jobs, expanded...)
			}

			runner := walkthrough.NewRunner(
				walkthrough.WithSource(e.source),
				walkthrough.WithStartNode(e.cfg.StartNode),
				walkthrough.WithLogger(e.logger),
				walkthrough.WithErrorHandling(walkthrough.ErrorHandlingMode(mode)),
			)

			failed := 0
			for _, job := range jobs {
				_, _ = fmt.Fprintf(out, "%s\n", job.Name)
				result, err := runner.RunSuite(cmd.Context(), job.Suite)
				for i, res := range result.Results {
					if res.Success {
						_, _ = fmt.Fprintf(out, "  [%d/%d] ✓ %s (%v)\n", i+1, len(job.Suite.Steps), res.StepName, res.Duration)
					} else {
						_, _ = fmt.Fprintf(out, "  [%d/%d] ✗ %s: %v\n", i+1, len(job.Suite.Steps), res.StepName, res.Error)
					}
				}
				if err != nil {
					failed++
					if len(result.Results) == 0 {
						_, _ = fmt.Fprintf(out, "  ✗ %v\n", err)
					}
				}
				_, _ = fmt.Fprintf(out, "  %d/%d steps passed\n", result.Passed(), result.Counted())
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d walkthroughs failed", failed, len(jobs))
			}
			return nil
		},
	}

	walkCmd.Flags().String("err", string(walkthrough.ErrorHandlingContinue), "Error handling mode: 'continue' (run all steps) or 'exit' (stop on first failure)")
	return walkCmd
}
