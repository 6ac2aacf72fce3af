package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Ask the backend to generate a new story",
		Long:  `Calls /genStory and waits for the backend to finish. This can take minutes.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := setup(cmd)
			if err := e.newEngine().Generate(cmd.Context(), e.api); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Story generated.")
			return nil
		},
	}
}
