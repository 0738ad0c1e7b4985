package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campaign-data/donagg/internal/names"
)

func newScoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "score <name> <name>",
		Short: "Show the normalized forms of two names and their similarity score",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%q -> %q\n", args[0], names.Normalize(args[0]))
			fmt.Fprintf(out, "%q -> %q\n", args[1], names.Normalize(args[1]))
			fmt.Fprintf(out, "score: %d\n", names.Score(args[0], args[1]))
			return nil
		},
	}
}
