package cli

import (
	"github.com/spf13/cobra"
)

func newFindCmd(a *app) *cobra.Command {
	var flags cursorFlags

	cmd := &cobra.Command{
		Use:   "find <file>",
		Short: "Print the runnables at a position",
		Long: `Find prints every runnable selected by the search mode at the given
position, with the command that runs it.

Modes:
  nearest  innermost subtests containing the line, else the enclosing test
  method   the enclosing top-level test
  file     every test in the file, replaced by its subtests`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, runnables, err := a.locate(cmd.Context(), args[0], &flags)
			if err != nil {
				return err
			}
			return writeRunnables(cmd.OutOrStdout(), a.cfg.Output.Format, strategy, runnables)
		},
	}
	flags.register(cmd)

	return cmd
}
