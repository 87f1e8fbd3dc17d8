package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		flags  cursorFlags
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run the runnables at a position",
		Long: `Run executes go test for every runnable selected at the given position,
one after another, stopping at the first failure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, runnables, err := a.locate(cmd.Context(), args[0], &flags)
			if err != nil {
				return err
			}

			for _, r := range runnables {
				command := strategy.Command(r)
				if dryRun {
					fmt.Fprintln(cmd.OutOrStdout(), command.String())
					continue
				}

				a.logger.Info("running", slog.String("runnable", r.Name), slog.String("command", command.String()))

				result, err := a.runner.Run(cmd.Context(), command)
				if err != nil {
					return fmt.Errorf("run %s: %w", r.Name, err)
				}
				if !result.Success() {
					return fmt.Errorf("%s failed with exit code %d", r.Name, result.ExitCode)
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print the commands instead of running them")

	return cmd
}
