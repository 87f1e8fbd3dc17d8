package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/specvital/locator/pkg/parser"
)

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "List every runnable under a directory",
		Long: `List scans a directory tree for Go test files and prints the runnables of
each file as a file-mode search reports them. Directories named .git,
vendor, testdata, node_modules and .cache are always skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			opts := append(a.cfg.ScanOptions(),
				parser.WithRegistry(a.registry),
				parser.WithLogger(a.logger),
			)

			result, err := parser.Scan(cmd.Context(), root, opts...)
			if err != nil && !errors.Is(err, parser.ErrScanTimeout) {
				return err
			}
			if err != nil {
				a.logger.Warn("scan incomplete", slog.String("error", err.Error()))
			}

			for _, scanErr := range result.Errors {
				a.logger.Warn("scan error",
					slog.String("path", scanErr.Path),
					slog.String("phase", scanErr.Phase),
					slog.String("error", scanErr.Err.Error()),
				)
			}

			a.logger.Debug("scan finished",
				slog.Int("scanned", result.Stats.FilesScanned),
				slog.Int("matched", result.Stats.FilesMatched),
				slog.Int("failed", result.Stats.FilesFailed),
				slog.Duration("duration", result.Stats.Duration),
			)

			return writeInventory(cmd.OutOrStdout(), a.cfg.Output.Format, result)
		},
	}

	cmd.Flags().Int("workers", 0, "number of concurrent file parsers (0: GOMAXPROCS)")
	cmd.Flags().StringSliceP("exclude", "x", nil, "directory names or globs to skip (can be repeated)")
	cmd.Flags().StringSlice("pattern", nil, "only scan files matching these globs")
	cmd.Flags().Duration("timeout", 0, "scan timeout")

	bindFlag(a.v, "scan.workers", cmd, "workers")
	bindFlag(a.v, "scan.exclude", cmd, "exclude")
	bindFlag(a.v, "scan.patterns", cmd, "pattern")
	bindFlag(a.v, "scan.timeout", cmd, "timeout")

	return cmd
}
