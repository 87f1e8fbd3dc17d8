package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version information set via ldflags during build.
var (
	Version   string
	Commit    string
	BuildTime string
)

func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// Skip config loading inherited from the root command.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			version := resolveVersion()
			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "locator %s\ncommit: %s\nbuilt: %s\ngo: %s\n",
				version, orUnknown(Commit), orUnknown(BuildTime), runtime.Version())
			return err
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show only version number")

	return cmd
}

func resolveVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
