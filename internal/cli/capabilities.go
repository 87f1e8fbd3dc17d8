package cli

import (
	"github.com/spf13/cobra"

	"github.com/specvital/locator/pkg/domain"
)

func newCapabilitiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities <file>",
		Short: "List the search labels offered for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := a.registry.ForFile(args[0], domain.CapabilityTestRunner)
			if err != nil {
				return err
			}
			return writeCapabilities(cmd.OutOrStdout(), a.cfg.Output.Format, strategy.Capabilities())
		},
	}
}
