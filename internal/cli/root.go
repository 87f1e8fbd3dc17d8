// Package cli implements the locator command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/specvital/locator/pkg/config"
	"github.com/specvital/locator/pkg/parser/strategies"
	"github.com/specvital/locator/pkg/parser/strategies/gotesting"
	"github.com/specvital/locator/pkg/runner"
)

// commandRunner executes generated test commands.
type commandRunner interface {
	Run(ctx context.Context, cmd runner.Command) (runner.Result, error)
}

// app carries state shared by every subcommand once the root command has
// loaded configuration.
type app struct {
	v        *viper.Viper
	cfgFile  string
	cfg      *config.Config
	logger   *slog.Logger
	registry *strategies.Registry
	runner   commandRunner
}

// NewRootCmd builds the locator command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{v: viper.New()})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locator",
		Short: "Find and run the Go test under the cursor",
		Long: `Locator reads a Go test file, finds the test or subtest at a position
and prints or runs the go test invocation that executes exactly that unit.

Subtests are recognized for string literal names and for table-driven
tests whose cases are declared in the loop, in a variable or at package
level.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./.locator.yaml)")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (json, text)")
	flags.StringP("output", "o", "", "Output format (table, json)")
	flags.String("go", "", "go binary used in generated commands")

	bindFlag(a.v, "log.level", cmd, "log-level")
	bindFlag(a.v, "log.format", cmd, "log-format")
	bindFlag(a.v, "output.format", cmd, "output")
	bindFlag(a.v, "go.binary", cmd, "go")

	cmd.AddCommand(
		newFindCmd(a),
		newRunCmd(a),
		newListCmd(a),
		newCapabilitiesCmd(a),
		newVersionCmd(),
	)

	return cmd
}

func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	flag := cmd.PersistentFlags().Lookup(name)
	if flag == nil {
		flag = cmd.Flags().Lookup(name)
	}
	if err := v.BindPFlag(key, flag); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", name, err)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}

	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger

	a.registry = strategies.NewRegistry()
	a.registry.Register(gotesting.NewStrategy(
		gotesting.WithGoBinary(cfg.Go.Binary),
		gotesting.WithLogger(logger),
	))

	if a.runner == nil {
		a.runner = runner.New(
			runner.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
			runner.WithLogger(logger),
		)
	}

	logger.Debug("configuration loaded",
		slog.String("config", a.v.ConfigFileUsed()),
		slog.String("output", cfg.Output.Format),
		slog.String("go", cfg.Go.Binary),
	)

	return nil
}

// Execute runs the root command until completion or an interrupt.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
