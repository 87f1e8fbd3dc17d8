package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/specvital/locator/pkg/domain"
	"github.com/specvital/locator/pkg/parser/strategies"
)

// cursorFlags are the position flags shared by find and run.
type cursorFlags struct {
	line   int
	column int
	mode   string
	label  string
}

func (f *cursorFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.line, "line", "l", 1, "cursor line (1-based)")
	cmd.Flags().IntVarP(&f.column, "column", "c", 1, "cursor column (1-based)")
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "nearest", "search mode (nearest, method, file)")
	cmd.Flags().StringVar(&f.label, "label", "", `capability label, e.g. "Test Function"; overrides --mode`)
}

func (f *cursorFlags) position() domain.Position {
	return domain.Position{Row: max(f.line-1, 0), Column: max(f.column-1, 0)}
}

func (f *cursorFlags) searchMode(strategy strategies.Strategy) (domain.SearchMode, error) {
	if f.label != "" {
		mode, ok := strategy.SearchModeFor(f.label)
		if !ok {
			return domain.SearchNearest, fmt.Errorf("%w: %s has no capability %q", domain.ErrPrecondition, strategy.Name(), f.label)
		}
		return mode, nil
	}
	return domain.ParseSearchMode(f.mode)
}

// locate searches path at the cursor and returns the matching runnables
// together with the strategy that found them.
func (a *app) locate(ctx context.Context, path string, flags *cursorFlags) (strategies.Strategy, []domain.Runnable, error) {
	strategy, err := a.registry.ForFile(path, domain.CapabilityTestRunner)
	if err != nil {
		return nil, nil, err
	}

	mode, err := flags.searchMode(strategy)
	if err != nil {
		return nil, nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	target := domain.NewTarget(domain.CapabilityTestRunner, domain.NewBuffer(content, path, flags.position()))
	target.OverrideMode(mode)

	runnables, err := strategy.Runnables(ctx, target)
	if err != nil {
		return nil, nil, err
	}

	return strategy, runnables, nil
}
