package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Tradeoff/internal/optimize"
)

func newOptimizeCommand(opts *rootOptions) *cobra.Command {
	var casePath, outPath string
	var req optimize.Request

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Search a better budget split for a scenario",
		Long: `Search a better budget split for a scenario.

The highest weighted option of the scenario is re-split over the decision
levers on a grid. The best split is added to the case as a new option and the
outcome is printed as JSON. Use --out to save the extended case.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if req.MaxCombinations == 0 {
				req.MaxCombinations = cfg.Optimizer.MaxCombinations
			}

			sim, _, err := runCase(casePath, logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if d := cfg.OptimizeTimeout(); d > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}

			outcome, err := sim.Optimize(ctx, req)
			if err != nil {
				return fmt.Errorf("optimize %q: %w", req.Scenario, err)
			}

			if outPath != "" {
				data, err := yaml.Marshal(sim.Case())
				if err != nil {
					return fmt.Errorf("encode case: %w", err)
				}
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					return fmt.Errorf("write case: %w", err)
				}
				logger.Info("optimized case written", "path", outPath, "option", outcome.Option)
			}
			return writeReport(cmd.OutOrStdout(), outcome)
		},
	}

	cmd.Flags().StringVar(&casePath, "case", "", "Path to a YAML or JSON case document")
	cmd.Flags().StringVar(&req.Scenario, "scenario", "", "Scenario to optimize for")
	cmd.Flags().StringVar(&req.OptionName, "name", "Optimized", "Name of the option to create")
	cmd.Flags().IntVar(&req.MaxCombinations, "max-combinations", 0, "Upper bound on grid points (default from config)")
	cmd.Flags().StringVar(&outPath, "out", "", "Write the extended case document to this path")
	_ = cmd.MarkFlagRequired("case")
	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}
