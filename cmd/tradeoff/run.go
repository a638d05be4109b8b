package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
	"github.com/MikeSquared-Agency/Tradeoff/internal/scoring"
	"github.com/MikeSquared-Agency/Tradeoff/internal/simulator"
	"github.com/MikeSquared-Agency/Tradeoff/internal/store"
)

// RunReport is what `tradeoff run` prints in json format.
type RunReport struct {
	Case     string                 `json:"case"`
	Status   store.CaseStatus       `json:"status"`
	Results  model.Results          `json:"results"`
	Ranking  []scoring.RankedOption `json:"ranking"`
	Warnings []scoring.Warning      `json:"warnings,omitempty"`
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	var casePath, format string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build, evaluate and appreciate a case file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "summary" {
				return fmt.Errorf("unknown format %q (use json or summary)", format)
			}
			_, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			sim, warnings, err := runCase(casePath, logger)
			if err != nil {
				return err
			}
			ranking, err := sim.Ranking()
			if err != nil {
				return err
			}
			report := RunReport{
				Case:     sim.Case().Name,
				Status:   sim.Status(),
				Results:  sim.Results(),
				Ranking:  ranking,
				Warnings: warnings,
			}
			if format == "summary" {
				return writeSummary(cmd.OutOrStdout(), sim.Case(), report)
			}
			return writeReport(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&casePath, "case", "", "Path to a YAML or JSON case document")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or summary")
	_ = cmd.MarkFlagRequired("case")

	return cmd
}

// runCase loads a case document and takes it through appreciation.
func runCase(path string, logger *slog.Logger) (*simulator.Simulation, []scoring.Warning, error) {
	c, err := model.Load(path)
	if err != nil {
		return nil, nil, &InvalidCaseError{Path: path, Err: err}
	}
	sim := simulator.NewSimulation(c, logger)
	warnings, err := sim.Run()
	if err != nil {
		return nil, nil, &InvalidCaseError{Path: path, Err: err}
	}
	for _, w := range warnings {
		logger.Warn("appreciation warning", "key_output", w.KeyOutput, "message", w.Message)
	}
	return sim, warnings, nil
}

func writeReport(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSummary(w io.Writer, c *model.Case, report RunReport) error {
	fmt.Fprintf(w, "Case: %s (%s)\n\n", report.Case, report.Status)
	for _, s := range c.Scenarios {
		sr := report.Results[s.Name]
		if sr == nil {
			continue
		}
		fmt.Fprintf(w, "%s (weight %g)\n", s.Name, s.Weight)
		for _, opt := range c.Options {
			cell := sr.Options[opt.Name]
			if cell == nil {
				continue
			}
			marker := " "
			if opt.Name == sr.HighestWeightedOption {
				marker = "*"
			}
			fmt.Fprintf(w, "  %s %-32s %10.4f\n", marker, opt.Name, cell.OptionAppreciation)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "Ranking")
	for i, r := range report.Ranking {
		fmt.Fprintf(w, "  %d. %-32s %10.4f\n", i+1, r.Option, r.Appreciation)
	}
	for _, warn := range report.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	return nil
}
