package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Tradeoff/internal/client"
	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
)

func newSubmitCommand(opts *rootOptions) *cobra.Command {
	var server, token, casePath string
	var evaluate bool

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Send a case file to a running Tradeoff server",
		Long: `Send a case file to a running Tradeoff server.

The case is validated locally first. With --evaluate the server evaluates and
appreciates it right away and the results are printed instead of the record.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c, err := model.Load(casePath)
			if err != nil {
				return &InvalidCaseError{Path: casePath, Err: err}
			}

			cl := client.NewHTTPClient(server, token, "tradeoff-cli")
			rec, err := cl.CreateCase(cmd.Context(), c)
			if err != nil {
				return fmt.Errorf("create case: %w", err)
			}
			logger.Info("case submitted", "case_id", rec.ID, "name", rec.Name)
			if !evaluate {
				return writeReport(cmd.OutOrStdout(), rec)
			}

			resp, err := cl.Evaluate(cmd.Context(), rec.ID)
			if err != nil {
				return fmt.Errorf("evaluate case %s: %w", rec.ID, err)
			}
			return writeReport(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8700", "Tradeoff API base URL")
	cmd.Flags().StringVar(&token, "token", "", "Admin token, if the server requires one")
	cmd.Flags().StringVar(&casePath, "case", "", "Path to a YAML or JSON case document")
	cmd.Flags().BoolVar(&evaluate, "evaluate", false, "Evaluate the case after creating it")
	_ = cmd.MarkFlagRequired("case")

	return cmd
}
