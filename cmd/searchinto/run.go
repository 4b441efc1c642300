package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchinto/internal/config"
)

func newRunCmd(flags *globalFlags) *cobra.Command {
	var dryRun, abortOnError bool

	cmd := &cobra.Command{
		Use:   "run <job.yaml>",
		Short: "Run one export job and print its summary as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := config.LoadJob(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dry-run") {
				job.DryRun = dryRun
			}
			if cmd.Flags().Changed("abort-on-error") {
				job.AbortOnError = abortOnError
			}

			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			// Compile before connecting so mapping errors need no database.
			if _, err := a.exports.Plan(job); err != nil {
				return err
			}
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}

			summary, runErr := a.exports.Run(cmd.Context(), job)
			if summary != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(summary); err != nil {
					return fmt.Errorf("encode summary: %w", err)
				}
			}
			return runErr
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Assemble documents without writing them")
	cmd.Flags().BoolVar(&abortOnError, "abort-on-error", false, "Stop at the first failed document")
	return cmd
}
