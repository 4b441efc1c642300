package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchinto/internal/config"
	chiTransport "github.com/kailas-cloud/searchinto/internal/transport/chi"
)

func newPlanCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <job.yaml>",
		Short: "Compile a job's field mapping and print the plan as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := config.LoadJob(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			plan, err := a.exports.Plan(job)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(chiTransport.NewPlanResponse(plan)); err != nil {
				return fmt.Errorf("encode plan: %w", err)
			}
			return nil
		},
	}
}
