package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQuotaCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Show monthly discovery-run usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			quota, err := ctx.client().Quota(cmd.Context())
			if err != nil {
				return wrapDaemonError(err)
			}
			if jsonOutput {
				return writeJSON(cmd, quota)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Runs used:  %d of %d\n", quota.Used, quota.Limit)
			fmt.Fprintf(out, "Resets:     %s\n", quota.ResetAt.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the quota as JSON")
	return cmd
}
