package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := ctx.client().Status(cmd.Context())
			if err != nil {
				return wrapDaemonError(err)
			}
			if jsonOutput {
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Showscout Daemon", colorize) {
				fmt.Fprintln(out, line)
			}

			runningKind := statusOK
			runningMsg := fmt.Sprintf("pid %d", status.PID)
			if !status.Running {
				runningKind = statusError
				runningMsg = "stopped"
			}
			fmt.Fprintln(out, renderStatusLine("daemon", runningKind, runningMsg, colorize))

			catalogKind := statusOK
			catalogMsg := strings.Join(status.Catalogs, ", ")
			if len(status.Catalogs) == 0 {
				catalogKind = statusWarn
				catalogMsg = "no catalog credentials configured"
			}
			fmt.Fprintln(out, renderStatusLine("catalogs", catalogKind, catalogMsg, colorize))

			llmKind := statusOK
			llmMsg := "configured"
			if !status.LLMConfigured {
				llmKind = statusWarn
				llmMsg = "not configured; contact extraction unavailable"
			}
			fmt.Fprintln(out, renderStatusLine("llm", llmKind, llmMsg, colorize))

			fmt.Fprintln(out, renderStatusLine("database", statusInfo, status.DatabasePath, colorize))
			fmt.Fprintln(out, renderStatusLine("lock", statusInfo, status.LockFilePath, colorize))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the status as JSON")
	return cmd
}
