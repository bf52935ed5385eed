package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newShowsCommand(ctx *commandContext) *cobra.Command {
	var platform string
	var emailsOnly bool
	var missingEmail bool
	var withStats bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "shows",
		Short: "List discovered shows for the active profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if emailsOnly && missingEmail {
				return fmt.Errorf("--emails-only and --missing-email are mutually exclusive")
			}
			var hasEmail *bool
			if emailsOnly {
				value := true
				hasEmail = &value
			}
			if missingEmail {
				value := false
				hasEmail = &value
			}

			response, err := ctx.client().Shows(cmd.Context(), platform, hasEmail, withStats)
			if err != nil {
				return wrapDaemonError(err)
			}
			if jsonOutput {
				return writeJSON(cmd, response)
			}

			out := cmd.OutOrStdout()
			if len(response.Shows) == 0 {
				fmt.Fprintln(out, "No shows discovered yet. Run `showscout discover <topic>` first.")
				return nil
			}

			rows := make([][]string, 0, len(response.Shows))
			for _, show := range response.Shows {
				avgViews := "-"
				if show.AvgViews != nil {
					avgViews = strconv.FormatFloat(*show.AvgViews, 'f', 0, 64)
				}
				email := show.Email
				if email == "" {
					email = "-"
				}
				rows = append(rows, []string{
					show.Name,
					show.Host,
					show.Platform,
					strconv.FormatInt(show.Audience, 10),
					strconv.Itoa(show.Score),
					avgViews,
					email,
					show.Status,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Host", "Platform", "Audience", "Score", "Avg Views", "Email", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
			))

			if response.Stats != nil {
				stats := response.Stats
				fmt.Fprintf(out, "Total: %d  With email: %d  Without: %d\n", stats.Total, stats.WithEmail, stats.WithoutEmail)
				for platformName, count := range stats.ByPlatform {
					fmt.Fprintf(out, "  %s: %d\n", platformName, count)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "", "Filter by platform (video or audio)")
	cmd.Flags().BoolVar(&emailsOnly, "emails-only", false, "Only list shows with a contact address")
	cmd.Flags().BoolVar(&missingEmail, "missing-email", false, "Only list shows without a contact address")
	cmd.Flags().BoolVar(&withStats, "stats", false, "Append aggregate statistics")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the response as JSON")

	return cmd
}
