package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"showscout/internal/api"
)

func newProfileCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the active discovery profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := ctx.client().Profile(cmd.Context())
			if err != nil {
				return wrapDaemonError(err)
			}
			if jsonOutput {
				return writeJSON(cmd, profile)
			}
			printProfile(cmd, profile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the profile as JSON")
	cmd.AddCommand(newProfileSetCommand(ctx))
	return cmd
}

func newProfileSetCommand(ctx *commandContext) *cobra.Command {
	var name string
	var minAudience int
	var guestOnly bool
	var targetCount int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the active discovery profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			current, err := client.Profile(cmd.Context())
			if err != nil {
				return wrapDaemonError(err)
			}

			// Only flags the caller passed override the stored values.
			update := *current
			flags := cmd.Flags()
			if flags.Changed("name") {
				update.Name = name
			}
			if flags.Changed("min-audience") {
				update.MinAudience = minAudience
			}
			if flags.Changed("guest-only") {
				update.GuestOnly = guestOnly
			}
			if flags.Changed("target") {
				update.TargetCount = targetCount
			}

			updated, err := client.UpdateProfile(cmd.Context(), update)
			if err != nil {
				return wrapDaemonError(err)
			}
			printProfile(cmd, updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name")
	cmd.Flags().IntVar(&minAudience, "min-audience", 0, "Minimum audience size for candidates")
	cmd.Flags().BoolVar(&guestOnly, "guest-only", false, "Only keep shows that feature guests")
	cmd.Flags().IntVar(&targetCount, "target", 0, "Default number of shows per discovery run")

	return cmd
}

func printProfile(cmd *cobra.Command, profile *api.Profile) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Profile:      %s\n", profile.Name)
	fmt.Fprintf(out, "Min audience: %d\n", profile.MinAudience)
	fmt.Fprintf(out, "Guest only:   %s\n", yesNo(profile.GuestOnly))
	fmt.Fprintf(out, "Target count: %d\n", profile.TargetCount)
}
