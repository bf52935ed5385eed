package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"showscout/internal/api"
	"showscout/internal/progress"
)

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	var requireEmail bool
	var deepResearch bool
	var targetCount int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "discover <topic> [topic...]",
		Short: "Run show discovery for one or more topics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			request := api.DiscoverRequest{
				Topics:       args,
				RequireEmail: requireEmail,
				DeepResearch: deepResearch,
				TargetCount:  targetCount,
			}

			onEvent := func(event progress.Event) {
				if jsonOutput {
					line, err := json.Marshal(event)
					if err != nil {
						return
					}
					fmt.Fprintln(out, string(line))
					return
				}
				fmt.Fprintln(out, renderDiscoverEvent(event, colorize))
			}

			err := ctx.client().Discover(runCtx, request, onEvent)
			if err != nil {
				var quotaErr *api.QuotaExceededError
				if errors.As(err, &quotaErr) {
					return fmt.Errorf("%s (resets %s)", quotaErr.Message, quotaErr.ResetAt.Format("2006-01-02"))
				}
				return wrapDaemonError(err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&requireEmail, "require-email", false, "Only keep shows with a verified contact address")
	cmd.Flags().BoolVar(&deepResearch, "deep-research", false, "Sample more content and scrape show websites for contacts")
	cmd.Flags().IntVarP(&targetCount, "count", "n", 0, "Number of shows to discover (overrides the profile)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit raw progress events as JSON lines")

	return cmd
}

func renderDiscoverEvent(event progress.Event, colorize bool) string {
	switch event.Type {
	case progress.EventStart:
		return renderStatusLine("start", statusInfo, fmt.Sprintf("%s (target %d, %d queries)", event.Message, event.Target, event.QueriesTotal), colorize)
	case progress.EventSearching:
		return renderStatusLine("search", statusInfo, fmt.Sprintf("%q (%d/%d)", event.Message, event.QueriesRun, event.QueriesTotal), colorize)
	case progress.EventAnalyzing:
		return renderStatusLine("analyze", statusInfo, event.Message, colorize)
	case progress.EventFound:
		return renderStatusLine("found", statusOK, describeCandidate(event), colorize)
	case progress.EventComplete:
		return renderStatusLine("done", statusOK, event.Message, colorize)
	case progress.EventError:
		return renderStatusLine("error", statusError, event.Err, colorize)
	default:
		return renderStatusLine(string(event.Type), statusInfo, event.Message, colorize)
	}
}

func describeCandidate(event progress.Event) string {
	c := event.Candidate
	if c == nil {
		return fmt.Sprintf("%d/%d", event.Discovered, event.Target)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s", c.Name, c.Platform)
	if c.Host != "" {
		fmt.Fprintf(&b, ", host %s", c.Host)
	}
	fmt.Fprintf(&b, ", audience %d, score %d)", c.Audience, c.Score)
	if c.Email != "" {
		fmt.Fprintf(&b, " %s", c.Email)
	}
	fmt.Fprintf(&b, " [%d/%d]", event.Discovered, event.Target)
	return b.String()
}
