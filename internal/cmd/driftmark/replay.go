package driftmark

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mverett/driftmark/internal/game/domain/aggregate"
	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/replay"
	"github.com/mverett/driftmark/internal/game/projection"
)

func newReplayCmd(cfg *Config, logger *slog.Logger) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "replay <session-id>",
		Short: "Replay a session's journal and print its state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(cfg, logger)
			if err != nil {
				return err
			}
			defer d.close()
			sessionID := args[0]
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			events, err := d.store.ListEvents(ctx, sessionID, 0, 0)
			if err != nil {
				return err
			}
			if asJSON {
				for _, evt := range events {
					wire, err := event.MarshalWire(evt)
					if err != nil {
						return fmt.Errorf("marshal event %d: %w", evt.Seq, err)
					}
					fmt.Fprintf(out, "%s\n", wire)
				}
			}

			var folder aggregate.Folder
			result, err := replay.ReplayAll(ctx, d.store, &folder, sessionID)
			if err != nil {
				return err
			}
			overview := projection.OverviewFromState(result.State)
			fmt.Fprintf(out, "events: %d\n", result.Applied)
			fmt.Fprintf(out, "phase: %s\n", overview.Phase)
			fmt.Fprintf(out, "quests: %d/%d\n", overview.CompletedQuests, overview.TotalQuests)
			if overview.ActiveQuestID != "" {
				fmt.Fprintf(out, "active quest: %s\n", overview.ActiveQuestID)
			}
			if overview.CurrentNodeID != "" {
				fmt.Fprintf(out, "current node: %s\n", overview.CurrentNodeID)
			}
			fmt.Fprintf(out, "bounty: %d\n", overview.BountyValue)
			for _, standing := range projection.BuildReputationSummary(events).Standings {
				fmt.Fprintf(out, "reputation %s: %d (%s)\n", standing.FactionID, standing.Value, standing.Band)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print each event as wire JSON before the summary")
	return cmd
}
