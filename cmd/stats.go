package cmd

import (
	"fmt"

	"github.com/abhisek/mathlearn/internal/learner"
	"github.com/abhisek/mathlearn/internal/ui/views"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [learner]",
	Short: "Show learning statistics",
	Long:  "Without arguments, list learners with saved state. With a learner ID, show its analysis.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		backend, err := openBackend(ctx)
		if err != nil {
			return err
		}
		defer backend.Close()
		snaps := backend.SnapshotRepo()

		if len(args) == 0 {
			ids, err := snaps.Learners(ctx)
			if err != nil {
				return fmt.Errorf("list learners: %w", err)
			}
			if len(ids) == 0 {
				fmt.Println("No learners yet. Start one with: mathlearn train <learner>")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		}

		graph, err := loadGraph()
		if err != nil {
			return err
		}
		st, err := loadLearner(ctx, snaps, args[0])
		if err != nil {
			return err
		}
		fmt.Println(views.Analysis(learner.Analyze(st, graph)))
		return nil
	},
}
