package cmd

import (
	"fmt"

	"github.com/abhisek/mathlearn/internal/learner"
	"github.com/abhisek/mathlearn/internal/ui/views"
	"github.com/spf13/cobra"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark <learner>...",
	Short: "Rank learners on a diagnostic item set",
	Long: `Generate two diagnostic items (difficulty 1 and 2) per topic and evaluate every
learner on the same set. Learners are ranked by solved items, then by total time.
Learner state is not modified.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, _ := cmd.Flags().GetStringSlice("topics")

		ctx := cmd.Context()
		d, err := buildDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		if len(topics) == 0 {
			for _, t := range d.graph.Topics() {
				topics = append(topics, t.ID)
			}
		}

		learners := make([]*learner.State, 0, len(args))
		for _, id := range args {
			st, err := d.scheduler.Load(ctx, id)
			if err != nil {
				return err
			}
			learners = append(learners, st)
		}

		entries, err := d.scheduler.Benchmark(ctx, learners, topics)
		if err != nil {
			return err
		}
		fmt.Printf("Diagnostic set: %d topics, %d items\n", len(topics), 2*len(topics))
		fmt.Println(views.Benchmark(entries))
		return nil
	},
}

func init() {
	benchmarkCmd.Flags().StringSlice("topics", nil, "Topics to include (default: all)")
}
