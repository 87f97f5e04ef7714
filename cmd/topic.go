package cmd

import (
	"fmt"

	"github.com/abhisek/mathlearn/internal/content"
	"github.com/abhisek/mathlearn/internal/ui/views"
	"github.com/spf13/cobra"
)

var topicCmd = &cobra.Command{
	Use:   "topic <learner> <topic>",
	Short: "Train one topic outside the progressive loop",
	Long: `Generate a batch of work items for a single topic and evaluate them for the
learner, regardless of prerequisites. The learner's snapshot is updated.`,
	Args: cobra.ExactArgs(2),
	RunE: runTopic,
}

func init() {
	topicCmd.Flags().IntP("count", "n", 5, "Number of items")
	topicCmd.Flags().Int("min", 1, "Minimum item difficulty (1-4)")
	topicCmd.Flags().Int("max", 2, "Maximum item difficulty (1-4)")
}

func runTopic(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	lo, _ := cmd.Flags().GetInt("min")
	hi, _ := cmd.Flags().GetInt("max")
	learnerID, topicID := args[0], args[1]

	ctx := cmd.Context()
	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	st, err := d.scheduler.Load(ctx, learnerID)
	if err != nil {
		return err
	}
	before := st.Level(d.graph)

	run, err := d.scheduler.TrainTopic(ctx, st, topicID, count, content.DifficultyRange{Min: lo, Max: hi})
	if err != nil {
		return err
	}

	fmt.Println(views.TopicRun(run))
	if after := st.Level(d.graph); after != before {
		fmt.Printf("\nLevel: %s → %s\n", before, after)
	}
	return nil
}
