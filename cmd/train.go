package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/mathlearn/internal/curriculum"
	"github.com/abhisek/mathlearn/internal/learner"
	"github.com/abhisek/mathlearn/internal/session"
	"github.com/abhisek/mathlearn/internal/ui/views"
	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train <learner>...",
	Short: "Train learners through the curriculum toward a target level",
	Long: `Run a progressive training session for each named learner. Learners with a
saved snapshot resume from it; unknown learners start fresh. Several learners
train concurrently, bounded by the session concurrency setting.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().String("target", "expert", "Target proficiency level (beginner, foundation_complete, intermediate, advanced, expert)")
	trainCmd.Flags().Int("safety-limit", session.DefaultSafetyLimit, "Maximum topics trained per session")
	trainCmd.Flags().BoolP("verbose", "v", false, "Show every item of every topic")
}

func runTrain(cmd *cobra.Command, args []string) error {
	targetVal, _ := cmd.Flags().GetString("target")
	limit, _ := cmd.Flags().GetInt("safety-limit")
	verbose, _ := cmd.Flags().GetBool("verbose")

	target, err := curriculum.ParseLevel(targetVal)
	if err != nil {
		return err
	}
	if limit < 1 {
		return fmt.Errorf("--safety-limit must be at least 1, got %d", limit)
	}

	ctx := cmd.Context()
	d, err := buildDeps(ctx, session.WithSafetyLimit(limit))
	if err != nil {
		return err
	}
	defer d.close()

	host := session.NewHost(d.scheduler, learner.NewRegistry(), cfg.Session.Concurrency)
	results, runErr := host.RunAll(ctx, args, target)

	for i, r := range results {
		if i > 0 {
			fmt.Println()
		}
		if r.Report == nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.LearnerID, r.Err)
			continue
		}
		fmt.Println(views.Report(r.Report))
		if verbose {
			for _, run := range r.Report.Topics {
				fmt.Println(views.TopicRun(run))
			}
		}
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s stopped early: %v\n", r.LearnerID, r.Err)
		}
	}
	return runErr
}
