package cmd

import (
	"fmt"

	"github.com/abhisek/mathlearn/internal/curriculum"
	"github.com/abhisek/mathlearn/internal/learner"
	"github.com/abhisek/mathlearn/internal/strategy"
	"github.com/abhisek/mathlearn/internal/ui/components"
	"github.com/abhisek/mathlearn/internal/ui/views"
	"github.com/spf13/cobra"
)

var curriculumCmd = &cobra.Command{
	Use:   "curriculum",
	Short: "Show the topic graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		learnerID, _ := cmd.Flags().GetString("learner")

		graph, err := loadGraph()
		if err != nil {
			return err
		}

		var st *learner.State
		if learnerID != "" {
			backend, err := openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()
			if st, err = loadLearner(cmd.Context(), backend.SnapshotRepo(), learnerID); err != nil {
				return err
			}
		}

		fmt.Println(views.Curriculum(graph, st))
		return nil
	},
}

var curriculumValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a curriculum YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		graph, err := curriculum.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d topics in %d layers\n", args[0], graph.Len(), len(graph.Levels()))
		return nil
	},
}

var curriculumStrategiesCmd = &cobra.Command{
	Use:   "strategies <topic>",
	Short: "List the solution strategies considered for a topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		graph, err := loadGraph()
		if err != nil {
			return err
		}
		tp, ok := graph.Topic(args[0])
		if !ok {
			return fmt.Errorf("unknown topic %q", args[0])
		}

		cat := strategy.Default()
		var rows [][]string
		for _, s := range cat.For(tp) {
			rows = append(rows, []string{s.Name, s.Explanation})
		}
		fmt.Println(components.Table([]string{"Strategy", "Explanation"}, rows))
		return nil
	},
}

func init() {
	curriculumCmd.Flags().String("learner", "", "Overlay a learner's mastery state")

	curriculumCmd.AddCommand(curriculumValidateCmd)
	curriculumCmd.AddCommand(curriculumStrategiesCmd)
}
