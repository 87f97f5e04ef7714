package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <learner>",
	Short: "Delete a learner's snapshots and events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		id := args[0]

		if !yes {
			fmt.Printf("Delete all saved state for %q? [y/N] ", id)
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		ctx := cmd.Context()
		backend, err := openBackend(ctx)
		if err != nil {
			return err
		}
		defer backend.Close()

		n, err := backend.SnapshotRepo().Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete snapshots: %w", err)
		}
		if err := backend.EventRepo().DeleteLearner(ctx, id); err != nil {
			return fmt.Errorf("delete events: %w", err)
		}
		fmt.Printf("Removed %d snapshots and all events for %s.\n", n, id)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
