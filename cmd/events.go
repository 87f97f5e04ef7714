package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/mathlearn/internal/llm"
	"github.com/abhisek/mathlearn/internal/store"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect recorded attempt, session and LLM events",
}

// withEvents opens the backend for the duration of fn.
func withEvents(ctx context.Context, fn func(store.EventRepo) error) error {
	backend, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()
	return fn(backend.EventRepo())
}

func queryOpts(cmd *cobra.Command) store.QueryOpts {
	limit, _ := cmd.Flags().GetInt("limit")
	learnerID, _ := cmd.Flags().GetString("learner")
	sessionID, _ := cmd.Flags().GetString("session")
	return store.QueryOpts{Limit: limit, LearnerID: learnerID, SessionID: sessionID}
}

var eventsAttemptsCmd = &cobra.Command{
	Use:   "attempts",
	Short: "List recent attempt events",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEvents(cmd.Context(), func(repo store.EventRepo) error {
			events, err := repo.QueryAttempts(cmd.Context(), queryOpts(cmd))
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			if len(events) == 0 {
				fmt.Println("No attempt events found.")
				return nil
			}

			fmt.Printf("%-6s  %-19s  %-12s  %-18s  %-24s  %4s  %5s  %-24s  %s\n",
				"Seq", "Timestamp", "Learner", "Topic", "Item", "Diff", "Pass", "Strategy", "OK")
			fmt.Println(strings.Repeat("─", 130))
			for _, e := range events {
				d := e.Data
				fmt.Printf("%-6d  %-19s  %-12s  %-18s  %-24s  %4d  %5.2f  %-24s  %s\n",
					e.Sequence,
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					truncate(d.LearnerID, 12),
					truncate(d.TopicID, 18),
					truncate(d.ItemID, 24),
					d.Difficulty,
					d.PassRate,
					truncate(d.Strategy, 24),
					okMark(d.Success),
				)
			}
			return nil
		})
	},
}

var eventsSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent session start and end events",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEvents(cmd.Context(), func(repo store.EventRepo) error {
			events, err := repo.QuerySessions(cmd.Context(), queryOpts(cmd))
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			if len(events) == 0 {
				fmt.Println("No session events found.")
				return nil
			}

			fmt.Printf("%-6s  %-19s  %-8s  %-12s  %-5s  %-18s  %-18s  %-14s  %s\n",
				"Seq", "Timestamp", "Session", "Learner", "Kind", "Target", "Final", "Reason", "Solved")
			fmt.Println(strings.Repeat("─", 120))
			for _, e := range events {
				d := e.Data
				solved := ""
				if d.Action == "end" {
					solved = fmt.Sprintf("%d/%d", d.Successes, d.ItemsAttempted)
				}
				fmt.Printf("%-6d  %-19s  %-8s  %-12s  %-5s  %-18s  %-18s  %-14s  %s\n",
					e.Sequence,
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					truncate(d.SessionID, 8),
					truncate(d.LearnerID, 12),
					d.Action,
					d.TargetLevel,
					d.FinalLevel,
					d.Reason,
					solved,
				)
			}
			return nil
		})
	},
}

var eventsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "List recent LLM request events",
	RunE: func(cmd *cobra.Command, args []string) error {
		purpose, _ := cmd.Flags().GetString("purpose")

		return withEvents(cmd.Context(), func(repo store.EventRepo) error {
			events, err := repo.QueryLLMEvents(cmd.Context(), queryOpts(cmd))
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			if len(events) == 0 {
				fmt.Println("No LLM events found.")
				return nil
			}

			fmt.Printf("%-6s  %-19s  %-14s  %-28s  %-6s  %-6s  %-7s  %s\n",
				"Seq", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
			fmt.Println(strings.Repeat("─", 100))
			for _, e := range events {
				d := e.Data
				if purpose != "" && d.Purpose != purpose {
					continue
				}
				fmt.Printf("%-6d  %-19s  %-14s  %-28s  %-6d  %-6d  %-7d  %s\n",
					e.Sequence,
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					d.Purpose,
					truncate(d.Model, 28),
					d.InputTokens,
					d.OutputTokens,
					d.LatencyMs,
					okMark(d.Success),
				)
			}
			return nil
		})
	},
}

var eventsLLMViewCmd = &cobra.Command{
	Use:   "view <seq>",
	Short: "View the full request and response of an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || seq < 1 {
			return fmt.Errorf("invalid sequence %q", args[0])
		}

		return withEvents(cmd.Context(), func(repo store.EventRepo) error {
			events, err := repo.QueryLLMEvents(cmd.Context(), store.QueryOpts{After: seq - 1, Before: seq + 1})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			if len(events) == 0 {
				return fmt.Errorf("LLM event %d not found", seq)
			}
			e, d := events[0], events[0].Data

			sep := strings.Repeat("─", 60)
			fmt.Printf("Seq:       %d\n", e.Sequence)
			fmt.Printf("Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
			fmt.Printf("Provider:  %s\n", d.Provider)
			fmt.Printf("Model:     %s\n", d.Model)
			fmt.Printf("Purpose:   %s\n", d.Purpose)
			fmt.Printf("Tokens:    %d in / %d out\n", d.InputTokens, d.OutputTokens)
			fmt.Printf("Latency:   %dms\n", d.LatencyMs)
			fmt.Printf("Success:   %v\n", d.Success)
			if d.ErrorMessage != "" {
				fmt.Printf("Error:     %s\n", d.ErrorMessage)
			}

			for _, part := range []struct{ title, body string }{
				{"REQUEST", d.RequestBody},
				{"RESPONSE", d.ResponseBody},
			} {
				fmt.Println()
				fmt.Println(sep)
				fmt.Println(part.title)
				fmt.Println(sep)
				if part.body == "" {
					fmt.Println("(not captured)")
				} else {
					fmt.Println(part.body)
				}
			}
			return nil
		})
	},
}

var eventsLLMSpendCmd = &cobra.Command{
	Use:   "spend",
	Short: "Show LLM token usage and estimated cost by model",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEvents(cmd.Context(), func(repo store.EventRepo) error {
			events, err := repo.QueryLLMEvents(cmd.Context(), store.QueryOpts{})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			spend := llm.SpendByModel(events)
			if len(spend) == 0 {
				fmt.Println("No LLM usage recorded yet.")
				return nil
			}

			fmt.Printf("%-32s  %6s  %6s  %10s  %10s  %10s\n",
				"Model", "Calls", "Failed", "Input", "Output", "Cost")
			fmt.Println(strings.Repeat("─", 84))

			var total float64
			var unpriced []string
			for _, s := range spend {
				cost := "?"
				if s.Priced {
					cost = formatCost(s.CostUSD)
					total += s.CostUSD
				} else {
					unpriced = append(unpriced, s.Model)
				}
				fmt.Printf("%-32s  %6d  %6d  %10d  %10d  %10s\n",
					truncate(s.Model, 32), s.Requests, s.Failures, s.InputTokens, s.OutputTokens, cost)
			}

			fmt.Println(strings.Repeat("─", 84))
			label := "TOTAL"
			if len(unpriced) > 0 {
				label = "TOTAL (partial)"
			}
			fmt.Printf("%-32s  %6s  %6s  %10s  %10s  %10s\n", label, "", "", "", "", formatCost(total))
			if len(unpriced) > 0 {
				fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
			}
			return nil
		})
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func okMark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func init() {
	for _, c := range []*cobra.Command{eventsAttemptsCmd, eventsSessionsCmd, eventsLLMCmd} {
		c.Flags().IntP("limit", "n", 20, "Number of events to show")
	}
	for _, c := range []*cobra.Command{eventsAttemptsCmd, eventsSessionsCmd} {
		c.Flags().String("learner", "", "Only events for this learner")
		c.Flags().String("session", "", "Only events for this session")
	}
	eventsLLMCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. work-items)")

	eventsLLMCmd.AddCommand(eventsLLMViewCmd)
	eventsLLMCmd.AddCommand(eventsLLMSpendCmd)

	eventsCmd.AddCommand(eventsAttemptsCmd)
	eventsCmd.AddCommand(eventsSessionsCmd)
	eventsCmd.AddCommand(eventsLLMCmd)
}
