// Package views renders session reports, learner analyses, benchmark
// rankings and the curriculum as styled terminal text.
package views

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/tree"

	"github.com/abhisek/mathlearn/internal/curriculum"
	"github.com/abhisek/mathlearn/internal/learner"
	"github.com/abhisek/mathlearn/internal/session"
	"github.com/abhisek/mathlearn/internal/ui/components"
	"github.com/abhisek/mathlearn/internal/ui/theme"
)

const barWidth = 40

// Report renders a finished session.
func Report(r *session.Report) string {
	summary := []string{
		fmt.Sprintf("Learner   %s", r.LearnerID),
		fmt.Sprintf("Level     %s → %s (target %s)", levelBefore(r), r.FinalLevel, r.TargetLevel),
		fmt.Sprintf("Outcome   %s", reason(r.Reason)),
		fmt.Sprintf("Items     %d attempted, %d solved (%.0f%%)", r.ItemsAttempted, r.Successes, r.SuccessRate()*100),
		fmt.Sprintf("Elapsed   %s", r.Elapsed.Round(time.Millisecond)),
	}

	rows := make([][]string, 0, len(r.Topics))
	for i, run := range r.Topics {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			run.TopicID,
			run.Level.String(),
			fmt.Sprintf("%d/%d", run.Successes(), len(run.Items)),
			fmt.Sprintf("%.2f", run.PassRate),
			mark(run.Success),
		})
	}

	parts := []string{components.Card("Session "+shortID(r.SessionID), strings.Join(summary, "\n"))}
	if len(rows) > 0 {
		parts = append(parts, components.Table(
			[]string{"#", "Topic", "Policy", "Solved", "Pass", "Mastered"}, rows))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// TopicRun renders one batch item by item with the chosen strategies.
func TopicRun(run session.TopicRun) string {
	rows := make([][]string, 0, len(run.Items))
	for _, it := range run.Items {
		strat := it.Strategy
		if it.Err != "" {
			strat = theme.Bad.Render(it.Err)
		}
		rows = append(rows, []string{
			it.ItemID,
			fmt.Sprint(it.Difficulty),
			strat,
			fmt.Sprintf("%.2f", it.PassRate),
			mark(it.ComplexityMatched),
			mark(it.Success),
		})
	}
	title := fmt.Sprintf("%s: %d/%d solved", run.TopicID, run.Successes(), len(run.Items))
	if run.Success {
		title += " · mastered"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.Heading.Render(title),
		components.Table([]string{"Item", "Diff", "Strategy", "Pass", "Optimal", "OK"}, rows),
	)
}

// Analysis renders the structured learning report for one learner.
func Analysis(a learner.Analysis) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render(fmt.Sprintf("%s · %s", a.LearnerID, a.Level)))
	b.WriteString("\n\n")
	b.WriteString(components.NewProgressBar("Mastery", a.Progress.Percent/100, true, barWidth+10).View())
	b.WriteString("\n")
	for _, lp := range a.Progress.Path {
		label := fmt.Sprintf("Layer %d  %d/%d", lp.Level, lp.Completed, lp.Total)
		b.WriteString(components.NewProgressBar(label, lp.Percent/100, false, barWidth+10).View())
		b.WriteString("\n")
	}

	t := a.Trajectory
	b.WriteString("\n")
	b.WriteString(theme.Heading.Render("Trajectory"))
	fmt.Fprintf(&b, "\n  %d attempts, %.0f%% success, average velocity %.2f\n",
		t.TotalAttempts, t.SuccessRate*100, t.AverageVelocity)
	if t.RemainingTopics > 0 {
		fmt.Fprintf(&b, "  %d topics left, about %s to Expert\n", t.RemainingTopics, t.TimeToExpert.Round(time.Minute))
	}

	if len(a.Strengths) > 0 || len(a.FastTopics) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Heading.Render("Strengths"))
		b.WriteString("\n")
		for _, s := range a.Strengths {
			fmt.Fprintf(&b, "  %s %s %.2f\n", theme.Good.Render("+"), s.TopicID, s.Score)
		}
		if len(a.FastTopics) > 0 {
			fmt.Fprintf(&b, "  fast: %s\n", strings.Join(a.FastTopics, ", "))
		}
	}

	if len(a.Weaknesses) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Heading.Render("Weaknesses"))
		b.WriteString("\n")
		for _, w := range a.Weaknesses {
			detail := fmt.Sprintf("score %.2f", w.Score)
			if w.Kind == learner.WeakRecurringError {
				detail = fmt.Sprintf("%d× %s", w.Count, w.Tag)
			}
			fmt.Fprintf(&b, "  %s %s %s\n", theme.Bad.Render("-"), w.TopicID, theme.Hint.Render(detail))
		}
	}

	if len(a.Next) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Heading.Render("Next"))
		fmt.Fprintf(&b, "\n  %s\n", strings.Join(a.Next, " → "))
	}
	if len(a.Progress.StrongCategories) > 0 {
		cats := make([]string, len(a.Progress.StrongCategories))
		for i, c := range a.Progress.StrongCategories {
			cats[i] = string(c)
		}
		fmt.Fprintf(&b, "\n%s %s\n", theme.Hint.Render("Strong categories:"), strings.Join(cats, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Benchmark renders a ranking.
func Benchmark(entries []session.BenchmarkEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			fmt.Sprint(e.Rank),
			e.LearnerID,
			fmt.Sprintf("%d/%d", e.Solved, e.Attempted),
			e.Duration.Round(time.Second).String(),
		})
	}
	return components.Table([]string{"Rank", "Learner", "Solved", "Time"}, rows)
}

// Curriculum renders the topic graph layer by layer. When st is non-nil
// each topic is styled by the learner's mastery state and locked topics
// are dimmed.
func Curriculum(g *curriculum.Graph, st *learner.State) string {
	var mastered map[string]bool
	if st != nil {
		mastered = st.Mastered()
	}

	root := tree.Root(theme.Title.Render(fmt.Sprintf("Curriculum · %d topics", g.Len())))
	for i, layer := range g.Levels() {
		branch := tree.Root(theme.Heading.Render(fmt.Sprintf("Layer %d", i)))
		for _, id := range layer {
			tp, _ := g.Topic(id)
			branch.Child(topicLine(g, tp, st, mastered))
		}
		root.Child(branch)
	}
	return root.String()
}

func topicLine(g *curriculum.Graph, tp curriculum.Topic, st *learner.State, mastered map[string]bool) string {
	line := fmt.Sprintf("%s (%s, %s)", tp.DisplayName(), tp.Difficulty, tp.Complexity)
	if len(tp.Prerequisites) > 0 {
		line += theme.Hint.Render(" ← " + strings.Join(tp.Prerequisites, ", "))
	}
	if st == nil {
		return line
	}
	status := st.Status(tp.ID)
	locked := !g.IsUnlocked(tp.ID, mastered)
	return theme.ForStatus(status, locked).Render(status.Icon()+" "+line) +
		theme.Hint.Render(fmt.Sprintf("  %.2f", st.Score(tp.ID)))
}

func levelBefore(r *session.Report) string {
	if len(r.Topics) == 0 {
		return r.FinalLevel.String()
	}
	return r.Topics[0].Level.String()
}

func reason(r session.Reason) string {
	switch r {
	case session.ReasonTargetReached:
		return theme.Good.Render("target reached")
	case session.ReasonExhausted:
		return theme.Warn.Render("curriculum exhausted")
	case session.ReasonSafetyLimit:
		return theme.Bad.Render("safety limit")
	default:
		return string(r)
	}
}

func mark(ok bool) string {
	if ok {
		return theme.Good.Render("✓")
	}
	return theme.Bad.Render("✗")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
