package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/pbaille/focusflow/internal/domain"
)

// Renderer prints styled reports to a writer.
type Renderer struct {
	out io.Writer
	st  styles
}

// NewRenderer creates a Renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out, st: newStyles()}
}

// Panel prints body in a bordered box.
func (r *Renderer) Panel(title, body string, color lipgloss.Color) {
	box := r.st.panel(color).Render(r.st.title.Render(title) + "\n\n" + strings.TrimSpace(body))
	fmt.Fprintln(r.out, box)
}

func (r *Renderer) table(title string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.st.muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return r.st.header
			case col == 0:
				return r.st.metric
			default:
				return r.st.value
			}
		}).
		Headers("Metric", "Value").
		Rows(rows...)

	fmt.Fprintln(r.out, r.st.title.Render(title))
	fmt.Fprintln(r.out, t.Render())
}

// Stats prints the overall statistics table.
func (r *Renderer) Stats(st domain.Stats) {
	r.table("Overall Statistics", [][]string{
		{"Total Sessions", humanize.Comma(int64(st.TotalSessions))},
		{"Total Focus Time", minutes(st.TotalFocusTime)},
		{"Total Break Time", minutes(st.TotalBreakTime)},
		{"Success Rate", percent(st.SuccessRate)},
		{"Average Session Length", fmt.Sprintf("%.1f minutes", st.AverageSessionLength)},
		{"Goals Completed", fmt.Sprintf("%d/%d", st.CompletedGoals, st.TotalGoals)},
	})
}

// Sitting prints the summary of one finished sitting.
func (r *Renderer) Sitting(s *domain.FocusFlowSession) {
	achieved, reflected := s.GoalsAchieved()
	rate := 0.0
	if reflected > 0 {
		rate = float64(achieved) / float64(reflected)
	}
	r.table("Session Summary", [][]string{
		{"Total Focus Time", minutes(s.TotalFocusTime)},
		{"Total Break Time", minutes(s.TotalBreakTime)},
		{"Focus Sessions", fmt.Sprint(len(s.FocusSessions))},
		{"Goals Achieved", fmt.Sprintf("%d/%d (%s)", achieved, reflected, percent(rate))},
	})

	fmt.Fprintln(r.out, r.st.title.Render("Session Details:"))
	for i, fs := range s.FocusSessions {
		fmt.Fprintf(r.out, "  Block %d: %s %s\n", i+1, r.mark(fs), fs.Goal.Description)
	}
}

// Recent prints sittings newest first with their relative start time.
func (r *Renderer) Recent(sessions []domain.FocusFlowSession, now time.Time) {
	if len(sessions) == 0 {
		fmt.Fprintln(r.out, r.st.muted.Render("No sessions in this period."))
		return
	}
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		achieved, reflected := s.GoalsAchieved()
		fmt.Fprintf(r.out, "%s  %s  %s focus, %d/%d goals\n",
			r.st.label.Render(s.StartTime.Format("2006-01-02 15:04")),
			r.st.muted.Render(humanize.RelTime(s.StartTime.Time, now, "ago", "from now")),
			minutes(s.TotalFocusTime), achieved, reflected)
		for j, fs := range s.FocusSessions {
			fmt.Fprintf(r.out, "    %d. %s %s\n", j+1, r.mark(fs), fs.Goal.Description)
		}
	}
}

// Insights prints the weekly insights.
func (r *Renderer) Insights(in domain.WeeklyInsights) {
	if in.Message != "" {
		fmt.Fprintln(r.out, r.st.muted.Render(in.Message))
		return
	}
	r.table("Weekly Insights", [][]string{
		{"Sessions", fmt.Sprint(in.TotalSessions)},
		{"Success Rate", percent(in.SuccessRate)},
		{"Average Focus", fmt.Sprintf("%.1f/5", in.AverageFocus)},
		{"Focus Time", minutes(in.TotalFocusTime)},
	})
	if len(in.TopDistractions) > 0 {
		fmt.Fprintln(r.out, r.st.title.Render("Top distractions:"))
		for _, d := range in.TopDistractions {
			fmt.Fprintf(r.out, "  %s (%d)\n", d.Distraction, d.Count)
		}
	}
	for _, rec := range in.Recommendations {
		fmt.Fprintf(r.out, "%s %s\n", r.st.warn.Render("*"), rec)
	}
}

// Recommendation prints a session recommendation.
func (r *Renderer) Recommendation(rec domain.SessionRecommendation) {
	r.Panel("Recommendation", recommendationText(rec), blue)
}

func recommendationText(rec domain.SessionRecommendation) string {
	return fmt.Sprintf("Focus: %s\nBreak: %s\nConfidence: %s\n\n%s\n%s",
		minutes(rec.FocusDuration), minutes(rec.BreakDuration), percent(rec.Confidence),
		rec.Reasoning, rec.SuggestedApproach)
}

func (r *Renderer) mark(fs domain.FocusSession) string {
	switch {
	case fs.Reflection != nil && fs.Reflection.GoalAchieved:
		return r.st.good.Render("[x]")
	case !fs.Completed:
		return r.st.warn.Render("[-]")
	default:
		return r.st.bad.Render("[ ]")
	}
}

func minutes(n int) string {
	if n == 1 {
		return "1 minute"
	}
	return humanize.Comma(int64(n)) + " minutes"
}

func percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
