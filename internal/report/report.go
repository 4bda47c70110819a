// Package report writes the plain-text session summary.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pbaille/focusflow/internal/domain"
)

// RecentCount is how many sittings the summary details.
const RecentCount = 5

// Filename returns the export file name for a summary generated at now.
func Filename(now time.Time) string {
	return "focus_flow_summary_" + now.Format("20060102_150405") + ".txt"
}

// Write renders stats and the last RecentCount sittings to w.
func Write(w io.Writer, stats domain.Stats, sessions []domain.FocusFlowSession, now time.Time) error {
	rule := strings.Repeat("=", 30)

	var sb strings.Builder
	sb.WriteString("=== Focus Flow Session Summary ===\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	sb.WriteString("OVERALL STATISTICS\n")
	sb.WriteString(rule + "\n")
	fmt.Fprintf(&sb, "Total Sessions: %d\n", stats.TotalSessions)
	fmt.Fprintf(&sb, "Total Focus Time: %d minutes\n", stats.TotalFocusTime)
	fmt.Fprintf(&sb, "Total Break Time: %d minutes\n", stats.TotalBreakTime)
	fmt.Fprintf(&sb, "Success Rate: %.1f%%\n", stats.SuccessRate*100)
	fmt.Fprintf(&sb, "Goals Completed: %d/%d\n", stats.CompletedGoals, stats.TotalGoals)
	fmt.Fprintf(&sb, "Average Session Length: %.1f minutes\n\n", stats.AverageSessionLength)

	sb.WriteString("RECENT SESSIONS\n")
	sb.WriteString(rule + "\n")

	if len(sessions) > RecentCount {
		sessions = sessions[len(sessions)-RecentCount:]
	}
	for _, s := range sessions {
		start := s.StartTime.Time
		fmt.Fprintf(&sb, "\nSession: %s (%s)\n", start.Format("2006-01-02 15:04"), humanize.RelTime(start, now, "ago", "from now"))
		fmt.Fprintf(&sb, "Duration: %d minutes\n", s.TotalFocusTime)

		for i, fs := range s.FocusSessions {
			desc := fs.Goal.Description
			if desc == "" {
				desc = "No goal"
			}
			fmt.Fprintf(&sb, "  Block %d: %s\n", i+1, desc)
			if fs.Reflection == nil {
				continue
			}
			mark := "[ ]"
			if fs.Reflection.GoalAchieved {
				mark = "[x]"
			}
			fmt.Fprintf(&sb, "    %s Goal achieved: %t\n", mark, fs.Reflection.GoalAchieved)
			if d := fs.Reflection.Distractions; d != nil && *d != "" {
				fmt.Fprintf(&sb, "    Distractions: %s\n", *d)
			}
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// Export writes the summary of log into dir and returns the file path.
func Export(dir string, log domain.SessionLog, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, Filename(now))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create summary: %w", err)
	}
	if err := Write(f, log.Stats(), log.LoadAll(), now); err != nil {
		f.Close()
		return "", fmt.Errorf("write summary: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close summary: %w", err)
	}
	return path, nil
}
