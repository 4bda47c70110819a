package recommender

import (
	"fmt"
	"strings"

	"github.com/pbaille/focusflow/internal/domain"
)

// Fallback is the deterministic recommendation used when no remote backend
// answers.
func Fallback(task domain.TaskContext) domain.SessionRecommendation {
	focus := 25
	if task.Difficulty >= 4 {
		focus = 35
	} else if task.Difficulty <= 2 {
		focus = 20
	}

	if task.EnergyLevel <= 2 {
		focus = max(15, focus-10)
	} else if task.EnergyLevel >= 4 {
		focus = min(45, focus+10)
	}

	if task.Urgency >= 4 {
		focus = min(50, focus+5)
	}

	return domain.SessionRecommendation{
		FocusDuration:     focus,
		BreakDuration:     max(3, focus/5),
		Reasoning:         fmt.Sprintf("Adapted for difficulty %d/5 and energy %d/5", task.Difficulty, task.EnergyLevel),
		Confidence:        0.6,
		SuggestedApproach: "Focus on completing the core task",
	}
}

// NextDuration computes the next block's focus minutes from how the last
// block went.
func NextDuration(perf domain.PerformanceData, task domain.TaskContext) int {
	base := task.Difficulty * 8
	switch {
	case perf.TaskCompleted && perf.FocusRating >= 4:
		return min(50, base+5)
	case !perf.TaskCompleted && perf.FocusRating <= 2:
		return max(15, base-5)
	default:
		return base
	}
}

// BreakDuration computes the next break from post-block energy.
func BreakDuration(perf domain.PerformanceData) int {
	switch {
	case perf.EnergyAfter <= 2:
		return 10
	case perf.EnergyAfter >= 4:
		return 3
	default:
		return 5
	}
}

// FallbackSuggestion is the advice used when the backend gives none.
func FallbackSuggestion(perf domain.PerformanceData) string {
	switch {
	case perf.TaskCompleted && perf.FocusRating >= 4:
		return "Great session! Keep up the momentum with similar duration."
	case !perf.TaskCompleted:
		return "Try a shorter session next time to build confidence."
	default:
		return "Consider adjusting your environment to reduce distractions."
	}
}

// EnergyAdvice maps post-block energy onto advice.
func EnergyAdvice(perf domain.PerformanceData) string {
	switch {
	case perf.EnergyAfter <= 2:
		return "Take a longer break and consider a lighter task next."
	case perf.EnergyAfter >= 4:
		return "You're energized! Good time for a challenging task."
	default:
		return "Energy is stable. Continue with similar intensity."
	}
}

var mitigations = []struct {
	keyword  string
	strategy string
}{
	{"phone", "Put phone in another room or use Do Not Disturb"},
	{"email", "Close email and check only during breaks"},
	{"social media", "Use website blockers or log out of social accounts"},
	{"noise", "Use noise-canceling headphones or find a quieter space"},
}

// DistractionStrategies returns one mitigation per recognized distraction,
// in input order. Unrecognized distractions are skipped.
func DistractionStrategies(distractions []string) []string {
	strategies := []string{}
	for _, d := range distractions {
		lower := strings.ToLower(d)
		for _, m := range mitigations {
			if strings.Contains(lower, m.keyword) {
				strategies = append(strategies, m.strategy)
				break
			}
		}
	}
	return strategies
}

// SplitDistractions turns free text like "phone, email" into tags.
func SplitDistractions(text string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ';' || r == '\n' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
