// Package recommender turns task attributes and logged history into focus
// and break durations, asking a remote model when one is configured and
// falling back to fixed threshold rules otherwise.
package recommender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/llm"
	"github.com/pbaille/focusflow/internal/observability"
)

// Defaults substituted for fields missing from a remote recommendation.
const (
	defaultFocus      = 25
	defaultBreak      = 5
	defaultConfidence = 0.5
	defaultReasoning  = "Standard Pomodoro session"
	defaultApproach   = "Focus on the task"
)

// Recommender produces session recommendations and post-block adaptations.
type Recommender struct {
	gen     domain.TextGenerator
	history domain.SessionLog
	log     *slog.Logger
	now     func() time.Time
}

// Option configures a Recommender
type Option func(*Recommender)

// WithLogger sets the logger for swallowed backend and storage failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recommender) { r.log = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Recommender) { r.now = now }
}

// New creates a Recommender. A nil gen runs fully offline.
func New(gen domain.TextGenerator, history domain.SessionLog, opts ...Option) *Recommender {
	r := &Recommender{gen: gen, history: history, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	r.log = observability.OrDefault(r.log)
	return r
}

// Online reports whether a remote backend is configured.
func (r *Recommender) Online() bool {
	return r.gen != nil
}

// Recommend returns focus and break durations for task. Backend failures and
// unparseable replies fall back to the threshold rules.
func (r *Recommender) Recommend(ctx context.Context, task domain.TaskContext) domain.SessionRecommendation {
	if r.gen == nil {
		return Fallback(task)
	}

	prompt := buildPlanPrompt(task, r.PerformanceSummary(task.TaskType), r.now())
	reply, err := r.gen.Generate(ctx, planSystemPrompt, prompt)
	if err != nil {
		r.log.Warn("recommendation backend failed, using fallback", "error", err)
		return Fallback(task)
	}

	rec, err := ParseRecommendation(reply)
	if err != nil {
		r.log.Warn("unparseable recommendation, using fallback", "error", err)
		return Fallback(task)
	}
	return rec
}

type remoteRecommendation struct {
	FocusDuration     *float64 `json:"focus_duration"`
	BreakDuration     *float64 `json:"break_duration"`
	Reasoning         *string  `json:"reasoning"`
	Confidence        *float64 `json:"confidence"`
	SuggestedApproach *string  `json:"suggested_approach"`
}

// ParseRecommendation reads the first JSON object in a model reply and
// fills missing fields with defaults. It returns llm.ErrNoJSON when the
// reply has no usable object.
func ParseRecommendation(reply string) (domain.SessionRecommendation, error) {
	raw, err := llm.ExtractJSON(reply)
	if err != nil {
		return domain.SessionRecommendation{}, err
	}

	var remote remoteRecommendation
	if err := json.Unmarshal(raw, &remote); err != nil {
		return domain.SessionRecommendation{}, fmt.Errorf("%w: %v", llm.ErrNoJSON, err)
	}

	rec := domain.SessionRecommendation{
		FocusDuration:     defaultFocus,
		BreakDuration:     defaultBreak,
		Reasoning:         defaultReasoning,
		Confidence:        defaultConfidence,
		SuggestedApproach: defaultApproach,
	}
	if remote.FocusDuration != nil && *remote.FocusDuration > 0 {
		rec.FocusDuration = int(math.Round(*remote.FocusDuration))
	}
	if remote.BreakDuration != nil && *remote.BreakDuration > 0 {
		rec.BreakDuration = int(math.Round(*remote.BreakDuration))
	}
	if remote.Reasoning != nil {
		rec.Reasoning = *remote.Reasoning
	}
	if remote.Confidence != nil {
		rec.Confidence = math.Max(0, math.Min(1, *remote.Confidence))
	}
	if remote.SuggestedApproach != nil {
		rec.SuggestedApproach = *remote.SuggestedApproach
	}
	return rec, nil
}

// PerformanceSummary describes logged results for one task type.
func (r *Recommender) PerformanceSummary(taskType string) string {
	records := r.history.LoadPerformance()
	if len(records) == 0 {
		return "No historical data available"
	}

	var completed, total, minutes int
	for _, rec := range records {
		if rec.TaskType != taskType {
			continue
		}
		total++
		minutes += rec.Duration
		if rec.Completed {
			completed++
		}
	}
	if total == 0 {
		return fmt.Sprintf("No data for %s tasks", taskType)
	}

	successRate := float64(completed) / float64(total)
	avgDuration := float64(minutes) / float64(total)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s tasks:\n", cases.Title(language.English).String(taskType))
	fmt.Fprintf(&sb, "- Success rate: %.1f%%\n", successRate*100)
	fmt.Fprintf(&sb, "- Average duration: %.0f minutes\n", avgDuration)
	fmt.Fprintf(&sb, "- Total sessions: %d", total)
	return sb.String()
}

// AdaptAfterSession records how a block went and computes the next block's
// parameters. A failed history write is logged and does not block advice.
func (r *Recommender) AdaptAfterSession(ctx context.Context, perf domain.PerformanceData, task domain.TaskContext) domain.Adaptation {
	rec := domain.NewPerformanceRecord(task, perf, domain.At(r.now()))
	if err := r.history.AppendPerformance(rec); err != nil {
		r.log.Warn("could not record performance", "error", err)
	}

	suggestions := ""
	if r.gen != nil {
		reply, err := r.gen.Generate(ctx, adaptSystemPrompt, buildAdaptPrompt(task, perf))
		if err != nil {
			r.log.Warn("adaptation backend failed, using fallback", "error", err)
		} else {
			suggestions = llm.PlainText(reply)
		}
	}
	if suggestions == "" {
		suggestions = FallbackSuggestion(perf)
	}

	return domain.Adaptation{
		NextSessionDuration:   NextDuration(perf, task),
		BreakDuration:         BreakDuration(perf),
		Suggestions:           suggestions,
		EnergyManagement:      EnergyAdvice(perf),
		DistractionStrategies: DistractionStrategies(perf.Distractions),
	}
}

// WeeklyInsights summarizes performance records from the last seven days.
func (r *Recommender) WeeklyInsights() domain.WeeklyInsights {
	records := r.history.LoadPerformance()
	if len(records) == 0 {
		return domain.WeeklyInsights{Message: "No data available yet"}
	}

	weekAgo := r.now().Add(-7 * 24 * time.Hour)
	var recent []domain.PerformanceRecord
	for _, rec := range records {
		if rec.Timestamp.After(weekAgo) {
			recent = append(recent, rec)
		}
	}
	if len(recent) == 0 {
		return domain.WeeklyInsights{Message: "No sessions in the last week"}
	}

	n := len(recent)
	var completed, focusSum, minutes, lowEnergy, mentions int
	counts := map[string]int{}
	var order []string
	for _, rec := range recent {
		if rec.Completed {
			completed++
		}
		focusSum += rec.FocusRating
		minutes += rec.Duration
		if rec.EnergyAfter <= 2 {
			lowEnergy++
		}
		for _, d := range rec.Distractions {
			mentions++
			if counts[d] == 0 {
				order = append(order, d)
			}
			counts[d]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	top := []domain.DistractionCount{}
	for _, d := range order[:min(3, len(order))] {
		top = append(top, domain.DistractionCount{Distraction: d, Count: counts[d]})
	}

	successRate := float64(completed) / float64(n)

	recommendations := []string{}
	if successRate < 0.5 {
		recommendations = append(recommendations, "Consider shorter sessions to build momentum")
	} else if successRate > 0.8 {
		recommendations = append(recommendations, "You're doing great! Consider longer sessions")
	}
	if float64(lowEnergy) > float64(n)*0.5 {
		recommendations = append(recommendations, "Focus on energy management - take longer breaks")
	}
	if mentions > n*2 {
		recommendations = append(recommendations, "Work on reducing distractions - try a dedicated workspace")
	}

	return domain.WeeklyInsights{
		TotalSessions:   n,
		SuccessRate:     successRate,
		AverageFocus:    float64(focusSum) / float64(n),
		TotalFocusTime:  minutes,
		TopDistractions: top,
		Recommendations: recommendations,
	}
}
