// Package session runs a sitting: a sequence of focus blocks, each with a
// goal, a countdown, a reflection and an optional break, persisted once the
// sitting is done.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pbaille/focusflow/internal/config"
	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/observability"
	"github.com/pbaille/focusflow/internal/recommender"
	"github.com/pbaille/focusflow/internal/timer"
)

// ErrCancelled is returned when the user declines to start a block or
// leaves the goal empty. Nothing is saved.
var ErrCancelled = errors.New("session cancelled")

// State is a step of the sitting state machine.
type State int

const (
	Planning State = iota
	Countdown
	Running
	Reflecting
	Done
	Cancelled
)

func (s State) String() string {
	switch s {
	case Planning:
		return "PLANNING"
	case Countdown:
		return "COUNTDOWN"
	case Running:
		return "RUNNING"
	case Reflecting:
		return "REFLECTING"
	case Done:
		return "DONE"
	case Cancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Plan is shown once when a sitting starts.
type Plan struct {
	AvailableMinutes int
	MaxBlocks        int
	FocusMinutes     int
	BreakMinutes     int
}

// ReflectionInput is what the user reports after a completed block.
type ReflectionInput struct {
	GoalAchieved  bool
	FocusRating   int
	EnergyAfter   int
	Distractions  string
	WhatWorked    string
	WhatDidntWork string
	Improvements  string
}

// Summary is shown when a sitting ends.
type Summary struct {
	Session *domain.FocusFlowSession
	Saved   bool
}

// Prompter is the interactive surface of a sitting.
type Prompter interface {
	Plan(p Plan)
	Advice(title, body string)
	Goal(ctx context.Context, block, total int, suggestion string) (string, error)
	ConfirmStart(ctx context.Context, goal string, minutes int) (bool, error)
	Reflect(ctx context.Context, prompt string) (ReflectionInput, error)
	ConfirmBreak(ctx context.Context, minutes int) (bool, error)
	Summary(s Summary)
}

// Runner drives a countdown to its end, typically while rendering it.
type Runner interface {
	Run(ctx context.Context, t *timer.Timer) (timer.Result, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, t *timer.Timer) (timer.Result, error)

func (f RunnerFunc) Run(ctx context.Context, t *timer.Timer) (timer.Result, error) {
	return f(ctx, t)
}

// Unattended runs a countdown without displaying it.
var Unattended = RunnerFunc(func(ctx context.Context, t *timer.Timer) (timer.Result, error) {
	return t.Run(ctx)
})

// Planner recommends and adapts block durations.
type Planner interface {
	Recommend(ctx context.Context, task domain.TaskContext) domain.SessionRecommendation
	AdaptAfterSession(ctx context.Context, perf domain.PerformanceData, task domain.TaskContext) domain.Adaptation
}

// Coach supplies the goal and reflection prompts.
type Coach interface {
	SuggestGoal(ctx context.Context, block, minutes int, previous []domain.Goal) string
	ReflectionPrompt(ctx context.Context, goal domain.Goal, minutes int) string
}

// GoalResolver rewrites goal text, e.g. links into page titles.
type GoalResolver interface {
	Resolve(ctx context.Context, goal string) string
}

// Orchestrator sequences the blocks of a sitting.
type Orchestrator struct {
	planner  Planner
	coach    Coach
	history  domain.SessionLog
	prompt   Prompter
	runner   Runner
	resolver GoalResolver
	cfg      config.Timer
	clock    timer.Clock
	minute   time.Duration
	newID    func() string
	observe  func(State)
	log      *slog.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithRunner sets how countdowns are driven. Defaults to Unattended.
func WithRunner(r Runner) Option {
	return func(o *Orchestrator) { o.runner = r }
}

// WithResolver sets the goal resolver.
func WithResolver(r GoalResolver) Option {
	return func(o *Orchestrator) { o.resolver = r }
}

// WithClock sets the clock used for timers and the sitting budget.
func WithClock(c timer.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithMinute scales the length of one minute.
func WithMinute(d time.Duration) Option {
	return func(o *Orchestrator) { o.minute = d }
}

// WithIDs overrides sitting id generation.
func WithIDs(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

// WithObserver is called on every state transition.
func WithObserver(fn func(State)) Option {
	return func(o *Orchestrator) { o.observe = fn }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// New creates an Orchestrator.
func New(planner Planner, coach Coach, history domain.SessionLog, prompt Prompter, cfg config.Timer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		planner: planner,
		coach:   coach,
		history: history,
		prompt:  prompt,
		runner:  Unattended,
		cfg:     cfg,
		clock:   timer.RealClock{},
		minute:  time.Minute,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = observability.OrDefault(o.log)
	return o
}

// MaxBlocks is how many focus+break blocks fit the budget at the
// configured default durations.
func (o *Orchestrator) MaxBlocks(available int) int {
	per := o.cfg.FocusMinutes + o.cfg.BreakMinutes
	if per <= 0 {
		return 0
	}
	return available / per
}

// Run plays one sitting of available minutes for task. It returns the
// finished sitting, or ErrCancelled. A failed save is logged and reported
// through Summary; it does not fail the sitting.
func (o *Orchestrator) Run(ctx context.Context, available int, task domain.TaskContext) (*domain.FocusFlowSession, error) {
	start := o.clock.Now()
	sitting := &domain.FocusFlowSession{
		SessionID:            o.newID(),
		StartTime:            domain.At(start),
		AvailableTimeMinutes: available,
		FocusSessions:        []domain.FocusSession{},
	}
	budget := time.Duration(available) * o.minute
	hasTime := func() bool { return o.clock.Now().Sub(start) < budget }

	maxBlocks := o.MaxBlocks(available)
	o.prompt.Plan(Plan{
		AvailableMinutes: available,
		MaxBlocks:        maxBlocks,
		FocusMinutes:     o.cfg.FocusMinutes,
		BreakMinutes:     o.cfg.BreakMinutes,
	})
	o.log.Info("sitting started", "session_id", sitting.SessionID, "available", available, "blocks", maxBlocks)

	rec := o.planner.Recommend(ctx, task)
	focus, brk := rec.FocusDuration, rec.BreakDuration
	o.prompt.Advice("Recommendation", fmt.Sprintf("%d min focus, %d min break (confidence %.0f%%)\n%s\n%s",
		focus, brk, rec.Confidence*100, rec.Reasoning, rec.SuggestedApproach))

	var goals []domain.Goal
	for block := 1; block <= maxBlocks && hasTime(); block++ {
		o.transition(Planning)

		suggestion := o.coach.SuggestGoal(ctx, block, focus, goals)
		text, err := o.prompt.Goal(ctx, block, maxBlocks, suggestion)
		if err != nil {
			return nil, fmt.Errorf("read goal: %w", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return o.cancel(sitting)
		}
		if o.resolver != nil {
			text = o.resolver.Resolve(ctx, text)
		}

		ready, err := o.prompt.ConfirmStart(ctx, text, focus)
		if err != nil {
			return nil, fmt.Errorf("confirm start: %w", err)
		}
		if !ready {
			return o.cancel(sitting)
		}

		fs, err := o.runBlock(ctx, sitting.SessionID, block, text, focus)
		if err != nil {
			return nil, err
		}

		if fs.Completed {
			o.transition(Reflecting)
			adapt, err := o.reflect(ctx, &fs, task)
			if err != nil {
				return nil, err
			}
			focus, brk = adapt.NextSessionDuration, adapt.BreakDuration
		}

		sitting.FocusSessions = append(sitting.FocusSessions, fs)
		sitting.TotalFocusTime += fs.DurationMinutes
		goals = append(goals, fs.Goal)

		if ctx.Err() != nil {
			break
		}
		if block < maxBlocks && hasTime() {
			took, err := o.takeBreak(ctx, brk)
			if err != nil {
				return nil, err
			}
			if took {
				sitting.TotalBreakTime += brk
			}
		}
	}

	return o.finish(sitting), nil
}

func (o *Orchestrator) runBlock(ctx context.Context, sessionID string, block int, goal string, minutes int) (domain.FocusSession, error) {
	o.transition(Countdown)
	res, err := o.countdown(ctx, "Starting focus session in", o.cfg.StartDelay)
	if err != nil {
		return domain.FocusSession{}, err
	}

	began := o.clock.Now()
	if res.Outcome != timer.Interrupted {
		o.transition(Running)
		res, err = o.countdown(ctx, "Focus", time.Duration(minutes)*o.minute)
		if err != nil {
			return domain.FocusSession{}, err
		}
	}
	ended := o.clock.Now()

	o.log.Info("block finished", "block", block, "outcome", res.Outcome, "elapsed", res.Elapsed)
	return domain.FocusSession{
		SessionID:       fmt.Sprintf("%s_block_%d", sessionID, block),
		StartTime:       domain.At(began),
		EndTime:         domain.Ptr(ended),
		DurationMinutes: minutes,
		Goal:            domain.Goal{Description: goal, CreatedAt: domain.At(began)},
		Completed:       res.Outcome == timer.Completed,
	}, nil
}

func (o *Orchestrator) reflect(ctx context.Context, fs *domain.FocusSession, task domain.TaskContext) (domain.Adaptation, error) {
	prompt := o.coach.ReflectionPrompt(ctx, fs.Goal, fs.DurationMinutes)
	in, err := o.prompt.Reflect(ctx, prompt)
	if err != nil {
		return domain.Adaptation{}, fmt.Errorf("read reflection: %w", err)
	}

	fs.Goal.Completed = in.GoalAchieved
	fs.Reflection = &domain.Reflection{
		SessionID:            fs.SessionID,
		GoalAchieved:         in.GoalAchieved,
		Distractions:         optional(in.Distractions),
		WhatWorked:           optional(in.WhatWorked),
		WhatDidntWork:        optional(in.WhatDidntWork),
		NextTimeImprovements: optional(in.Improvements),
		CreatedAt:            domain.At(o.clock.Now()),
	}

	adapt := o.planner.AdaptAfterSession(ctx, domain.PerformanceData{
		TaskCompleted:   in.GoalAchieved,
		FocusRating:     in.FocusRating,
		EnergyAfter:     in.EnergyAfter,
		Distractions:    recommender.SplitDistractions(in.Distractions),
		WhatWorked:      in.WhatWorked,
		SessionDuration: fs.DurationMinutes,
	}, task)

	var body strings.Builder
	fmt.Fprintf(&body, "Next block: %d min focus, %d min break\n%s\n%s",
		adapt.NextSessionDuration, adapt.BreakDuration, adapt.Suggestions, adapt.EnergyManagement)
	for _, s := range adapt.DistractionStrategies {
		fmt.Fprintf(&body, "\n- %s", s)
	}
	o.prompt.Advice("Adaptation", body.String())
	return adapt, nil
}

func (o *Orchestrator) takeBreak(ctx context.Context, minutes int) (bool, error) {
	ok, err := o.prompt.ConfirmBreak(ctx, minutes)
	if err != nil {
		return false, fmt.Errorf("confirm break: %w", err)
	}
	if !ok {
		return false, nil
	}
	if _, err := o.countdown(ctx, "Starting break in", o.cfg.StartDelay); err != nil {
		return false, err
	}
	if _, err := o.countdown(ctx, "Break", time.Duration(minutes)*o.minute); err != nil {
		return false, err
	}
	return true, nil
}

func (o *Orchestrator) countdown(ctx context.Context, label string, d time.Duration) (timer.Result, error) {
	t := timer.New(d, timer.WithLabel(label), timer.WithTick(o.cfg.Tick), timer.WithClock(o.clock))
	res, err := o.runner.Run(ctx, t)
	if err != nil {
		return res, fmt.Errorf("run %s timer: %w", strings.ToLower(label), err)
	}
	return res, nil
}

func (o *Orchestrator) finish(sitting *domain.FocusFlowSession) *domain.FocusFlowSession {
	sitting.EndTime = domain.Ptr(o.clock.Now())
	sitting.Completed = true
	o.transition(Done)

	saved := true
	if err := o.history.Append(sitting); err != nil {
		o.log.Error("sitting not saved", "session_id", sitting.SessionID, "error", err)
		saved = false
	}
	o.prompt.Summary(Summary{Session: sitting, Saved: saved})
	return sitting
}

func (o *Orchestrator) cancel(sitting *domain.FocusFlowSession) (*domain.FocusFlowSession, error) {
	o.transition(Cancelled)
	o.log.Info("sitting cancelled", "session_id", sitting.SessionID, "blocks", len(sitting.FocusSessions))
	return nil, ErrCancelled
}

func (o *Orchestrator) transition(s State) {
	o.log.Debug("state", "state", s)
	if o.observe != nil {
		o.observe(s)
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
