package session_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pbaille/focusflow/internal/coach"
	"github.com/pbaille/focusflow/internal/config"
	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/observability"
	"github.com/pbaille/focusflow/internal/recommender"
	"github.com/pbaille/focusflow/internal/session"
	"github.com/pbaille/focusflow/internal/store"
	"github.com/pbaille/focusflow/internal/timer"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time                       { return c.now }
func (c *fakeClock) NewTicker(time.Duration) timer.Ticker { panic("not used") }

// fakeRunner skips the countdown and moves the clock by its full length.
type fakeRunner struct {
	clock     *fakeClock
	interrupt map[int]bool // focus block numbers to stop early
	stopStart map[int]bool // block numbers whose pre-start countdown is stopped
	advance   map[int]time.Duration
	labels    []string
	focus     int
	starts    int
}

func (r *fakeRunner) Run(_ context.Context, t *timer.Timer) (timer.Result, error) {
	r.labels = append(r.labels, t.Label())
	d := t.Duration()
	if t.Label() == "Starting focus session in" {
		r.starts++
		if r.stopStart[r.starts] {
			return timer.Result{Outcome: timer.Interrupted}, nil
		}
	}
	if t.Label() == "Focus" {
		r.focus++
		if extra, ok := r.advance[r.focus]; ok {
			d = extra
		}
		if r.interrupt[r.focus] {
			r.clock.now = r.clock.now.Add(d / 2)
			return timer.Result{Outcome: timer.Interrupted, Elapsed: d / 2}, nil
		}
	}
	r.clock.now = r.clock.now.Add(d)
	return timer.Result{Outcome: timer.Completed, Elapsed: d}, nil
}

type fakePrompter struct {
	goals      []string
	ready      bool
	takeBreak  bool
	reflection session.ReflectionInput

	plan       session.Plan
	advice     []string
	minutes    []int
	summary    *session.Summary
	reflected  int
	breaksSeen []int
}

func (p *fakePrompter) Plan(plan session.Plan)    { p.plan = plan }
func (p *fakePrompter) Advice(title, body string) { p.advice = append(p.advice, title) }
func (p *fakePrompter) Summary(s session.Summary) { p.summary = &s }

func (p *fakePrompter) Goal(_ context.Context, _, _ int, _ string) (string, error) {
	if len(p.goals) == 0 {
		return "", nil
	}
	g := p.goals[0]
	p.goals = p.goals[1:]
	return g, nil
}

func (p *fakePrompter) ConfirmStart(_ context.Context, _ string, minutes int) (bool, error) {
	p.minutes = append(p.minutes, minutes)
	return p.ready, nil
}

func (p *fakePrompter) Reflect(context.Context, string) (session.ReflectionInput, error) {
	p.reflected++
	return p.reflection, nil
}

func (p *fakePrompter) ConfirmBreak(_ context.Context, minutes int) (bool, error) {
	p.breaksSeen = append(p.breaksSeen, minutes)
	return p.takeBreak, nil
}

type upperResolver struct{}

func (upperResolver) Resolve(_ context.Context, goal string) string { return strings.ToUpper(goal) }

type failingBackend struct{ *store.MemoryBackend }

func (failingBackend) Append(string, []byte) error { return errors.New("disk full") }

type fixture struct {
	clock   *fakeClock
	runner  *fakeRunner
	prompt  *fakePrompter
	history *store.Store
	states  []session.State
	orch    *session.Orchestrator
}

func newFixture(backend store.Backend, opts ...session.Option) *fixture {
	f := &fixture{
		clock: &fakeClock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.Local)},
		prompt: &fakePrompter{
			ready:     true,
			takeBreak: true,
			reflection: session.ReflectionInput{
				GoalAchieved: true,
				FocusRating:  5,
				EnergyAfter:  4,
				Distractions: "phone, weather",
				WhatWorked:   "headphones",
			},
		},
	}
	f.runner = &fakeRunner{clock: f.clock}
	f.history = store.New(backend, store.WithLogger(observability.Discard()))

	cfg := config.Default().Timer
	rec := recommender.New(nil, f.history, recommender.WithLogger(observability.Discard()), recommender.WithClock(f.clock.Now))
	base := []session.Option{
		session.WithRunner(f.runner),
		session.WithClock(f.clock),
		session.WithIDs(func() string { return "sid" }),
		session.WithObserver(func(s session.State) { f.states = append(f.states, s) }),
		session.WithLogger(observability.Discard()),
	}
	f.orch = session.New(rec, coach.New(nil, observability.Discard()), f.history, f.prompt, cfg, append(base, opts...)...)
	return f
}

func TestMaxBlocks(t *testing.T) {
	f := newFixture(store.NewMemoryBackend())
	for available, want := range map[int]int{29: 0, 30: 1, 59: 1, 60: 2, 480: 16} {
		if got := f.orch.MaxBlocks(available); got != want {
			t.Errorf("MaxBlocks(%d) = %d, want %d", available, got, want)
		}
	}
}

func TestRunTwoBlocks(t *testing.T) {
	f := newFixture(store.NewMemoryBackend())
	f.prompt.goals = []string{"outline", "draft"}

	got, err := f.orch.Run(context.Background(), 60, domain.DefaultTaskContext("essay"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantStates := []session.State{
		session.Planning, session.Countdown, session.Running, session.Reflecting,
		session.Planning, session.Countdown, session.Running, session.Reflecting,
		session.Done,
	}
	if !reflect.DeepEqual(f.states, wantStates) {
		t.Errorf("states = %v, want %v", f.states, wantStates)
	}

	// first block from the recommendation, second from the adaptation
	if !reflect.DeepEqual(f.prompt.minutes, []int{25, 29}) {
		t.Errorf("block minutes = %v, want [25 29]", f.prompt.minutes)
	}
	if !reflect.DeepEqual(f.prompt.breaksSeen, []int{3}) {
		t.Errorf("breaks offered = %v, want [3]", f.prompt.breaksSeen)
	}
	wantLabels := []string{
		"Starting focus session in", "Focus", "Starting break in", "Break",
		"Starting focus session in", "Focus",
	}
	if !reflect.DeepEqual(f.runner.labels, wantLabels) {
		t.Errorf("timers = %v, want %v", f.runner.labels, wantLabels)
	}

	if got.TotalFocusTime != 54 || got.TotalBreakTime != 3 {
		t.Errorf("totals = %d/%d, want 54/3", got.TotalFocusTime, got.TotalBreakTime)
	}
	if len(got.FocusSessions) != 2 || got.FocusSessions[1].SessionID != "sid_block_2" {
		t.Fatalf("unexpected blocks %+v", got.FocusSessions)
	}
	first := got.FocusSessions[0]
	if !first.Completed || first.Reflection == nil || !first.Goal.Completed {
		t.Errorf("first block should be completed and reflected: %+v", first)
	}
	if first.Reflection.WhatDidntWork != nil {
		t.Errorf("empty answers should be stored as null")
	}
	if first.EndTime == nil || first.EndTime.Before(first.StartTime.Time) {
		t.Errorf("end time must not precede start time")
	}

	if f.prompt.summary == nil || !f.prompt.summary.Saved {
		t.Fatal("expected a saved summary")
	}
	if all := f.history.LoadAll(); len(all) != 1 || all[0].SessionID != "sid" {
		t.Errorf("expected the sitting in history, got %d", len(all))
	}
	if perf := f.history.LoadPerformance(); len(perf) != 2 {
		t.Errorf("expected 2 performance records, got %d", len(perf))
	}
}

func TestInterruptedBlockSkipsReflection(t *testing.T) {
	f := newFixture(store.NewMemoryBackend())
	f.prompt.goals = []string{"outline", "draft"}
	f.prompt.takeBreak = false
	f.runner.interrupt = map[int]bool{1: true}

	got, err := f.orch.Run(context.Background(), 60, domain.DefaultTaskContext("essay"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.prompt.reflected != 1 {
		t.Errorf("expected only the second block reflected, got %d", f.prompt.reflected)
	}
	if !reflect.DeepEqual(f.prompt.minutes, []int{25, 25}) {
		t.Errorf("interrupted block should keep durations, got %v", f.prompt.minutes)
	}
	if got.FocusSessions[0].Completed || got.FocusSessions[0].Reflection != nil {
		t.Errorf("interrupted block recorded as completed: %+v", got.FocusSessions[0])
	}
	if got.TotalBreakTime != 0 {
		t.Errorf("skipped break should add no minutes, got %d", got.TotalBreakTime)
	}
}

func TestStoppedStartCountdownSkipsBlock(t *testing.T) {
	f := newFixture(store.NewMemoryBackend())
	f.prompt.goals = []string{"outline", "draft"}
	f.prompt.takeBreak = false
	f.runner.stopStart = map[int]bool{1: true}

	got, err := f.orch.Run(context.Background(), 60, domain.DefaultTaskContext("essay"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"Starting focus session in", "Starting focus session in", "Focus"}
	if !reflect.DeepEqual(f.runner.labels, want) {
		t.Errorf("labels = %v, want %v", f.runner.labels, want)
	}
	if f.prompt.reflected != 1 {
		t.Errorf("expected only the second block reflected, got %d", f.prompt.reflected)
	}
	first := got.FocusSessions[0]
	if first.Completed || first.Reflection != nil {
		t.Errorf("stopped block recorded as completed: %+v", first)
	}
	if !first.EndTime.Equal(first.StartTime.Time) {
		t.Errorf("stopped block should take no time: %v to %v", first.StartTime, first.EndTime)
	}
}

func TestBudgetEndsSitting(t *testing.T) {
	f := newFixture(store.NewMemoryBackend())
	f.prompt.goals = []string{"one", "two"}
	f.runner.advance = map[int]time.Duration{1: 61 * time.Minute}

	got, err := f.orch.Run(context.Background(), 60, domain.DefaultTaskContext("essay"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got.FocusSessions) != 1 {
		t.Errorf("expected the budget to stop after one block, got %d", len(got.FocusSessions))
	}
	if len(f.prompt.breaksSeen) != 0 {
		t.Errorf("no break should be offered once time is up")
	}
}

func TestCancel(t *testing.T) {
	tests := map[string]func(*fakePrompter){
		"empty goal":     func(p *fakePrompter) { p.goals = []string{"   "} },
		"declined start": func(p *fakePrompter) { p.goals = []string{"outline"}; p.ready = false },
	}
	for name, setup := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(store.NewMemoryBackend())
			setup(f.prompt)

			_, err := f.orch.Run(context.Background(), 60, domain.DefaultTaskContext("essay"))
			if !errors.Is(err, session.ErrCancelled) {
				t.Fatalf("expected ErrCancelled, got %v", err)
			}
			if last := f.states[len(f.states)-1]; last != session.Cancelled {
				t.Errorf("expected CANCELLED, got %s", last)
			}
			if len(f.history.LoadAll()) != 0 {
				t.Error("cancelled sitting must not be saved")
			}
		})
	}
}

func TestSaveFailureIsReported(t *testing.T) {
	f := newFixture(failingBackend{store.NewMemoryBackend()})
	f.prompt.goals = []string{"outline"}

	got, err := f.orch.Run(context.Background(), 30, domain.DefaultTaskContext("essay"))
	if err != nil {
		t.Fatalf("save failures should not fail the sitting: %v", err)
	}
	if got == nil || f.prompt.summary == nil || f.prompt.summary.Saved {
		t.Errorf("expected an unsaved summary, got %+v", f.prompt.summary)
	}
}

func TestGoalResolver(t *testing.T) {
	f := newFixture(store.NewMemoryBackend(), session.WithResolver(upperResolver{}))
	f.prompt.goals = []string{"outline"}

	got, err := f.orch.Run(context.Background(), 30, domain.DefaultTaskContext("essay"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if desc := got.FocusSessions[0].Goal.Description; desc != "OUTLINE" {
		t.Errorf("expected resolved goal, got %q", desc)
	}
}
