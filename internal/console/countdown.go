package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pbaille/focusflow/internal/session"
	"github.com/pbaille/focusflow/internal/timer"
)

type keyMap struct {
	Stop  key.Binding
	Pause key.Binding
}

func (k keyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Pause, k.Stop} }
func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Stop: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "stop"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p", " "),
		key.WithHelp("p", "pause/resume"),
	),
}

type eventMsg timer.Event

type closedMsg struct{}

func waitEvent(events <-chan timer.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

type countdownModel struct {
	timer  *timer.Timer
	events <-chan timer.Event
	last   timer.Event
	bar    progress.Model
	help   help.Model
	st     styles
}

func newCountdownModel(t *timer.Timer, events <-chan timer.Event) countdownModel {
	return countdownModel{
		timer:  t,
		events: events,
		last:   timer.Event{Label: t.Label(), Remaining: t.Duration(), Duration: t.Duration()},
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:   help.New(),
		st:     newStyles(),
	}
}

func (m countdownModel) Init() tea.Cmd {
	return waitEvent(m.events)
}

func (m countdownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Stop):
			m.timer.Stop()
		case key.Matches(msg, keys.Pause):
			if m.timer.Paused() {
				m.timer.Resume()
			} else {
				m.timer.Pause()
			}
			m.last.Paused = m.timer.Paused()
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, 60)
		return m, nil
	case eventMsg:
		m.last = timer.Event(msg)
		if m.last.Terminal() {
			return m, tea.Quit
		}
		return m, waitEvent(m.events)
	case closedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m countdownModel) View() string {
	var b strings.Builder
	b.WriteString(m.st.label.Render(m.last.Label))
	b.WriteString(m.st.clock.Render(formatClock(m.last.Remaining)))
	switch {
	case m.last.Kind == timer.EventCompleted:
		b.WriteString(m.st.good.Render("done"))
	case m.last.Kind == timer.EventInterrupted:
		b.WriteString(m.st.warn.Render("stopped"))
	case m.last.Paused:
		b.WriteString(m.st.warn.Render("paused"))
	}
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(fraction(m.last)))
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	b.WriteString("\n")
	return b.String()
}

// TUIRunner drives countdowns in a bubbletea view with pause and stop keys.
type TUIRunner struct {
	in  io.Reader
	out io.Writer
}

var _ session.Runner = (*TUIRunner)(nil)

// NewTUIRunner reads keys from in and draws on out.
func NewTUIRunner(in io.Reader, out io.Writer) *TUIRunner {
	return &TUIRunner{in: in, out: out}
}

// Run starts t and shows it until it completes or is stopped.
func (r *TUIRunner) Run(ctx context.Context, t *timer.Timer) (timer.Result, error) {
	events := t.Subscribe()
	prog := tea.NewProgram(newCountdownModel(t, events), tea.WithInput(r.in), tea.WithOutput(r.out))

	type outcome struct {
		res timer.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := t.Run(ctx)
		if err != nil {
			prog.Quit()
		}
		done <- outcome{res, err}
	}()

	if _, err := prog.Run(); err != nil {
		t.Stop()
		o := <-done
		return o.res, fmt.Errorf("countdown view: %w", err)
	}
	o := <-done
	return o.res, o.err
}

// LineRunner prints the remaining time on a single rewritten line. It is
// used when the terminal cannot host the full view.
type LineRunner struct {
	out io.Writer
}

var _ session.Runner = LineRunner{}

// NewLineRunner writes progress to out.
func NewLineRunner(out io.Writer) LineRunner {
	return LineRunner{out: out}
}

// Run starts t and reports each tick until it ends.
func (r LineRunner) Run(ctx context.Context, t *timer.Timer) (timer.Result, error) {
	events := t.Subscribe()
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for ev := range events {
			fmt.Fprintf(r.out, "\r%s %s ", ev.Label, formatClock(ev.Remaining))
			if ev.Terminal() {
				fmt.Fprintf(r.out, "(%s)\n", ev.Kind)
			}
		}
	}()

	res, err := t.Run(ctx)
	if err != nil {
		return res, err
	}
	<-drained
	return res, nil
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%02d:%02d", m, s)
}

func fraction(ev timer.Event) float64 {
	if ev.Duration <= 0 {
		return 1
	}
	return float64(ev.Duration-ev.Remaining) / float64(ev.Duration)
}
