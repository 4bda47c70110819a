package console_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pbaille/focusflow/internal/console"
	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/session"
	"github.com/pbaille/focusflow/internal/timer"
)

func prompter(input string) (*console.Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return console.NewPrompter(strings.NewReader(input), &out), &out
}

func TestIntReprompts(t *testing.T) {
	p, out := prompter("abc\n9\n4\n")

	n, err := p.Int(context.Background(), "Focus", 1, 5, 3)
	if err != nil {
		t.Fatalf("Int: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4, got %d", n)
	}
	if got := strings.Count(out.String(), "Please enter a number between 1 and 5."); got != 2 {
		t.Errorf("expected 2 reprompts, got %d", got)
	}
}

func TestIntDefault(t *testing.T) {
	p, _ := prompter("\n")
	if n, _ := p.Int(context.Background(), "Energy", 1, 5, 3); n != 3 {
		t.Errorf("expected default 3, got %d", n)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		def   bool
		want  bool
	}{
		{"y\n", false, true},
		{"No\n", true, false},
		{"\n", true, true},
		{"maybe\nyes\n", false, true},
	}
	for _, tt := range tests {
		p, _ := prompter(tt.input)
		got, err := p.Confirm(context.Background(), "Go?", tt.def)
		if err != nil {
			t.Fatalf("%q: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.want, got)
		}
	}
}

func TestAvailableMinutes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"in range", "90\n", 90},
		{"bad input reprompts", "lots\n-5\n60\n", 60},
		{"short confirmed", "20\ny\n", 20},
		{"long declined then fixed", "600\nn\n120\n", 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := prompter(tt.input)
			got, err := p.AvailableMinutes(context.Background())
			if err != nil {
				t.Fatalf("AvailableMinutes: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestEOFIsAnError(t *testing.T) {
	p, _ := prompter("")
	if _, err := p.AvailableMinutes(context.Background()); err == nil {
		t.Fatal("expected an error at end of input")
	}
}

func TestCancelledPromptReturns(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	var out bytes.Buffer
	p := console.NewPrompter(r, &out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.Ask(ctx, "Goal", "")
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("prompt did not return after cancel")
	}

	// the answer typed after cancelling goes to the next prompt
	go w.Write([]byte("draft intro\n"))
	got, err := p.Ask(context.Background(), "Goal", "")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != "draft intro" {
		t.Errorf("expected the pending answer, got %q", got)
	}
}

func TestReflect(t *testing.T) {
	p, out := prompter("sort of\npartial\n7\n2\n4\nphone, email\nmusic\n\nclose tabs\n")

	in, err := p.Reflect(context.Background(), "How did your focus session go?")
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	want := session.ReflectionInput{
		GoalAchieved: false,
		FocusRating:  2,
		EnergyAfter:  4,
		Distractions: "phone, email",
		WhatWorked:   "music",
		Improvements: "close tabs",
	}
	if in != want {
		t.Errorf("got %+v, want %+v", in, want)
	}
	if !strings.Contains(out.String(), "How did your focus session go?") {
		t.Error("reflection prompt not shown")
	}
}

func TestSummaryReportsUnsaved(t *testing.T) {
	p, out := prompter("")
	p.Summary(session.Summary{Session: &domain.FocusFlowSession{TotalFocusTime: 25}, Saved: false})
	for _, want := range []string{"Session Summary", "25 minutes", "could not be saved"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRenderInsightsMessage(t *testing.T) {
	var out bytes.Buffer
	console.NewRenderer(&out).Insights(domain.WeeklyInsights{Message: "No data available yet"})
	if strings.TrimSpace(out.String()) != "No data available yet" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRenderRecentNewestFirst(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.Local)
	sessions := []domain.FocusFlowSession{
		{StartTime: domain.At(now.Add(-48 * time.Hour)), FocusSessions: []domain.FocusSession{{Goal: domain.Goal{Description: "older"}}}},
		{StartTime: domain.At(now.Add(-2 * time.Hour)), FocusSessions: []domain.FocusSession{{Goal: domain.Goal{Description: "newer"}}}},
	}
	var out bytes.Buffer
	console.NewRenderer(&out).Recent(sessions, now)

	s := out.String()
	if strings.Index(s, "newer") > strings.Index(s, "older") {
		t.Errorf("expected newest first:\n%s", s)
	}
	if !strings.Contains(s, "2 days ago") {
		t.Errorf("expected relative time:\n%s", s)
	}
}

func TestLineRunner(t *testing.T) {
	var out bytes.Buffer
	res, err := console.NewLineRunner(&out).Run(context.Background(), timer.New(0, timer.WithLabel("Break")))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Outcome != timer.Completed {
		t.Errorf("expected completion, got %v", res.Outcome)
	}
	if !strings.Contains(out.String(), "Break 00:00 (completed)") {
		t.Errorf("unexpected output %q", out.String())
	}
}
