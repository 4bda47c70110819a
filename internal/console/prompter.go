// Package console is the terminal surface: line prompts, styled reports
// and the countdown view.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pbaille/focusflow/internal/session"
)

// Bounds outside which an available-time answer needs confirmation.
const (
	minAvailable = 30
	maxAvailable = 480
)

// Prompter asks questions on a line-oriented terminal. Invalid numeric
// answers are rejected and asked again.
type Prompter struct {
	*Renderer
	in *bufio.Reader

	// pending holds a read left running by a cancelled prompt; the next
	// prompt takes its answer instead of starting a second reader.
	pending chan answer
}

type answer struct {
	text string
	err  error
}

var _ session.Prompter = (*Prompter)(nil)

// NewPrompter reads answers from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{Renderer: NewRenderer(out), in: bufio.NewReader(in)}
}

func (p *Prompter) line(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.out, prompt)

	if p.pending == nil {
		ch := make(chan answer, 1)
		go func() {
			text, err := p.in.ReadString('\n')
			ch <- answer{text, err}
		}()
		p.pending = ch
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	case a := <-p.pending:
		p.pending = nil
		if a.err != nil && (a.err != io.EOF || a.text == "") {
			return "", fmt.Errorf("read answer: %w", a.err)
		}
		return strings.TrimSpace(a.text), nil
	}
}

// Ask returns a free-text answer, or def when it is empty.
func (p *Prompter) Ask(ctx context.Context, prompt, def string) (string, error) {
	text, err := p.line(ctx, prompt+": ")
	if err != nil {
		return "", err
	}
	if text == "" {
		return def, nil
	}
	return text, nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(ctx context.Context, prompt string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	for {
		text, err := p.line(ctx, fmt.Sprintf("%s %s: ", prompt, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(text) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, p.st.bad.Render("Please enter y or n."))
	}
}

// Int asks for a whole number in [lo, hi], reprompting on bad input.
func (p *Prompter) Int(ctx context.Context, prompt string, lo, hi, def int) (int, error) {
	for {
		text, err := p.line(ctx, fmt.Sprintf("%s (%d-%d) [%d]: ", prompt, lo, hi, def))
		if err != nil {
			return 0, err
		}
		if text == "" {
			return def, nil
		}
		n, err := strconv.Atoi(text)
		if err == nil && n >= lo && n <= hi {
			return n, nil
		}
		fmt.Fprintln(p.out, p.st.bad.Render(fmt.Sprintf("Please enter a number between %d and %d.", lo, hi)))
	}
}

// AvailableMinutes asks how long the sitting may last. Unusually short or
// long budgets must be confirmed.
func (p *Prompter) AvailableMinutes(ctx context.Context) (int, error) {
	for {
		text, err := p.line(ctx, "How many minutes do you have available? ")
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(text)
		if err != nil || n <= 0 {
			fmt.Fprintln(p.out, p.st.bad.Render("Please enter a positive number of minutes."))
			continue
		}
		if ok, err := p.ConfirmAvailable(ctx, n); err != nil || ok {
			return n, err
		}
	}
}

// ConfirmAvailable accepts budgets within the usual range and asks about
// the rest.
func (p *Prompter) ConfirmAvailable(ctx context.Context, n int) (bool, error) {
	switch {
	case n < minAvailable:
		return p.Confirm(ctx, fmt.Sprintf("Only %d minutes leaves room for no full block. Continue?", n), false)
	case n > maxAvailable:
		return p.Confirm(ctx, fmt.Sprintf("%d minutes is a long sitting. Continue?", n), false)
	}
	return true, nil
}

// Plan prints the sitting plan.
func (p *Prompter) Plan(plan session.Plan) {
	p.Panel("Session Started", fmt.Sprintf(
		"Available time: %s\nMaximum blocks: %d\nFocus duration: %s\nBreak duration: %s",
		minutes(plan.AvailableMinutes), plan.MaxBlocks, minutes(plan.FocusMinutes), minutes(plan.BreakMinutes)), green)
}

// Advice prints recommendation or adaptation text.
func (p *Prompter) Advice(title, body string) {
	p.Panel(title, body, blue)
}

// Goal shows the coach suggestion and reads the block goal.
func (p *Prompter) Goal(ctx context.Context, block, total int, suggestion string) (string, error) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.st.label.Render(fmt.Sprintf("Block %d/%d", block, total)))
	p.Panel("Goal Setting", suggestion, cyan)
	return p.Ask(ctx, "What's your goal for this block", "")
}

// ConfirmStart shows the goal and asks to begin.
func (p *Prompter) ConfirmStart(ctx context.Context, goal string, mins int) (bool, error) {
	fmt.Fprintln(p.out, p.st.good.Render("Goal: "+goal))
	fmt.Fprintln(p.out, p.st.muted.Render("Duration: "+minutes(mins)))
	return p.Confirm(ctx, "Ready to start the focus session?", true)
}

// Reflect shows the reflection prompt and collects the answers.
func (p *Prompter) Reflect(ctx context.Context, prompt string) (session.ReflectionInput, error) {
	p.Panel("Session Reflection", prompt, yellow)

	var in session.ReflectionInput
	achieved, err := p.achieved(ctx)
	if err != nil {
		return in, err
	}
	in.GoalAchieved = achieved

	if in.FocusRating, err = p.Int(ctx, "How focused were you", 1, 5, 3); err != nil {
		return in, err
	}
	if in.EnergyAfter, err = p.Int(ctx, "Energy level now", 1, 5, 3); err != nil {
		return in, err
	}

	answers := []struct {
		prompt string
		dst    *string
	}{
		{"What distracted you? (optional)", &in.Distractions},
		{"What worked well? (optional)", &in.WhatWorked},
		{"What didn't work? (optional)", &in.WhatDidntWork},
		{"What would you do differently next time? (optional)", &in.Improvements},
	}
	for _, a := range answers {
		if *a.dst, err = p.Ask(ctx, a.prompt, ""); err != nil {
			return in, err
		}
	}
	return in, nil
}

// achieved reads yes, partial or no. Partial counts as not achieved.
func (p *Prompter) achieved(ctx context.Context) (bool, error) {
	for {
		text, err := p.line(ctx, "Did you achieve your goal? [yes/partial/no]: ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(text) {
		case "y", "yes":
			return true, nil
		case "p", "partial", "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, p.st.bad.Render("Please answer yes, partial or no."))
	}
}

// ConfirmBreak offers the break between blocks.
func (p *Prompter) ConfirmBreak(ctx context.Context, mins int) (bool, error) {
	p.Panel("Break Time", "Time for a break! Take a moment to stretch, hydrate, or just relax.", green)
	return p.Confirm(ctx, fmt.Sprintf("Start %s break timer?", minutes(mins)), true)
}

// Summary prints the finished sitting.
func (p *Prompter) Summary(s session.Summary) {
	p.Sitting(s.Session)
	if !s.Saved {
		fmt.Fprintln(p.out, p.st.bad.Render("Session could not be saved."))
	}
}
