package coach_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pbaille/focusflow/internal/coach"
	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/observability"
)

type fakeGenerator struct {
	reply string
	err   error
	user  string
}

func (f *fakeGenerator) Generate(_ context.Context, _, user string) (string, error) {
	f.user = user
	return f.reply, f.err
}

func TestOfflineUsesFixedPrompts(t *testing.T) {
	c := coach.New(nil, observability.Discard())
	ctx := context.Background()

	if got := c.SuggestGoal(ctx, 1, 25, nil); got != coach.DefaultGoalPrompt {
		t.Errorf("unexpected goal prompt %q", got)
	}
	if got := c.ReflectionPrompt(ctx, domain.Goal{Description: "x"}, 25); got != coach.DefaultReflectionPrompt {
		t.Errorf("unexpected reflection prompt %q", got)
	}
}

func TestSuggestGoalIncludesPreviousGoals(t *testing.T) {
	gen := &fakeGenerator{reply: "<think>plan</think> Draft the intro section."}
	c := coach.New(gen, observability.Discard())

	got := c.SuggestGoal(context.Background(), 3, 30, []domain.Goal{
		{Description: "outline"},
		{Description: "research"},
	})
	if got != "Draft the intro section." {
		t.Errorf("unexpected suggestion %q", got)
	}
	for _, want := range []string{"#3", "outline, research", "30-minute"} {
		if !strings.Contains(gen.user, want) {
			t.Errorf("prompt %q missing %q", gen.user, want)
		}
	}
}

func TestBackendFailuresFallBack(t *testing.T) {
	tests := map[string]*fakeGenerator{
		"error": {err: errors.New("boom")},
		"empty": {reply: "  <think>only thoughts</think> "},
	}
	for name, gen := range tests {
		t.Run(name, func(t *testing.T) {
			c := coach.New(gen, observability.Discard())
			if got := c.ReflectionPrompt(context.Background(), domain.Goal{Description: "x"}, 25); got != coach.DefaultReflectionPrompt {
				t.Errorf("expected fixed prompt, got %q", got)
			}
		})
	}
}
