// Package coach produces the goal and reflection prompts shown around each
// focus block.
package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/llm"
	"github.com/pbaille/focusflow/internal/observability"
)

const (
	// DefaultGoalPrompt is shown when no backend answers.
	DefaultGoalPrompt = "What would you like to accomplish in this focus session?"
	// DefaultReflectionPrompt is shown when no backend answers.
	DefaultReflectionPrompt = "How did your focus session go?"
)

const goalSystemPrompt = `You are a helpful productivity coach. Help users set specific, achievable goals for their focus sessions.
Goals should be concrete and measurable. Ask them what they want to accomplish.`

const reflectSystemPrompt = `You are a supportive productivity coach. Help users reflect on their focus session.
Ask about distractions, what worked, what didn't, and how to improve next time. Be encouraging and constructive.`

// Coach asks a text generator for prompts and falls back to fixed text.
type Coach struct {
	gen domain.TextGenerator
	log *slog.Logger
}

// New creates a Coach. A nil gen always uses the fixed prompts.
func New(gen domain.TextGenerator, log *slog.Logger) *Coach {
	return &Coach{gen: gen, log: observability.OrDefault(log)}
}

// SuggestGoal returns the prompt for block number block (1-based).
func (c *Coach) SuggestGoal(ctx context.Context, block, minutes int, previous []domain.Goal) string {
	if c.gen == nil {
		return DefaultGoalPrompt
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "This is focus session #%d.", block)
	if len(previous) > 0 {
		descs := make([]string, len(previous))
		for i, g := range previous {
			descs[i] = g.Description
		}
		fmt.Fprintf(&sb, " Previous goals were: %s", strings.Join(descs, ", "))
	}
	fmt.Fprintf(&sb, " What would you like to accomplish in this focus session? Please be specific and realistic for a %d-minute block.", minutes)

	return c.ask(ctx, "goal", goalSystemPrompt, sb.String(), DefaultGoalPrompt)
}

// ReflectionPrompt returns the question asked after a completed block.
func (c *Coach) ReflectionPrompt(ctx context.Context, goal domain.Goal, minutes int) string {
	if c.gen == nil {
		return DefaultReflectionPrompt
	}

	prompt := fmt.Sprintf(`Your goal was: %q (Duration: %d minutes)

Let's reflect on this session:
1. Did you achieve your goal? Why or why not?
2. What distracted you or slowed you down?
3. What worked well?
4. What would you do differently next time?

Please share your thoughts:`, goal.Description, minutes)

	return c.ask(ctx, "reflection", reflectSystemPrompt, prompt, DefaultReflectionPrompt)
}

func (c *Coach) ask(ctx context.Context, kind, system, user, fallback string) string {
	reply, err := c.gen.Generate(ctx, system, user)
	if err != nil {
		c.log.Warn("coach backend failed, using fixed prompt", "kind", kind, "error", err)
		return fallback
	}
	if text := llm.PlainText(reply); text != "" {
		return text
	}
	return fallback
}
