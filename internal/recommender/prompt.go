package recommender

import (
	"fmt"
	"strings"
	"time"

	"github.com/pbaille/focusflow/internal/domain"
)

const planSystemPrompt = `You are an intelligent productivity coach that analyzes tasks and recommends optimal focus session parameters.

Consider these factors:
1. Task complexity and type (writing needs longer sessions, reviewing can be shorter)
2. User energy level (lower energy = shorter sessions)
3. Urgency and deadlines
4. Historical performance patterns
5. Optimal focus-to-break ratios

Provide specific recommendations for:
- Focus duration (15-60 minutes)
- Break duration (3-15 minutes)
- Reasoning for your recommendation
- Suggested approach for the session

Format your response as JSON:
{
    "focus_duration": 25,
    "break_duration": 5,
    "reasoning": "explanation",
    "confidence": 0.8,
    "suggested_approach": "specific advice"
}`

const adaptSystemPrompt = `You are an adaptive productivity coach. Analyze the user's session performance and provide specific recommendations for improvement.

Consider:
1. Task completion success
2. Focus quality
3. Energy management
4. Distraction patterns
5. What worked well

Provide actionable advice for the next session.`

func buildPlanPrompt(task domain.TaskContext, history string, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("Analyze this task and recommend optimal session parameters:\n\n")
	fmt.Fprintf(&sb, "Task: %s\n", task.TaskName)
	fmt.Fprintf(&sb, "Difficulty: %d/5\n", task.Difficulty)
	fmt.Fprintf(&sb, "Energy Level: %d/5\n", task.EnergyLevel)
	fmt.Fprintf(&sb, "Task Type: %s\n", task.TaskType)
	fmt.Fprintf(&sb, "Urgency: %d/5\n", task.Urgency)
	if task.Deadline != nil {
		days := int(task.Deadline.Sub(now).Hours() / 24)
		fmt.Fprintf(&sb, "Deadline: %d days away\n", days)
	}

	sb.WriteString("\nHistorical Performance:\n")
	sb.WriteString(history)
	sb.WriteString("\n\nProvide a JSON response with your recommendation.")

	return sb.String()
}

func buildAdaptPrompt(task domain.TaskContext, perf domain.PerformanceData) string {
	distractions := "None"
	if len(perf.Distractions) > 0 {
		distractions = strings.Join(perf.Distractions, ", ")
	}

	var sb strings.Builder
	sb.WriteString("Analyze this session and provide adaptation recommendations:\n\n")
	fmt.Fprintf(&sb, "Task: %s\n", task.TaskName)
	fmt.Fprintf(&sb, "Difficulty: %d/5\n", task.Difficulty)
	fmt.Fprintf(&sb, "Energy before: %d/5\n", task.EnergyLevel)
	fmt.Fprintf(&sb, "Energy after: %d/5\n", perf.EnergyAfter)
	fmt.Fprintf(&sb, "Focus rating: %d/5\n", perf.FocusRating)
	fmt.Fprintf(&sb, "Completed: %t\n", perf.TaskCompleted)
	fmt.Fprintf(&sb, "Session duration: %d minutes\n", perf.SessionDuration)
	fmt.Fprintf(&sb, "Distractions: %s\n", distractions)
	fmt.Fprintf(&sb, "What worked: %s\n", perf.WhatWorked)
	sb.WriteString("\nProvide specific recommendations for the next session.")

	return sb.String()
}
