package domain

import "time"

// Goal is the intended work for one focus block
type Goal struct {
	Description string    `json:"description"`
	CreatedAt   Timestamp `json:"created_at"`
	Completed   bool      `json:"completed"`
	Notes       *string   `json:"notes"`
}

// Reflection is the post-block self-report attached to a completed block
type Reflection struct {
	SessionID            string    `json:"session_id"`
	GoalAchieved         bool      `json:"goal_achieved"`
	Distractions         *string   `json:"distractions"`
	WhatWorked           *string   `json:"what_worked"`
	WhatDidntWork        *string   `json:"what_didnt_work"`
	NextTimeImprovements *string   `json:"next_time_improvements"`
	CreatedAt            Timestamp `json:"created_at"`
}

// FocusSession is one focus block inside a sitting
type FocusSession struct {
	SessionID       string      `json:"session_id"`
	StartTime       Timestamp   `json:"start_time"`
	EndTime         *Timestamp  `json:"end_time"`
	DurationMinutes int         `json:"duration_minutes"`
	Goal            Goal        `json:"goal"`
	Reflection      *Reflection `json:"reflection"`
	Completed       bool        `json:"completed"`
}

// FocusFlowSession is a full sitting made of ordered focus blocks.
// TotalFocusTime and TotalBreakTime are bookkeeping and are not derived
// from FocusSessions.
type FocusFlowSession struct {
	SessionID            string         `json:"session_id"`
	StartTime            Timestamp      `json:"start_time"`
	EndTime              *Timestamp     `json:"end_time"`
	AvailableTimeMinutes int            `json:"available_time_minutes"`
	FocusSessions        []FocusSession `json:"focus_sessions"`
	TotalFocusTime       int            `json:"total_focus_time"`
	TotalBreakTime       int            `json:"total_break_time"`
	Completed            bool           `json:"completed"`
}

// GoalsAchieved counts reflected blocks and how many of them met their goal.
func (s *FocusFlowSession) GoalsAchieved() (achieved, reflected int) {
	for _, fs := range s.FocusSessions {
		if fs.Reflection == nil {
			continue
		}
		reflected++
		if fs.Reflection.GoalAchieved {
			achieved++
		}
	}
	return achieved, reflected
}

// TaskContext describes the work a recommendation is made for
type TaskContext struct {
	TaskName    string     `json:"task_name"`
	Difficulty  int        `json:"difficulty"`
	EnergyLevel int        `json:"energy_level"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	TaskType    string     `json:"task_type"`
	Urgency     int        `json:"urgency"`
}

// DefaultTaskContext returns a mid-range context for the named task.
func DefaultTaskContext(name string) TaskContext {
	return TaskContext{
		TaskName:    name,
		Difficulty:  3,
		EnergyLevel: 3,
		TaskType:    "general",
		Urgency:     3,
	}
}

// SessionRecommendation holds focus session parameters with rationale
type SessionRecommendation struct {
	FocusDuration     int     `json:"focus_duration"`
	BreakDuration     int     `json:"break_duration"`
	Reasoning         string  `json:"reasoning"`
	Confidence        float64 `json:"confidence"`
	SuggestedApproach string  `json:"suggested_approach"`
}

// PerformanceData describes how a finished block went
type PerformanceData struct {
	TaskCompleted   bool     `json:"task_completed"`
	FocusRating     int      `json:"focus_rating"`
	EnergyAfter     int      `json:"energy_after"`
	Distractions    []string `json:"distractions"`
	WhatWorked      string   `json:"what_worked"`
	SessionDuration int      `json:"session_duration"`
}

// Adaptation is the advice produced after a block
type Adaptation struct {
	NextSessionDuration   int      `json:"next_session_duration"`
	BreakDuration         int      `json:"break_duration"`
	Suggestions           string   `json:"suggestions"`
	EnergyManagement      string   `json:"energy_management"`
	DistractionStrategies []string `json:"distraction_strategies"`
}

// Stats aggregates the sitting log
type Stats struct {
	TotalSessions        int     `json:"total_sessions"`
	TotalFocusTime       int     `json:"total_focus_time"`
	TotalBreakTime       int     `json:"total_break_time"`
	SuccessRate          float64 `json:"success_rate"`
	AverageSessionLength float64 `json:"average_session_length"`
	TotalGoals           int     `json:"total_goals"`
	CompletedGoals       int     `json:"completed_goals"`
}

// DistractionCount is one entry of the weekly top distractions
type DistractionCount struct {
	Distraction string `json:"distraction"`
	Count       int    `json:"count"`
}

// WeeklyInsights summarizes the last seven days of performance records.
// Message is set instead of the figures when there is nothing to report.
type WeeklyInsights struct {
	Message         string             `json:"message,omitempty"`
	TotalSessions   int                `json:"total_sessions"`
	SuccessRate     float64            `json:"success_rate"`
	AverageFocus    float64            `json:"average_focus"`
	TotalFocusTime  int                `json:"total_focus_time"`
	TopDistractions []DistractionCount `json:"top_distractions"`
	Recommendations []string           `json:"recommendations"`
}
