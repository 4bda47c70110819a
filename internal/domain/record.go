package domain

import "encoding/json"

// Defaults substituted for keys missing from a stored performance record.
const (
	DefaultFocusRating = 3
	DefaultEnergy      = 3
	DefaultDuration    = 25
	DefaultDifficulty  = 3
)

// PerformanceRecord is one normalized entry of the per-task history written
// after every reflected block.
type PerformanceRecord struct {
	Timestamp    Timestamp `json:"timestamp"`
	TaskName     string    `json:"task_name"`
	TaskType     string    `json:"task_type"`
	Difficulty   int       `json:"difficulty"`
	EnergyBefore int       `json:"energy_before"`
	EnergyAfter  int       `json:"energy_after"`
	FocusRating  int       `json:"focus_rating"`
	Completed    bool      `json:"completed"`
	Duration     int       `json:"duration"`
	Distractions []string  `json:"distractions"`
	WhatWorked   string    `json:"what_worked"`
}

// NewPerformanceRecord normalizes a finished block into a history record.
func NewPerformanceRecord(task TaskContext, perf PerformanceData, at Timestamp) PerformanceRecord {
	distractions := perf.Distractions
	if distractions == nil {
		distractions = []string{}
	}
	return PerformanceRecord{
		Timestamp:    at,
		TaskName:     task.TaskName,
		TaskType:     task.TaskType,
		Difficulty:   task.Difficulty,
		EnergyBefore: task.EnergyLevel,
		EnergyAfter:  perf.EnergyAfter,
		FocusRating:  perf.FocusRating,
		Completed:    perf.TaskCompleted,
		Duration:     perf.SessionDuration,
		Distractions: distractions,
		WhatWorked:   perf.WhatWorked,
	}
}

func (r *PerformanceRecord) UnmarshalJSON(b []byte) error {
	type plain PerformanceRecord
	rec := plain{
		TaskType:     "general",
		Difficulty:   DefaultDifficulty,
		EnergyBefore: DefaultEnergy,
		EnergyAfter:  DefaultEnergy,
		FocusRating:  DefaultFocusRating,
		Duration:     DefaultDuration,
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	if rec.Distractions == nil {
		rec.Distractions = []string{}
	}
	*r = PerformanceRecord(rec)
	return nil
}

func (s *FocusFlowSession) UnmarshalJSON(b []byte) error {
	type plain FocusFlowSession
	var rec plain
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	if rec.FocusSessions == nil {
		rec.FocusSessions = []FocusSession{}
	}
	*s = FocusFlowSession(rec)
	return nil
}
