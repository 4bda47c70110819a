package domain

import "context"

// SessionLog persists finished sittings and per-task performance history.
// Read operations never fail: damaged or missing data reads as empty.
type SessionLog interface {
	Append(session *FocusFlowSession) error
	LoadAll() []FocusFlowSession
	Recent(days int) []FocusFlowSession
	Stats() Stats

	AppendPerformance(rec PerformanceRecord) error
	LoadPerformance() []PerformanceRecord
}

// TextGenerator is a remote language model: system instruction and user
// message in, reply text out.
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}
