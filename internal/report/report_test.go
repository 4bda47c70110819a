package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/observability"
	"github.com/pbaille/focusflow/internal/report"
	"github.com/pbaille/focusflow/internal/store"
)

func sitting(start time.Time, goal string, achieved bool) *domain.FocusFlowSession {
	distraction := "phone"
	return &domain.FocusFlowSession{
		SessionID:            goal,
		StartTime:            domain.At(start),
		AvailableTimeMinutes: 60,
		TotalFocusTime:       25,
		FocusSessions: []domain.FocusSession{{
			SessionID:       goal + "_block_1",
			StartTime:       domain.At(start),
			DurationMinutes: 25,
			Goal:            domain.Goal{Description: goal, CreatedAt: domain.At(start)},
			Reflection: &domain.Reflection{
				SessionID:    goal + "_block_1",
				GoalAchieved: achieved,
				Distractions: &distraction,
				CreatedAt:    domain.At(start),
			},
			Completed: true,
		}},
		Completed: true,
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)
	if got := report.Filename(now); got != "focus_flow_summary_20260304_050607.txt" {
		t.Errorf("unexpected filename %q", got)
	}
}

func TestExportKeepsLastFive(t *testing.T) {
	now := time.Date(2026, 10, 15, 18, 0, 0, 0, time.Local)
	log := store.New(store.NewMemoryBackend(), store.WithLogger(observability.Discard()))
	for i := 0; i < 7; i++ {
		s := sitting(now.Add(-time.Duration(7-i)*time.Hour), "goal-"+string(rune('a'+i)), i%2 == 0)
		if err := log.Append(s); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	dir := t.TempDir()
	path, err := report.Export(dir, log, now)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("expected file in %s, got %s", dir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	for _, want := range []string{
		"=== Focus Flow Session Summary ===",
		"OVERALL STATISTICS",
		"RECENT SESSIONS",
		"Total Sessions: 7",
		"Total Focus Time: 175 minutes",
		"Goals Completed: 4/7",
		"Distractions: phone",
		"goal-g",
		"1 hour ago",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q", want)
		}
	}
	for _, gone := range []string{"goal-a", "goal-b"} {
		if strings.Contains(out, gone) {
			t.Errorf("summary should only detail the last five sittings, found %q", gone)
		}
	}
	if got := strings.Count(out, "\nSession: "); got != report.RecentCount {
		t.Errorf("expected %d sittings, got %d", report.RecentCount, got)
	}
}

func TestWriteEmptyLog(t *testing.T) {
	var sb strings.Builder
	if err := report.Write(&sb, domain.Stats{}, nil, time.Now()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), "Success Rate: 0.0%") {
		t.Errorf("unexpected output:\n%s", sb.String())
	}
}
