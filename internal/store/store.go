package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pbaille/focusflow/internal/config"
	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/observability"
)

// Store is the session log. It decodes typed records at the backend
// boundary and swallows read failures so a damaged log reads as no history.
type Store struct {
	backend Backend
	log     *slog.Logger
	now     func() time.Time
}

var _ domain.SessionLog = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for swallowed failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the time source used by Recent.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store over backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.log = observability.OrDefault(s.log)
	return s
}

// Open creates the backend selected by cfg under cfg.DataDir.
func Open(cfg *config.Config, opts ...Option) (*Store, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Storage {
	case config.StorageSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		backend, err = NewSQLiteBackend(filepath.Join(cfg.DataDir, "focusflow.db"))
	default:
		backend, err = NewFileBackend(cfg.DataDir)
	}
	if err != nil {
		return nil, err
	}
	return New(backend, opts...), nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Append persists a finished sitting.
func (s *Store) Append(session *domain.FocusFlowSession) error {
	return s.appendDoc(CollectionSessions, session)
}

// AppendPerformance persists one normalized performance record.
func (s *Store) AppendPerformance(rec domain.PerformanceRecord) error {
	return s.appendDoc(CollectionPerformance, rec)
}

func (s *Store) appendDoc(collection string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := s.backend.Append(collection, doc); err != nil {
		s.log.Error("append failed", "collection", collection, "error", err)
		return fmt.Errorf("append %s: %w", collection, err)
	}
	return nil
}

// LoadAll returns every sitting in append order.
func (s *Store) LoadAll() []domain.FocusFlowSession {
	return decodeAll[domain.FocusFlowSession](s, CollectionSessions)
}

// LoadPerformance returns every performance record in append order.
func (s *Store) LoadPerformance() []domain.PerformanceRecord {
	return decodeAll[domain.PerformanceRecord](s, CollectionPerformance)
}

func decodeAll[T any](s *Store, collection string) []T {
	docs, err := s.backend.List(collection)
	if err != nil {
		s.log.Warn("load failed, treating log as empty", "collection", collection, "error", err)
		return []T{}
	}

	out := make([]T, 0, len(docs))
	for i, doc := range docs {
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			s.log.Warn("skipping unreadable record", "collection", collection, "index", i, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

// Recent returns sittings that started within the last days days.
func (s *Store) Recent(days int) []domain.FocusFlowSession {
	cutoff := s.now().Add(-time.Duration(days) * 24 * time.Hour)

	var recent []domain.FocusFlowSession
	for _, session := range s.LoadAll() {
		if session.StartTime.IsZero() {
			continue
		}
		if !session.StartTime.Before(cutoff) {
			recent = append(recent, session)
		}
	}
	return recent
}

// Last returns up to n most recent sittings, oldest first.
func (s *Store) Last(n int) []domain.FocusFlowSession {
	all := s.LoadAll()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Stats aggregates the whole log. Goals are counted only for reflected blocks.
func (s *Store) Stats() domain.Stats {
	return Summarize(s.LoadAll())
}

// Summarize aggregates a set of sittings.
func Summarize(sessions []domain.FocusFlowSession) domain.Stats {
	var st domain.Stats
	st.TotalSessions = len(sessions)
	if st.TotalSessions == 0 {
		return st
	}

	for i := range sessions {
		st.TotalFocusTime += sessions[i].TotalFocusTime
		st.TotalBreakTime += sessions[i].TotalBreakTime
		achieved, reflected := sessions[i].GoalsAchieved()
		st.CompletedGoals += achieved
		st.TotalGoals += reflected
	}

	if st.TotalGoals > 0 {
		st.SuccessRate = float64(st.CompletedGoals) / float64(st.TotalGoals)
	}
	st.AverageSessionLength = float64(st.TotalFocusTime) / float64(st.TotalSessions)
	return st
}
