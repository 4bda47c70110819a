package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/observability"
)

const defaultRecentDays = 7

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.history.LoadAll())
}

func (s *Server) recentSessions(w http.ResponseWriter, r *http.Request) {
	days := defaultRecentDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	recent := s.history.Recent(days)
	if recent == nil {
		recent = []domain.FocusFlowSession{}
	}
	writeJSON(w, http.StatusOK, recent)
}

func (s *Server) addSession(w http.ResponseWriter, r *http.Request) {
	var session domain.FocusFlowSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(session.SessionID) == "" {
		session.SessionID = uuid.NewString()
	}
	if session.StartTime.IsZero() {
		session.StartTime = domain.At(s.now())
	}
	for i := range session.FocusSessions {
		fs := &session.FocusSessions[i]
		if fs.Reflection != nil && !fs.Completed {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("focus session %d has a reflection but is not completed", i+1))
			return
		}
		if fs.EndTime != nil && fs.EndTime.Before(fs.StartTime.Time) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("focus session %d ends before it starts", i+1))
			return
		}
	}

	if err := s.history.Append(&session); err != nil {
		observability.FromContext(r.Context(), s.log).Error("save session", "session_id", session.SessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "session not saved")
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.history.Stats())
}

func (s *Server) insights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.advisor.WeeklyInsights())
}

// RecommendRequest is the task to plan for. Omitted ratings default to 3.
type RecommendRequest struct {
	TaskName    string            `json:"task_name"`
	Difficulty  int               `json:"difficulty"`
	EnergyLevel int               `json:"energy_level"`
	Urgency     int               `json:"urgency"`
	TaskType    string            `json:"task_type"`
	Deadline    *domain.Timestamp `json:"deadline,omitempty"`
}

func (req RecommendRequest) task() (domain.TaskContext, error) {
	task := domain.DefaultTaskContext(req.TaskName)
	for _, f := range []struct {
		name string
		src  int
		dst  *int
	}{
		{"difficulty", req.Difficulty, &task.Difficulty},
		{"energy_level", req.EnergyLevel, &task.EnergyLevel},
		{"urgency", req.Urgency, &task.Urgency},
	} {
		if f.src == 0 {
			continue
		}
		if f.src < 1 || f.src > 5 {
			return task, fmt.Errorf("%s must be between 1 and 5", f.name)
		}
		*f.dst = f.src
	}
	if req.TaskType != "" {
		task.TaskType = req.TaskType
	}
	if req.Deadline != nil && !req.Deadline.IsZero() {
		d := req.Deadline.Time
		task.Deadline = &d
	}
	return task, nil
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	task, err := req.task()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.advisor.Recommend(r.Context(), task))
}

// AdaptRequest reports a finished block for the task it was planned for.
type AdaptRequest struct {
	Task        RecommendRequest       `json:"task"`
	Performance domain.PerformanceData `json:"performance"`
}

func (s *Server) adapt(w http.ResponseWriter, r *http.Request) {
	var req AdaptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	task, err := req.Task.task()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	perf := req.Performance
	if perf.FocusRating < 1 || perf.FocusRating > 5 {
		writeError(w, http.StatusBadRequest, "focus_rating must be between 1 and 5")
		return
	}
	if perf.EnergyAfter < 1 || perf.EnergyAfter > 5 {
		writeError(w, http.StatusBadRequest, "energy_after must be between 1 and 5")
		return
	}
	if perf.Distractions == nil {
		perf.Distractions = []string{}
	}
	writeJSON(w, http.StatusOK, s.advisor.AdaptAfterSession(r.Context(), perf, task))
}
