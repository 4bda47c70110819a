package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/pbaille/focusflow/internal/timer"
)

// StartTimerRequest starts the shared timer. Seconds, when set, wins over
// Minutes; zero for both uses the configured focus length.
type StartTimerRequest struct {
	Minutes int    `json:"minutes"`
	Seconds int    `json:"seconds,omitempty"`
	Label   string `json:"label"`
}

// TimerStatus is a snapshot of the shared timer.
type TimerStatus struct {
	Active           bool   `json:"active"`
	Label            string `json:"label,omitempty"`
	DurationSeconds  int    `json:"duration_seconds"`
	ElapsedSeconds   int    `json:"elapsed_seconds"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Paused           bool   `json:"paused"`
}

// TimerEvent is one server-sent timer event.
type TimerEvent struct {
	Kind             timer.EventKind `json:"kind"`
	Label            string          `json:"label"`
	ElapsedSeconds   int             `json:"elapsed_seconds"`
	RemainingSeconds int             `json:"remaining_seconds"`
	DurationSeconds  int             `json:"duration_seconds"`
	Paused           bool            `json:"paused"`
}

func seconds(d time.Duration) int {
	return int(d.Round(time.Second) / time.Second)
}

func newTimerEvent(ev timer.Event) TimerEvent {
	return TimerEvent{
		Kind:             ev.Kind,
		Label:            ev.Label,
		ElapsedSeconds:   seconds(ev.Elapsed),
		RemainingSeconds: seconds(ev.Remaining),
		DurationSeconds:  seconds(ev.Duration),
		Paused:           ev.Paused,
	}
}

func (s *Server) current() *timer.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Server) status() TimerStatus {
	t := s.current()
	if t == nil {
		return TimerStatus{}
	}
	return TimerStatus{
		Active:           true,
		Label:            t.Label(),
		DurationSeconds:  seconds(t.Duration()),
		ElapsedSeconds:   seconds(t.Elapsed()),
		RemainingSeconds: seconds(t.Remaining()),
		Paused:           t.Paused(),
	}
}

func (s *Server) timerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) startTimer(w http.ResponseWriter, r *http.Request) {
	var req StartTimerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Minutes < 0 || req.Seconds < 0 {
		writeError(w, http.StatusBadRequest, "duration must not be negative")
		return
	}

	d := time.Duration(req.Minutes) * time.Minute
	switch {
	case req.Seconds > 0:
		d = time.Duration(req.Seconds) * time.Second
	case req.Minutes == 0:
		d = time.Duration(s.timing.FocusMinutes) * time.Minute
	}
	label := req.Label
	if label == "" {
		label = "Focus"
	}

	s.mu.Lock()
	if s.active != nil {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "a timer is already running")
		return
	}
	t := timer.New(d, timer.WithLabel(label), timer.WithTick(s.timing.Tick), timer.WithClock(s.clock))
	s.active = t
	s.mu.Unlock()

	go s.runTimer(t)
	writeJSON(w, http.StatusAccepted, s.status())
}

func (s *Server) runTimer(t *timer.Timer) {
	res, err := t.Run(s.ctx)
	if err != nil {
		s.log.Error("timer failed", "label", t.Label(), "error", err)
	} else {
		s.log.Info("timer finished", "label", t.Label(), "outcome", res.Outcome, "elapsed", res.Elapsed)
	}

	s.mu.Lock()
	if s.active == t {
		s.active = nil
	}
	s.mu.Unlock()
}

func (s *Server) stopTimer(w http.ResponseWriter, r *http.Request) {
	t := s.current()
	if t == nil {
		writeError(w, http.StatusNotFound, "no timer running")
		return
	}
	t.Stop()
	writeJSON(w, http.StatusAccepted, s.status())
}

func (s *Server) pauseTimer(w http.ResponseWriter, r *http.Request) {
	t := s.current()
	if t == nil {
		writeError(w, http.StatusNotFound, "no timer running")
		return
	}
	t.Pause()
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) resumeTimer(w http.ResponseWriter, r *http.Request) {
	t := s.current()
	if t == nil {
		writeError(w, http.StatusNotFound, "no timer running")
		return
	}
	t.Resume()
	writeJSON(w, http.StatusOK, s.status())
}

// timerEvents streams the shared timer until its terminal event.
func (s *Server) timerEvents(w http.ResponseWriter, r *http.Request) {
	t := s.current()
	if t == nil {
		writeError(w, http.StatusNotFound, "no timer running")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events := t.Subscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}

			data, _ := json.Marshal(newTimerEvent(ev))
			w.Write([]byte("event: " + string(ev.Kind) + "\n"))
			w.Write([]byte("data: "))
			w.Write(data)
			w.Write([]byte("\n\n"))

			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
