package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Abhijeet1520/healthy-world/internal/app"
	"github.com/Abhijeet1520/healthy-world/internal/capture"
	"github.com/Abhijeet1520/healthy-world/internal/session"
	"github.com/Abhijeet1520/healthy-world/internal/store"
)

type sessionResponse struct {
	ID         string `json:"id"`
	Exercise   string `json:"exercise"`
	Source     string `json:"source"`
	Reps       int    `json:"reps"`
	Frames     int    `json:"framesProcessed"`
	DurationMs int64  `json:"durationMs"`
	VideoName  string `json:"videoName,omitempty"`
	StartedAt  string `json:"startedAt"`
	EndedAt    string `json:"endedAt"`
}

func toSessionResponse(s *store.Session) sessionResponse {
	return sessionResponse{
		ID:         s.ID,
		Exercise:   s.ExerciseID,
		Source:     string(s.Source),
		Reps:       s.Reps,
		Frames:     s.Frames,
		DurationMs: s.DurationMs,
		VideoName:  s.VideoName,
		StartedAt:  s.StartedAt.Format(time.RFC3339),
		EndedAt:    s.EndedAt.Format(time.RFC3339),
	}
}

type trackerResponse struct {
	Status   session.Status `json:"status"`
	Error    string         `json:"error,omitempty"`
	Exercise string         `json:"exercise"`
	Reps     int            `json:"reps"`
	Phase    string         `json:"phase"`
}

func (s *Server) trackerState() trackerResponse {
	status, err := s.app.Status()
	snap := s.app.Snapshot()

	resp := trackerResponse{
		Status:   status,
		Exercise: snap.Exercise,
		Reps:     snap.Reps,
		Phase:    string(snap.Phase),
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"exercises": s.app.Catalog().List(),
	})
}

func (s *Server) handleTrackerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.trackerState())
}

type trackerStartRequest struct {
	Exercise string `json:"exercise"`
}

func (s *Server) handleTrackerStart(w http.ResponseWriter, r *http.Request) {
	// An empty body keeps the current exercise; a malformed one is an
	// error, not a silent default.
	var req trackerStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Exercise != "" {
		if err := s.app.SetExercise(req.Exercise); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := s.app.StartTracking(); err != nil {
		if errors.Is(err, capture.ErrCameraUnavailable) {
			writeJSON(w, http.StatusServiceUnavailable, s.trackerState())
			return
		}
		s.log.Error("starting tracker", "error", err)
		writeJSON(w, http.StatusInternalServerError, s.trackerState())
		return
	}

	writeJSON(w, http.StatusOK, s.trackerState())
}

func (s *Server) handleTrackerStop(w http.ResponseWriter, r *http.Request) {
	rec, err := s.app.StopTracking(r.Context())
	if err != nil {
		if errors.Is(err, app.ErrNotTracking) {
			writeError(w, http.StatusConflict, "no live session running")
			return
		}
		s.log.Error("stopping tracker", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to stop session")
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(rec))
}

type trackerExerciseRequest struct {
	Exercise string `json:"exercise"`
}

func (s *Server) handleTrackerExercise(w http.ResponseWriter, r *http.Request) {
	var req trackerExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Exercise == "" {
		writeError(w, http.StatusBadRequest, "exercise is required")
		return
	}

	if err := s.app.SetExercise(req.Exercise); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.trackerState())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	sessions, err := s.app.Sessions().List(limit)
	if err != nil {
		s.log.Error("listing sessions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionResponse(sess))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := s.app.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		s.log.Error("getting session", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get session")
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.app.Sessions().StatsByExercise()
	if err != nil {
		s.log.Error("computing stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	if stats == nil {
		stats = []store.ExerciseStats{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.app.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		s.log.Error("deleting session", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
