package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Abhijeet1520/healthy-world/internal/app"
	"github.com/Abhijeet1520/healthy-world/internal/capture"
)

// maxUploadBytes bounds the multipart form held in memory before spilling
// to disk.
const maxUploadBytes = 32 << 20

// allowedVideoExts are the upload extensions accepted for analysis.
var allowedVideoExts = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
	".mkv": true,
}

type analyzeResponse struct {
	SessionID string `json:"sessionId"`
	Exercise  string `json:"exercise"`
	Reps      int    `json:"reps"`
	Frames    int    `json:"framesProcessed"`
}

// handleAnalyzeVideo accepts a multipart upload (fields: file, exercise_id,
// highlight_output) and returns either the rep count as JSON or, when
// highlight_output is set, the annotated video.
func (s *Server) handleAnalyzeVideo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedVideoExts[ext] {
		writeError(w, http.StatusBadRequest, "unsupported video format: "+ext)
		return
	}

	exerciseID := r.FormValue("exercise_id")
	if exerciseID == "" {
		writeError(w, http.StatusBadRequest, "exercise_id is required")
		return
	}

	highlight := false
	switch strings.ToLower(r.FormValue("highlight_output")) {
	case "true", "1", "yes":
		highlight = true
	}

	uploadDir := s.uploadDir
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}

	tempPath := filepath.Join(uploadDir, uuid.New().String()+ext)
	if err := saveUpload(file, tempPath); err != nil {
		s.log.Error("staging upload", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer os.Remove(tempPath)

	highlightPath := ""
	if highlight {
		highlightPath = tempPath + ".annotated.mp4"
		defer os.Remove(highlightPath)
	}

	rec, err := s.app.AnalyzeVideo(r.Context(), app.AnalyzeRequest{
		Source:        capture.NewVideoFile(tempPath),
		ExerciseID:    exerciseID,
		HighlightPath: highlightPath,
		VideoName:     header.Filename,
	})
	if err != nil {
		if errors.Is(err, app.ErrUnknownExercise) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("analyzing video", "file", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "video analysis failed")
		return
	}

	if highlight {
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("X-Session-Id", rec.ID)
		w.Header().Set("X-Rep-Count", strconv.Itoa(rec.Reps))
		http.ServeFile(w, r, highlightPath)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		SessionID: rec.ID,
		Exercise:  rec.ExerciseID,
		Reps:      rec.Reps,
		Frames:    rec.Frames,
	})
}

// saveUpload copies the uploaded stream to path.
func saveUpload(src io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Sync()
}
