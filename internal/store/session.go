package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// SessionSource tells live camera sessions and uploaded-video analyses apart.
type SessionSource string

const (
	// SourceLive marks a session tracked from the camera.
	SourceLive SessionSource = "live"
	// SourceVideo marks a session produced by analyzing an uploaded video.
	SourceVideo SessionSource = "video"
)

// Session is one completed tracking session.
type Session struct {
	ID         string
	ExerciseID string
	Source     SessionSource
	Reps       int
	Frames     int
	DurationMs int64
	VideoName  string
	StartedAt  time.Time
	EndedAt    time.Time
	CreatedAt  time.Time
}

// ExerciseStats aggregates history per exercise.
type ExerciseStats struct {
	ExerciseID string `json:"exerciseId"`
	Sessions   int    `json:"sessions"`
	TotalReps  int    `json:"totalReps"`
}

// SessionRepository provides persistence for completed sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a completed session.
func (r *SessionRepository) Create(sess *Session) error {
	sess.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, exercise_id, source, reps, frames, duration_ms, video_name, started_at, ended_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.ExerciseID, string(sess.Source), sess.Reps, sess.Frames,
		sess.DurationMs, sess.VideoName, sess.StartedAt, sess.EndedAt, sess.CreatedAt,
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var source string

	err := r.db.QueryRow(
		`SELECT id, exercise_id, source, reps, frames, duration_ms, video_name, started_at, ended_at, created_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.ExerciseID, &source, &sess.Reps, &sess.Frames,
		&sess.DurationMs, &sess.VideoName, &sess.StartedAt, &sess.EndedAt, &sess.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sess.Source = SessionSource(source)
	return sess, nil
}

// List retrieves the most recent sessions, newest first. A limit of 0 means
// no limit.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	query := `SELECT id, exercise_id, source, reps, frames, duration_ms, video_name, started_at, ended_at, created_at
		 FROM sessions ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		var source string

		err := rows.Scan(&sess.ID, &sess.ExerciseID, &source, &sess.Reps, &sess.Frames,
			&sess.DurationMs, &sess.VideoName, &sess.StartedAt, &sess.EndedAt, &sess.CreatedAt)
		if err != nil {
			return nil, err
		}

		sess.Source = SessionSource(source)
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// StatsByExercise aggregates session count and total reps per exercise.
func (r *SessionRepository) StatsByExercise() ([]ExerciseStats, error) {
	rows, err := r.db.Query(
		`SELECT exercise_id, COUNT(*), COALESCE(SUM(reps), 0)
		 FROM sessions GROUP BY exercise_id ORDER BY exercise_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []ExerciseStats
	for rows.Next() {
		var st ExerciseStats
		if err := rows.Scan(&st.ExerciseID, &st.Sessions, &st.TotalReps); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// Delete removes a session from history.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
