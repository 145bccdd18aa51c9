package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per completed tracking session,
		// whether live (camera) or video (uploaded file).
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			exercise_id TEXT NOT NULL,
			source TEXT NOT NULL CHECK(source IN ('live', 'video')),
			reps INTEGER NOT NULL DEFAULT 0,
			frames INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			video_name TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes for history queries
		`CREATE INDEX IF NOT EXISTS idx_sessions_exercise_id ON sessions(exercise_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
