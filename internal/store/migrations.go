package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Profiles table - per-gesture detector tuning overrides
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			gesture TEXT NOT NULL CHECK(gesture IN ('blink', 'smile', 'nod', 'wave')),
			threshold REAL NOT NULL DEFAULT 0,
			threshold_multiplier REAL NOT NULL DEFAULT 0,
			min_duration_ms INTEGER NOT NULL DEFAULT 0,
			max_duration_ms INTEGER NOT NULL DEFAULT 0,
			double_signal_window_ms INTEGER NOT NULL DEFAULT 0,
			cooldown_ms INTEGER NOT NULL DEFAULT 0,
			history_size INTEGER NOT NULL DEFAULT 0,
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_profiles_gesture ON profiles(gesture)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
