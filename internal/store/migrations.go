package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Profiles table - one row per username on this installation
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// User stats table - the aggregated stats record as JSON, keyed by an opaque id
		`CREATE TABLE IF NOT EXISTS user_stats (
			key TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Hits table - history of every scored hit
		`CREATE TABLE IF NOT EXISTS hits (
			id TEXT PRIMARY KEY,
			profile_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			duration REAL NOT NULL,
			tier TEXT NOT NULL,
			points INTEGER NOT NULL DEFAULT 0,
			mode TEXT NOT NULL CHECK(mode IN ('tiered', 'classic')),
			created_at DATETIME NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_hits_profile_id ON hits(profile_id)`,
		`CREATE INDEX IF NOT EXISTS idx_hits_created_at ON hits(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
