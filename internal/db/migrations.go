package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS actors (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			role          TEXT NOT NULL CHECK(role IN ('sdr', 'salesperson', 'supervisor')),
			supervisor_id TEXT REFERENCES actors(id),
			active        INTEGER NOT NULL DEFAULT 1,
			created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS records (
			id             TEXT PRIMARY KEY,
			kind           TEXT NOT NULL CHECK(kind IN ('meeting', 'sale')),
			actor_id       TEXT NOT NULL REFERENCES actors(id),
			counterpart_id TEXT REFERENCES actors(id),
			linked_id      TEXT REFERENCES records(id),
			outcome        TEXT NOT NULL,
			value          TEXT NOT NULL DEFAULT '0',
			occurred_at    INTEGER NOT NULL,
			created_at     DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_records_actor_time ON records(actor_id, occurred_at);
		CREATE INDEX IF NOT EXISTS idx_records_time ON records(occurred_at);
		CREATE INDEX IF NOT EXISTS idx_actors_role ON actors(role);

		CREATE TABLE IF NOT EXISTS job_runs (
			job      TEXT PRIMARY KEY,
			last_run INTEGER NOT NULL
		);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}
