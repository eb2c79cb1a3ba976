package state

import "database/sql"

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			current_index INTEGER NOT NULL DEFAULT -1,
			play_mode TEXT NOT NULL DEFAULT 'continue',
			elapsed_ms INTEGER NOT NULL DEFAULT 0,
			volume INTEGER NOT NULL DEFAULT 80,
			saved_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS session_entries (
			position INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			title TEXT,
			artist TEXT,
			album TEXT,
			duration_ms INTEGER
		);
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, currentSchemaVersion)
	return err
}
