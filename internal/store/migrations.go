package store

import "fmt"

// schema lists the catalog migrations in order. The database records how
// many have been applied in PRAGMA user_version, so append new steps at the
// end and never edit old ones.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS albums (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		year TEXT NOT NULL DEFAULT '',
		genre TEXT NOT NULL DEFAULT '',
		cover_url TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,

	// Carousel order is by artist.
	`CREATE INDEX IF NOT EXISTS idx_albums_artist ON albums(artist COLLATE NOCASE)`,
}

// SchemaVersion is the user_version of a fully migrated catalog.
var SchemaVersion = len(schema)

// runMigrations applies every step past the stored user_version, each in its
// own transaction.
func (s *Store) runMigrations() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i := version; i < len(schema); i++ {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(schema[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		// PRAGMA does not take bound parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}

	return nil
}
