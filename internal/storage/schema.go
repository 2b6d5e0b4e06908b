package storage

import (
	"context"
	"database/sql"
)

const currentSchemaVersion = 1

func (db *DB) initializeSchema() error {
	return db.WithTx(context.Background(), func(tx *sql.Tx) error {
		for _, stmt := range []string{
			`CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS passes (
				id TEXT PRIMARY KEY,
				started_at TEXT NOT NULL,
				finished_at TEXT NOT NULL,
				units INTEGER NOT NULL,
				written INTEGER NOT NULL,
				removed INTEGER NOT NULL,
				diagnostics INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_passes_finished ON passes(finished_at)`,
			`CREATE TABLE IF NOT EXISTS units (
				key TEXT PRIMARY KEY,
				generator TEXT NOT NULL,
				path TEXT NOT NULL,
				source TEXT NOT NULL,
				sha256 TEXT NOT NULL,
				size INTEGER NOT NULL,
				content BLOB NOT NULL,
				pass_id TEXT NOT NULL REFERENCES passes(id),
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_units_pass ON units(pass_id)`,
		} {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}
		db.logger.Debug("Manifest schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

// runMigrations upgrades an existing manifest. Version 1 is the first
// schema, so there is nothing to migrate yet.
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}
	if version == 0 {
		return db.initializeSchema()
	}
	if version == currentSchemaVersion {
		db.logger.Debug("Manifest schema is up to date", "version", version)
	}
	return nil
}

func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.conn.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}
