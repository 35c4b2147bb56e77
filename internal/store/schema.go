package store

import (
	"database/sql"
	"fmt"
)

// CurrentSchemaVersion is the schema version this build of QFS expects.
const CurrentSchemaVersion = 2

// baseSchema creates every table/index at their current definitions. It is
// safe to run against an empty database or a database already at
// CurrentSchemaVersion: every statement is idempotent.
const baseSchema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS collections (
	name       TEXT PRIMARY KEY,
	root_path  TEXT NOT NULL,
	patterns   TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS content (
	hash         TEXT PRIMARY KEY,
	content_type TEXT NOT NULL,
	size         INTEGER NOT NULL,
	payload      BLOB NOT NULL,
	inserted_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	collection  TEXT NOT NULL,
	path        TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	hash        TEXT NOT NULL,
	file_type   TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL,
	modified_at TIMESTAMP NOT NULL,
	indexed_at  TIMESTAMP NOT NULL,
	active      INTEGER NOT NULL DEFAULT 1,
	UNIQUE(collection, path)
);

CREATE INDEX IF NOT EXISTS documents_hash_idx ON documents(hash);
CREATE INDEX IF NOT EXISTS documents_active_idx ON documents(active);

-- FTS shadow of active documents. rowid is kept equal to documents.id so
-- it can be joined back without a separate mapping table.
CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
	filepath,
	title,
	body,
	tokenize = 'porter unicode61'
);

CREATE TABLE IF NOT EXISTS embeddings (
	hash        TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	char_offset INTEGER NOT NULL,
	model       TEXT NOT NULL,
	vector      BLOB NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	PRIMARY KEY (hash, chunk_index, model)
);

CREATE TABLE IF NOT EXISTS path_contexts (
	id          TEXT PRIMARY KEY,
	collection  TEXT,
	path_prefix TEXT NOT NULL,
	description TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS path_contexts_lookup_idx ON path_contexts(collection, path_prefix);
`

// migrationStep is one forward-migration unit: idempotent DDL/data-copy that
// can be re-run without damage, paired with the version it upgrades *to*.
type migrationStep struct {
	toVersion int
	apply     func(*sql.Tx) error
}

// migrations lists every forward step in order. Version 1 is the original
// shape (collections/content/documents/documents_fts/embeddings); version 2
// adds path_contexts. baseSchema already creates path_contexts directly so a
// brand-new database opens straight at CurrentSchemaVersion; this step only
// matters for a database that was created before path_contexts existed.
var migrations = []migrationStep{
	{
		toVersion: 2,
		apply: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS path_contexts (
					id          TEXT PRIMARY KEY,
					collection  TEXT,
					path_prefix TEXT NOT NULL,
					description TEXT NOT NULL,
					created_at  TIMESTAMP NOT NULL
				);
				CREATE INDEX IF NOT EXISTS path_contexts_lookup_idx ON path_contexts(collection, path_prefix);
			`)
			return err
		},
	},
}

// migrate brings db from its on-disk schema_version up to CurrentSchemaVersion.
// It fails with SchemaTooNew if the on-disk version is newer than this build
// understands.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return wrapDB("failed to apply base schema", err)
	}

	stored, err := readSchemaVersion(db)
	if err != nil {
		return err
	}

	if stored > CurrentSchemaVersion {
		return schemaTooNewError(stored, CurrentSchemaVersion)
	}

	if stored == 0 {
		if _, err := db.Exec(`INSERT INTO schema_version(version) VALUES (?)`, CurrentSchemaVersion); err != nil {
			return wrapDB("failed to seed schema_version", err)
		}
		return nil
	}

	for _, step := range migrations {
		if stored >= step.toVersion {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return wrapDB("failed to begin migration transaction", err)
		}
		if err := step.apply(tx); err != nil {
			_ = tx.Rollback()
			return wrapDB(fmt.Sprintf("migration to version %d failed", step.toVersion), err)
		}
		if _, err := tx.Exec(`UPDATE schema_version SET version = ?`, step.toVersion); err != nil {
			_ = tx.Rollback()
			return wrapDB("failed to record schema version", err)
		}
		if err := tx.Commit(); err != nil {
			return wrapDB("failed to commit migration", err)
		}
		stored = step.toVersion
	}

	return nil
}

func readSchemaVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, wrapDB("failed to read schema_version", err)
	}
	return version, nil
}
