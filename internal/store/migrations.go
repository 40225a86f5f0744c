package store

import "fmt"

// migration is one forward-only schema step. Versions must increase.
type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "users: crumbs balance and last activity",
		SQL: `
CREATE TABLE users (
    uid            TEXT PRIMARY KEY,
    score          INTEGER NOT NULL DEFAULT 0,
    last_active_at INTEGER,
    created_at     INTEGER NOT NULL
);
`,
	},
	{
		Version:     2,
		Description: "projects: per-user research projects with notes",
		SQL: `
CREATE TABLE projects (
    id               TEXT PRIMARY KEY,
    uid              TEXT NOT NULL,
    name             TEXT NOT NULL,
    created_at       INTEGER NOT NULL,
    notes_html       TEXT,
    notes_title      TEXT,
    notes_updated_at INTEGER
);

CREATE INDEX idx_projects_uid ON projects(uid, created_at);
`,
	},
	{
		Version:     3,
		Description: "project_sources: transcripts attached to a project, in insertion order",
		SQL: `
CREATE TABLE project_sources (
    seq         INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id  TEXT NOT NULL,
    source_id   TEXT,
    video_id    TEXT,
    url         TEXT NOT NULL,
    title       TEXT NOT NULL,
    transcript  TEXT NOT NULL,
    added_at    INTEGER NOT NULL,

    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX idx_sources_project ON project_sources(project_id, seq);
`,
	},
	{
		Version:     4,
		Description: "bookmarks: per-project links, unique by url",
		SQL: `
CREATE TABLE bookmarks (
    id          TEXT PRIMARY KEY,
    project_id  TEXT NOT NULL,
    url         TEXT NOT NULL,
    title       TEXT,
    created_at  INTEGER NOT NULL,

    UNIQUE (project_id, url),
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);
`,
	},
	{
		Version:     5,
		Description: "chats: append-only assistant conversation log",
		SQL: `
CREATE TABLE chats (
    seq         INTEGER PRIMARY KEY AUTOINCREMENT,
    id          TEXT NOT NULL UNIQUE,
    project_id  TEXT NOT NULL,
    role        TEXT NOT NULL CHECK (role IN ('user', 'model')),
    text        TEXT NOT NULL,
    created_at  INTEGER NOT NULL,

    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX idx_chats_project ON chats(project_id, created_at, seq);
`,
	},
}

const schemaVersionsDDL = `
CREATE TABLE IF NOT EXISTS schema_versions (
    version     INTEGER PRIMARY KEY,
    description TEXT NOT NULL,
    applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
)`

// migrate applies every migration newer than the recorded schema version.
func (db *DB) migrate() error {
	if _, err := db.Exec(schemaVersionsDDL); err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	current, err := db.SchemaVersion()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := db.apply(m); err != nil {
			return err
		}
	}
	return nil
}

// apply runs one migration and records it in the same transaction.
func (db *DB) apply(m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
		m.Version, m.Description,
	); err != nil {
		return fmt.Errorf("record migration %d: %w", m.Version, err)
	}
	return tx.Commit()
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
