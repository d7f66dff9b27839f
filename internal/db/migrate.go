package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Projects are stored as whole JSON documents, one row per project, with an
// append-only history of every saved revision.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		region      TEXT NOT NULL DEFAULT '',
		document    TEXT NOT NULL,
		revision    INTEGER NOT NULL DEFAULT 1 CHECK(revision >= 1),
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS project_revisions (
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		revision    INTEGER NOT NULL,
		action      TEXT NOT NULL,
		document    TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		PRIMARY KEY (project_id, revision)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_name ON projects(name)`,
	`CREATE INDEX IF NOT EXISTS idx_revisions_created ON project_revisions(project_id, created_at)`,
	`ALTER TABLE project_revisions ADD COLUMN severity TEXT NOT NULL DEFAULT ''`,
}

// Migrate runs all schema migrations. It is safe to run repeatedly.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE has no IF NOT EXISTS; re-runs hit duplicate columns.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillRevisions(db); err != nil {
		return fmt.Errorf("backfilling project revisions: %w", err)
	}
	return nil
}

// migrateBackfillRevisions records the current document of any project
// whose current revision has no history row, so every project can be
// listed and restored from its history.
func migrateBackfillRevisions(db *sql.DB) error {
	ctx := context.Background()
	query := `INSERT OR IGNORE INTO project_revisions (project_id, revision, action, document, created_at)
		SELECT id, revision, 'backfill', document, updated_at FROM projects`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("inserting missing revision rows: %w", err)
	}
	return nil
}
