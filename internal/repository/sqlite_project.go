package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/phaseline/internal/db"
	"github.com/alexanderramin/phaseline/internal/domain"
)

// SQLiteProjectRepo implements ProjectRepo over the projects and
// project_revisions tables. Writes touch both tables; run them through a
// db.UnitOfWork to keep them atomic.
type SQLiteProjectRepo struct {
	db db.DBTX
}

func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project, change Change) error {
	doc, err := encodeProject(p)
	if err != nil {
		return err
	}
	now := nowUTC()
	query := `INSERT INTO projects (id, name, region, document, revision, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Region, doc, now, now); err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return r.insertRevision(ctx, p.ID, 1, doc, change, now)
}

func (r *SQLiteProjectRepo) insertRevision(ctx context.Context, id string, revision int, doc string, change Change, at string) error {
	query := `INSERT INTO project_revisions (project_id, revision, action, severity, document, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, id, revision, change.Action, change.Severity, doc, at); err != nil {
		return fmt.Errorf("inserting revision %d of project %s: %w", revision, id, err)
	}
	return nil
}

// GetByID returns the current document of a project and its revision.
func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, int, error) {
	var doc string
	var revision int
	err := r.db.QueryRowContext(ctx, `SELECT document, revision FROM projects WHERE id = ?`, id).Scan(&doc, &revision)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, domain.NotFound("project", id)
		}
		return nil, 0, fmt.Errorf("loading project: %w", err)
	}
	p, err := decodeProject(doc)
	if err != nil {
		return nil, 0, err
	}
	return p, revision, nil
}

func (r *SQLiteProjectRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("checking project: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteProjectRepo) List(ctx context.Context) ([]ProjectSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, region, revision, updated_at FROM projects ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var out []ProjectSummary
	for rows.Next() {
		var s ProjectSummary
		var updatedAt string
		if err := rows.Scan(&s.ID, &s.Name, &s.Region, &s.Revision, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		s.UpdatedAt = parseTime(updatedAt)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return out, nil
}

// Update stores p as the revision after baseRevision and returns the new
// revision number. It fails with ErrRevisionConflict when baseRevision is
// no longer current.
func (r *SQLiteProjectRepo) Update(ctx context.Context, p *domain.Project, baseRevision int, change Change) (int, error) {
	doc, err := encodeProject(p)
	if err != nil {
		return 0, err
	}
	now := nowUTC()
	query := `UPDATE projects SET name = ?, region = ?, document = ?, revision = revision + 1, updated_at = ?
		WHERE id = ? AND revision = ?`
	res, err := r.db.ExecContext(ctx, query, p.Name, p.Region, doc, now, p.ID, baseRevision)
	if err != nil {
		return 0, fmt.Errorf("updating project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("updating project: %w", err)
	}
	if n == 0 {
		exists, err := r.Exists(ctx, p.ID)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, domain.NotFound("project", p.ID)
		}
		return 0, fmt.Errorf("saving project %s on revision %d: %w", p.ID, baseRevision, ErrRevisionConflict)
	}
	next := baseRevision + 1
	if err := r.insertRevision(ctx, p.ID, next, doc, change, now); err != nil {
		return 0, err
	}
	return next, nil
}

// Delete removes a project and its history.
func (r *SQLiteProjectRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM project_revisions WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("deleting project history: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFound("project", id)
	}
	return nil
}

// ListRevisions returns the save history of a project, newest first.
func (r *SQLiteProjectRepo) ListRevisions(ctx context.Context, id string) ([]Revision, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT revision, action, severity, created_at FROM project_revisions WHERE project_id = ? ORDER BY revision DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("listing revisions: %w", err)
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var rev Revision
		var createdAt string
		if err := rows.Scan(&rev.Number, &rev.Action, &rev.Severity, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning revision row: %w", err)
		}
		rev.CreatedAt = parseTime(createdAt)
		out = append(out, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating revisions: %w", err)
	}
	if len(out) == 0 {
		return nil, domain.NotFound("project", id)
	}
	return out, nil
}

func (r *SQLiteProjectRepo) GetRevision(ctx context.Context, id string, revision int) (*domain.Project, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM project_revisions WHERE project_id = ? AND revision = ?`, id, revision).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("revision", fmt.Sprintf("%s@%d", id, revision))
		}
		return nil, fmt.Errorf("loading revision: %w", err)
	}
	return decodeProject(doc)
}
