package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/phaseline/internal/db"
	"github.com/alexanderramin/phaseline/internal/domain"
)

// ProjectStore is the host-facing entry point to project persistence. Reads
// go straight to the database; every write runs in one transaction so a
// project row never advances without its revision row.
type ProjectStore struct {
	reads *SQLiteProjectRepo
	uow   db.UnitOfWork
}

func NewProjectStore(database *sql.DB, uow db.UnitOfWork) *ProjectStore {
	return &ProjectStore{reads: NewSQLiteProjectRepo(database), uow: uow}
}

// Import stores a new project as revision 1.
func (s *ProjectStore) Import(ctx context.Context, p *domain.Project) error {
	exists, err := s.reads.Exists(ctx, p.ID)
	if err != nil {
		return err
	}
	if exists {
		return domain.Invalid("project.id", domain.RuleDuplicateID, "project %q already exists", p.ID)
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return NewSQLiteProjectRepo(tx).Create(ctx, p, Change{Action: "import"})
	})
}

// Load returns the current project and the revision to pass back to Save.
func (s *ProjectStore) Load(ctx context.Context, id string) (*domain.Project, int, error) {
	return s.reads.GetByID(ctx, id)
}

func (s *ProjectStore) List(ctx context.Context) ([]ProjectSummary, error) {
	return s.reads.List(ctx)
}

// Save writes p on top of baseRevision and returns the new revision.
func (s *ProjectStore) Save(ctx context.Context, p *domain.Project, baseRevision int, change Change) (int, error) {
	var next int
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		n, err := NewSQLiteProjectRepo(tx).Update(ctx, p, baseRevision, change)
		next = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (s *ProjectStore) Remove(ctx context.Context, id string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return NewSQLiteProjectRepo(tx).Delete(ctx, id)
	})
}

func (s *ProjectStore) History(ctx context.Context, id string) ([]Revision, error) {
	return s.reads.ListRevisions(ctx, id)
}

// Restore makes an earlier revision current again by saving it as a new
// revision. History is never rewritten.
func (s *ProjectStore) Restore(ctx context.Context, id string, revision int) (int, error) {
	var next int
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := NewSQLiteProjectRepo(tx)
		old, err := repo.GetRevision(ctx, id, revision)
		if err != nil {
			return err
		}
		_, current, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next, err = repo.Update(ctx, old, current, Change{Action: fmt.Sprintf("restore revision %d", revision)})
		return err
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}
