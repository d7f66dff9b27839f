package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/phaseline/internal/domain"
)

// ErrRevisionConflict is returned when a project is saved on top of a
// revision that is no longer current.
var ErrRevisionConflict = errors.New("project was modified since it was loaded")

// ProjectSummary is a listing row; it does not decode the document.
type ProjectSummary struct {
	ID        string
	Name      string
	Region    string
	Revision  int
	UpdatedAt time.Time
}

// Revision is one entry in a project's save history.
type Revision struct {
	Number    int
	Action    string
	Severity  string
	CreatedAt time.Time
}

// Change describes why a revision was written.
type Change struct {
	Action   string // e.g. "import", "delete phase build"
	Severity string // headline impact severity, empty when not analyzed
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project, change Change) error
	GetByID(ctx context.Context, id string) (*domain.Project, int, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]ProjectSummary, error)
	Update(ctx context.Context, p *domain.Project, baseRevision int, change Change) (int, error)
	Delete(ctx context.Context, id string) error
	ListRevisions(ctx context.Context, id string) ([]Revision, error)
	GetRevision(ctx context.Context, id string, revision int) (*domain.Project, error)
}
