package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepo_CreateAndGetByID(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)
	ctx := context.Background()

	proj := testutil.BuildAndTest(testutil.WithRegion("MY"))
	require.NoError(t, repo.Create(ctx, proj, Change{Action: "import"}))

	fetched, rev, err := repo.GetByID(ctx, "launch")
	require.NoError(t, err)
	assert.Equal(t, 1, rev)
	assert.Equal(t, proj, fetched)
}

func TestProjectRepo_GetByID_NotFound(t *testing.T) {
	repo := NewSQLiteProjectRepo(testutil.NewTestDB(t))

	_, _, err := repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectRepo_List(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)
	ctx := context.Background()

	b := testutil.BuildAndTest()
	a := testutil.BuildAndTest()
	a.ID, a.Name, a.Region = "alpha", "Alpha", "US"
	require.NoError(t, repo.Create(ctx, b, Change{Action: "import"}))
	require.NoError(t, repo.Create(ctx, a, Change{Action: "import"}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].ID)
	assert.Equal(t, "US", list[0].Region)
	assert.Equal(t, "launch", list[1].ID)
	assert.Equal(t, 1, list[1].Revision)
	assert.False(t, list[1].UpdatedAt.IsZero())
}

func TestProjectRepo_UpdateBumpsRevision(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)
	ctx := context.Background()

	proj := testutil.BuildAndTest()
	require.NoError(t, repo.Create(ctx, proj, Change{Action: "import"}))

	proj.Phases = proj.Phases[1:]
	proj.Phases[0].Dependencies = nil
	rev, err := repo.Update(ctx, proj, 1, Change{Action: "delete phase build", Severity: "medium"})
	require.NoError(t, err)
	assert.Equal(t, 2, rev)

	fetched, cur, err := repo.GetByID(ctx, "launch")
	require.NoError(t, err)
	assert.Equal(t, 2, cur)
	assert.Len(t, fetched.Phases, 1)

	revs, err := repo.ListRevisions(ctx, "launch")
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, 2, revs[0].Number)
	assert.Equal(t, "delete phase build", revs[0].Action)
	assert.Equal(t, "medium", revs[0].Severity)
	assert.Equal(t, "import", revs[1].Action)

	first, err := repo.GetRevision(ctx, "launch", 1)
	require.NoError(t, err)
	assert.Len(t, first.Phases, 2)
}

func TestProjectRepo_UpdateConflictAndNotFound(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)
	ctx := context.Background()

	proj := testutil.BuildAndTest()
	require.NoError(t, repo.Create(ctx, proj, Change{Action: "import"}))
	_, err := repo.Update(ctx, proj, 1, Change{Action: "touch"})
	require.NoError(t, err)

	_, err = repo.Update(ctx, proj, 1, Change{Action: "stale"})
	assert.ErrorIs(t, err, ErrRevisionConflict)

	ghost := testutil.BuildAndTest()
	ghost.ID = "ghost"
	_, err = repo.Update(ctx, ghost, 1, Change{Action: "touch"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectRepo_Delete(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.BuildAndTest(), Change{Action: "import"}))
	require.NoError(t, repo.Delete(ctx, "launch"))

	_, _, err := repo.GetByID(ctx, "launch")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.ListRevisions(ctx, "launch")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "launch"), domain.ErrNotFound)
}

func TestProjectRepo_CorruptDocumentRejected(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)
	ctx := context.Background()

	_, err := database.Exec(`INSERT INTO projects (id, name, document, created_at, updated_at)
		VALUES ('bad', 'Bad', '{"project":{"id":"bad","name":"Bad"},"phases":[]}', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, _, err = repo.GetByID(ctx, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding project document")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
