package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/projspace/pkg/types"
)

func setupTestDB(t *testing.T) *SQLite {
	t.Helper()
	// Use in-memory database for testing
	db, err := Open(":memory:")
	require.NoError(t, err)
	require.NotNil(t, db)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenAndClose(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestInsert(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	project := &types.Project{
		Name:       "foo",
		Attributes: types.Attributes{"owner": "lab"},
	}
	err := db.Insert(ctx, project)
	require.NoError(t, err)
	assert.NotEmpty(t, project.ID)
	assert.False(t, project.CreatedAt.IsZero())
	assert.False(t, project.ModifiedAt.IsZero())
}

func TestInsertDuplicate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Insert(ctx, &types.Project{Name: "foo"}))

	err := db.Insert(ctx, &types.Project{Name: "foo"})
	assert.ErrorIs(t, err, types.ErrProjectExists)

	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInsertInvalid(t *testing.T) {
	db := setupTestDB(t)

	err := db.Insert(context.Background(), &types.Project{})
	assert.ErrorIs(t, err, types.ErrInvalidName)
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	inserted := &types.Project{
		Name:       "foo",
		Attributes: types.Attributes{"owner": "lab", "iterations": float64(12)},
	}
	require.NoError(t, db.Insert(ctx, inserted))

	got, err := db.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, inserted.ID, got.ID)
	assert.Equal(t, "foo", got.Name)
	// Attributes round-trip through JSON, so numbers come back as float64.
	assert.Equal(t, inserted.Attributes, got.Attributes)
}

func TestGetNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Insert(ctx, &types.Project{Name: "foo"}))
	require.NoError(t, db.Delete(ctx, "foo"))

	_, err := db.Get(ctx, "foo")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteNotFound(t *testing.T) {
	db := setupTestDB(t)

	err := db.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestUpdateAttributes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	project := &types.Project{Name: "foo", Attributes: types.Attributes{"a": "1"}}
	require.NoError(t, db.Insert(ctx, project))

	err := db.UpdateAttributes(ctx, "foo", types.Attributes{"b": "2"})
	require.NoError(t, err)

	got, err := db.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, types.Attributes{"b": "2"}, got.Attributes)
	assert.False(t, got.ModifiedAt.Before(project.ModifiedAt))
}

func TestUpdateAttributesNotFound(t *testing.T) {
	db := setupTestDB(t)

	err := db.UpdateAttributes(context.Background(), "missing", types.Attributes{})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestAllSortedAndRestartable(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"charlie", "alpha", "bravo"} {
		require.NoError(t, db.Insert(ctx, &types.Project{Name: name}))
	}

	collect := func() []string {
		var names []string
		for project, err := range db.All(ctx) {
			require.NoError(t, err)
			names = append(names, project.Name)
		}
		return names
	}

	want := []string{"alpha", "bravo", "charlie"}
	assert.Equal(t, want, collect())
	// Restartable: a second range re-runs the query.
	assert.Equal(t, want, collect())
}

func TestAllEarlyBreak(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, db.Insert(ctx, &types.Project{Name: name}))
	}

	var first string
	for project, err := range db.All(ctx) {
		require.NoError(t, err)
		first = project.Name
		break
	}
	assert.Equal(t, "a", first)
}

func TestExists(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ok, err := db.Exists(ctx, "foo")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Insert(ctx, &types.Project{Name: "foo"}))

	ok, err = db.Exists(ctx, "foo")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestActivePointer(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Never activated.
	active, err := db.GetActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, db.Insert(ctx, &types.Project{Name: "a"}))
	require.NoError(t, db.Insert(ctx, &types.Project{Name: "b"}))

	require.NoError(t, db.SetActive(ctx, "a"))
	active, err = db.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", active)

	// Activating b demotes a; at most one active row.
	require.NoError(t, db.SetActive(ctx, "b"))
	active, err = db.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", active)

	require.NoError(t, db.ClearActive(ctx))
	active, err = db.GetActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestActivePointerPersists(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "projects.db")

	db, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Insert(ctx, &types.Project{Name: "foo"}))
	require.NoError(t, db.SetActive(ctx, "foo"))
	require.NoError(t, db.Close())

	// A re-opened store remembers the last active project.
	db, err = Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	active, err := db.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "foo", active)
}

func TestMigrationsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	// Running migrations again on an up-to-date database is a no-op.
	err := ApplyMigrations(context.Background(), db.db)
	assert.NoError(t, err)
}
