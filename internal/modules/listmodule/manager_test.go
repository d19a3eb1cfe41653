package listmodule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/modules/catalogmodule"
)

func setupManagerTest(t *testing.T) (*gorm.DB, *Manager) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&database.User{},
		&database.Movie{},
		&database.CustomList{},
		&database.CustomListMovie{},
	))
	return db, NewManager(db, catalogmodule.NewMovieCache(db, nil, 1))
}

func movieOf(id uint) database.Movie {
	return database.Movie{ID: id, Title: "movie"}
}

func positions(t *testing.T, mg *Manager, listID string) map[uint]int {
	t.Helper()
	rows, err := mg.ListMovies(context.Background(), listID)
	require.NoError(t, err)
	got := make(map[uint]int, len(rows))
	for _, row := range rows {
		got[row.MovieID] = row.Position
	}
	return got
}

func TestCreateListStartsEmpty(t *testing.T) {
	_, mg := setupManagerTest(t)
	ctx := context.Background()

	list, err := mg.CreateList(ctx, 1, "noir essentials", "rainy night viewing", true)
	require.NoError(t, err)
	assert.NotEmpty(t, list.ID)
	assert.True(t, list.Public)

	rows, err := mg.ListMovies(ctx, list.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAddMovieAppendsAtTail(t *testing.T) {
	_, mg := setupManagerTest(t)
	ctx := context.Background()

	list, err := mg.CreateList(ctx, 1, "watch order", "", false)
	require.NoError(t, err)

	require.NoError(t, mg.AddMovie(ctx, list.ID, movieOf(10)))
	require.NoError(t, mg.AddMovie(ctx, list.ID, movieOf(20)))
	require.NoError(t, mg.AddMovie(ctx, list.ID, movieOf(30)))

	assert.Equal(t, map[uint]int{10: 0, 20: 1, 30: 2}, positions(t, mg, list.ID))
}

func TestAddMovieTwiceKeepsOneRow(t *testing.T) {
	db, mg := setupManagerTest(t)
	ctx := context.Background()

	list, err := mg.CreateList(ctx, 1, "dupes", "", false)
	require.NoError(t, err)

	require.NoError(t, mg.AddMovie(ctx, list.ID, movieOf(10)))
	require.NoError(t, mg.AddMovie(ctx, list.ID, movieOf(10)))

	var count int64
	require.NoError(t, db.Model(&database.CustomListMovie{}).Where("list_id = ?", list.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRemoveMovieCompactsPositions(t *testing.T) {
	_, mg := setupManagerTest(t)
	ctx := context.Background()

	list, err := mg.CreateList(ctx, 1, "compaction", "", false)
	require.NoError(t, err)

	require.NoError(t, mg.AddMovie(ctx, list.ID, movieOf(10)))
	require.NoError(t, mg.AddMovie(ctx, list.ID, movieOf(20)))
	require.NoError(t, mg.AddMovie(ctx, list.ID, movieOf(30)))

	require.NoError(t, mg.RemoveMovie(ctx, list.ID, 20))

	assert.Equal(t, map[uint]int{10: 0, 30: 1}, positions(t, mg, list.ID))
}

func TestReorderAssignsContiguousPositions(t *testing.T) {
	_, mg := setupManagerTest(t)
	ctx := context.Background()

	list, err := mg.CreateList(ctx, 1, "reorder", "", false)
	require.NoError(t, err)

	require.NoError(t, mg.AddMovie(ctx, list.ID, movieOf(10)))
	require.NoError(t, mg.AddMovie(ctx, list.ID, movieOf(20)))
	require.NoError(t, mg.AddMovie(ctx, list.ID, movieOf(30)))

	require.NoError(t, mg.Reorder(ctx, list.ID, []uint{30, 10, 20}))

	assert.Equal(t, map[uint]int{30: 0, 10: 1, 20: 2}, positions(t, mg, list.ID))

	rows, err := mg.ListMovies(ctx, list.ID)
	require.NoError(t, err)
	for i, row := range rows {
		assert.Equal(t, i, row.Position)
	}
}

func TestReorderRejectsPartialOrdering(t *testing.T) {
	_, mg := setupManagerTest(t)
	ctx := context.Background()

	list, err := mg.CreateList(ctx, 1, "strict", "", false)
	require.NoError(t, err)

	require.NoError(t, mg.AddMovie(ctx, list.ID, movieOf(10)))
	require.NoError(t, mg.AddMovie(ctx, list.ID, movieOf(20)))

	assert.ErrorIs(t, mg.Reorder(ctx, list.ID, []uint{10}), ErrInvalidOrdering)
	assert.ErrorIs(t, mg.Reorder(ctx, list.ID, []uint{10, 10}), ErrInvalidOrdering)
	assert.ErrorIs(t, mg.Reorder(ctx, list.ID, []uint{10, 99}), ErrInvalidOrdering)

	// Failed reorders leave positions untouched
	assert.Equal(t, map[uint]int{10: 0, 20: 1}, positions(t, mg, list.ID))
}

func TestDeleteListRemovesMembers(t *testing.T) {
	db, mg := setupManagerTest(t)
	ctx := context.Background()

	list, err := mg.CreateList(ctx, 1, "doomed", "", false)
	require.NoError(t, err)
	require.NoError(t, mg.AddMovie(ctx, list.ID, movieOf(10)))

	require.NoError(t, mg.DeleteList(ctx, list.ID))

	var lists, members int64
	require.NoError(t, db.Model(&database.CustomList{}).Count(&lists).Error)
	require.NoError(t, db.Model(&database.CustomListMovie{}).Count(&members).Error)
	assert.Zero(t, lists)
	assert.Zero(t, members)
}
