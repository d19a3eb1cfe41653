package syncmodule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/modules/catalogmodule"
	"github.com/shaflix/shaflix/internal/modules/collectionsmodule"
)

func setupImporterTest(t *testing.T) (*gorm.DB, *Importer, uint) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&database.User{},
		&database.Movie{},
		&database.Favorite{},
		&database.WatchlistItem{},
		&database.WatchedItem{},
		&database.DiaryEntry{},
		&database.CustomList{},
		&database.CustomListMovie{},
		&database.UserStats{},
	))

	user := database.User{AuthSubject: "sync", Email: "sync@example.com", Username: "sync"}
	require.NoError(t, db.Create(&user).Error)

	cache := catalogmodule.NewMovieCache(db, nil, 1)
	store := collectionsmodule.NewStore(db, cache)
	return db, NewImporter(db, cache, store), user.ID
}

func sectionByName(t *testing.T, results []SectionResult, name string) SectionResult {
	t.Helper()
	for _, r := range results {
		if r.Section == name {
			return r
		}
	}
	t.Fatalf("no section %q in results", name)
	return SectionResult{}
}

func TestImportFullSnapshot(t *testing.T) {
	db, im, userID := setupImporterTest(t)

	payload := &SyncPayload{
		Profile: &SyncProfile{DisplayName: strPtr("Synced Name")},
		Movies: []SyncMovie{
			{ID: 27205, Title: "Inception", Runtime: 148},
			{ID: 603, Title: "The Matrix", Runtime: 136},
		},
		Favorites: []SyncMovie{{ID: 27205, Title: "Inception"}},
		Watchlist: []SyncMovie{{ID: 603, Title: "The Matrix"}},
		Watched:   []SyncMovie{{ID: 27205, Title: "Inception"}},
		Diary: []SyncDiaryEntry{
			{Movie: SyncMovie{ID: 27205, Title: "Inception"}, WatchedDate: "2024-01-01", Rating: 4.5},
		},
		Lists: []SyncList{
			{Name: "sci-fi", Public: true, Movies: []SyncMovie{
				{ID: 603, Title: "The Matrix"},
				{ID: 27205, Title: "Inception"},
			}},
		},
	}

	results := im.Import(context.Background(), userID, payload)
	assert.Equal(t, StatusOK, OverallStatus(results))
	for _, name := range []string{"movies", "profile", "favorites", "watchlist", "watched", "diary", "lists"} {
		assert.Equal(t, StatusOK, sectionByName(t, results, name).Status, name)
	}

	var user database.User
	require.NoError(t, db.First(&user, userID).Error)
	assert.Equal(t, "Synced Name", user.DisplayName)

	var favorites, watched, diary int64
	require.NoError(t, db.Model(&database.Favorite{}).Where("user_id = ?", userID).Count(&favorites).Error)
	require.NoError(t, db.Model(&database.WatchedItem{}).Where("user_id = ?", userID).Count(&watched).Error)
	require.NoError(t, db.Model(&database.DiaryEntry{}).Where("user_id = ?", userID).Count(&diary).Error)
	assert.Equal(t, int64(1), favorites)
	assert.Equal(t, int64(1), watched)
	assert.Equal(t, int64(1), diary)

	var members []database.CustomListMovie
	require.NoError(t, db.Order("position ASC").Find(&members).Error)
	require.Len(t, members, 2)
	assert.Equal(t, uint(603), members[0].MovieID)
	assert.Equal(t, 0, members[0].Position)
	assert.Equal(t, uint(27205), members[1].MovieID)
	assert.Equal(t, 1, members[1].Position)
}

func TestImportIsIdempotent(t *testing.T) {
	db, im, userID := setupImporterTest(t)

	payload := &SyncPayload{
		Favorites: []SyncMovie{{ID: 27205, Title: "Inception"}},
		Diary: []SyncDiaryEntry{
			{Movie: SyncMovie{ID: 27205, Title: "Inception"}, WatchedDate: "2024-01-01"},
		},
	}

	im.Import(context.Background(), userID, payload)
	results := im.Import(context.Background(), userID, payload)

	assert.Equal(t, StatusOK, sectionByName(t, results, "favorites").Status)
	assert.Equal(t, StatusOK, sectionByName(t, results, "diary").Status)

	var favorites, diary int64
	require.NoError(t, db.Model(&database.Favorite{}).Count(&favorites).Error)
	require.NoError(t, db.Model(&database.DiaryEntry{}).Count(&diary).Error)
	assert.Equal(t, int64(1), favorites)
	assert.Equal(t, int64(1), diary)
}

func TestImportReportsPartialSection(t *testing.T) {
	db, im, userID := setupImporterTest(t)

	payload := &SyncPayload{
		Favorites: []SyncMovie{
			{ID: 27205, Title: "Inception"},
			{ID: 0, Title: "Broken"}, // missing catalog ID
		},
	}

	results := im.Import(context.Background(), userID, payload)
	section := sectionByName(t, results, "favorites")
	assert.Equal(t, StatusPartial, section.Status)
	assert.Equal(t, 1, section.Imported)
	assert.Len(t, section.Errors, 1)
	assert.Equal(t, StatusPartial, OverallStatus(results))

	// The good item still landed
	var count int64
	require.NoError(t, db.Model(&database.Favorite{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestImportCountsOnlyCommittedRows(t *testing.T) {
	db, im, userID := setupImporterTest(t)

	// Force SQL-level failures for one section only
	require.NoError(t, db.Migrator().DropTable(&database.Favorite{}))

	payload := &SyncPayload{
		Favorites: []SyncMovie{
			{ID: 27205, Title: "Inception"},
			{ID: 603, Title: "The Matrix"},
		},
		Watchlist: []SyncMovie{{ID: 603, Title: "The Matrix"}},
	}

	results := im.Import(context.Background(), userID, payload)

	favorites := sectionByName(t, results, "favorites")
	assert.Equal(t, StatusFailed, favorites.Status)
	assert.Equal(t, 0, favorites.Imported)
	assert.Len(t, favorites.Errors, 2)

	// Failing favorites must not roll back or block the watchlist
	watchlist := sectionByName(t, results, "watchlist")
	assert.Equal(t, StatusOK, watchlist.Status)
	assert.Equal(t, 1, watchlist.Imported)

	var count int64
	require.NoError(t, db.Model(&database.WatchlistItem{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestImportBadListDoesNotSinkOthers(t *testing.T) {
	db, im, userID := setupImporterTest(t)

	payload := &SyncPayload{
		Lists: []SyncList{
			{Name: "", Movies: []SyncMovie{{ID: 1, Title: "A"}}}, // nameless
			{Name: "ok list", Movies: []SyncMovie{{ID: 2, Title: "B"}}},
		},
	}

	results := im.Import(context.Background(), userID, payload)
	section := sectionByName(t, results, "lists")
	assert.Equal(t, StatusPartial, section.Status)
	assert.Equal(t, 1, section.Imported)

	var lists int64
	require.NoError(t, db.Model(&database.CustomList{}).Count(&lists).Error)
	assert.Equal(t, int64(1), lists)
}

func TestImportEmptyPayloadSkipsEverything(t *testing.T) {
	_, im, userID := setupImporterTest(t)

	results := im.Import(context.Background(), userID, &SyncPayload{})
	for _, r := range results {
		assert.Equal(t, StatusSkipped, r.Status, r.Section)
	}
	assert.Equal(t, StatusOK, OverallStatus(results))
}

func strPtr(s string) *string { return &s }
