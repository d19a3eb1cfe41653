package syncmodule

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/logger"
	"github.com/shaflix/shaflix/internal/modules/catalogmodule"
	"github.com/shaflix/shaflix/internal/modules/collectionsmodule"
)

// Section status values reported per snapshot section.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// SyncMovie is a movie reference carried inside a snapshot
type SyncMovie struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
	Runtime     int     `json:"runtime"`
}

func (s *SyncMovie) toMovie() database.Movie {
	return database.Movie{
		ID:          s.ID,
		Title:       s.Title,
		PosterPath:  s.PosterPath,
		ReleaseDate: s.ReleaseDate,
		Overview:    s.Overview,
		VoteAverage: s.VoteAverage,
		Runtime:     s.Runtime,
	}
}

// SyncProfile carries optional profile fields from the snapshot
type SyncProfile struct {
	DisplayName *string `json:"display_name"`
	Handle      *string `json:"handle"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
}

// SyncDiaryEntry is a diary row carried inside a snapshot
type SyncDiaryEntry struct {
	Movie       SyncMovie `json:"movie"`
	WatchedDate string    `json:"watched_date"`
	Rating      float64   `json:"rating"`
	Review      string    `json:"review"`
	Tags        []string  `json:"tags"`
	Rewatch     bool      `json:"rewatch"`
}

// SyncList is a custom list with its ordered movies
type SyncList struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Public      bool        `json:"public"`
	Movies      []SyncMovie `json:"movies"`
}

// SyncPayload is the full snapshot accepted by the sync endpoint
type SyncPayload struct {
	Profile   *SyncProfile     `json:"profile"`
	Movies    []SyncMovie      `json:"movies"`
	Favorites []SyncMovie      `json:"favorites"`
	Watchlist []SyncMovie      `json:"watchlist"`
	Watched   []SyncMovie      `json:"watched"`
	Diary     []SyncDiaryEntry `json:"diary"`
	Lists     []SyncList       `json:"lists"`
}

// SectionResult reports the outcome of replaying one snapshot section
type SectionResult struct {
	Section  string   `json:"section"`
	Status   string   `json:"status"`
	Imported int      `json:"imported"`
	Errors   []string `json:"errors,omitempty"`
}

// Importer replays snapshot sections against the store. Collection and
// diary items each commit in their own transaction and lists in one
// transaction per list, so a failing item is recorded and skipped without
// rolling back rows already counted as imported. A joint transaction per
// section would not give that: one bad statement aborts a postgres
// transaction, taking every earlier row in the section down with it.
type Importer struct {
	db    *gorm.DB
	cache *catalogmodule.MovieCache
	store *collectionsmodule.Store
}

// NewImporter creates a snapshot importer
func NewImporter(db *gorm.DB, cache *catalogmodule.MovieCache, store *collectionsmodule.Store) *Importer {
	return &Importer{db: db, cache: cache, store: store}
}

// Import replays the snapshot for the user and reports per-section results
func (im *Importer) Import(ctx context.Context, userID uint, payload *SyncPayload) []SectionResult {
	results := []SectionResult{
		im.importMovies(ctx, payload.Movies),
		im.importProfile(ctx, userID, payload.Profile),
		im.importPairs(ctx, "favorites", payload.Favorites, func(m SyncMovie) error {
			return im.store.AddFavorite(ctx, userID, m.toMovie())
		}),
		im.importPairs(ctx, "watchlist", payload.Watchlist, func(m SyncMovie) error {
			return im.store.AddWatchlistItem(ctx, userID, m.toMovie())
		}),
		im.importPairs(ctx, "watched", payload.Watched, func(m SyncMovie) error {
			return im.store.AddWatchedItem(ctx, userID, m.toMovie())
		}),
		im.importDiary(ctx, userID, payload.Diary),
		im.importLists(ctx, userID, payload.Lists),
	}
	return results
}

// OverallStatus folds per-section results into a single status
func OverallStatus(results []SectionResult) string {
	sawOK, sawBad := false, false
	for _, r := range results {
		switch r.Status {
		case StatusOK:
			sawOK = true
		case StatusPartial:
			sawOK, sawBad = true, true
		case StatusFailed:
			sawBad = true
		}
	}
	switch {
	case sawBad && sawOK:
		return StatusPartial
	case sawBad:
		return StatusFailed
	default:
		return StatusOK
	}
}

// importMovies pre-seeds the cache from the snapshot's movie section
func (im *Importer) importMovies(ctx context.Context, movies []SyncMovie) SectionResult {
	result := SectionResult{Section: "movies", Status: StatusSkipped}
	if len(movies) == 0 {
		return result
	}

	rows := make([]database.Movie, 0, len(movies))
	for _, m := range movies {
		if m.ID == 0 || m.Title == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("movie %d: missing id or title", m.ID))
			continue
		}
		rows = append(rows, m.toMovie())
	}

	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return im.cache.WithDB(tx).EnsureMoviesExist(ctx, rows, false)
	})
	if err != nil {
		result.Status = StatusFailed
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Imported = len(rows)
	result.Status = statusFor(result.Imported, len(result.Errors))
	return result
}

func (im *Importer) importProfile(ctx context.Context, userID uint, profile *SyncProfile) SectionResult {
	result := SectionResult{Section: "profile", Status: StatusSkipped}
	if profile == nil {
		return result
	}

	updates := map[string]interface{}{}
	if profile.DisplayName != nil {
		updates["display_name"] = *profile.DisplayName
	}
	if profile.Handle != nil {
		updates["handle"] = *profile.Handle
	}
	if profile.Bio != nil {
		updates["bio"] = *profile.Bio
	}
	if profile.AvatarURL != nil {
		updates["avatar_url"] = *profile.AvatarURL
	}
	if len(updates) == 0 {
		return result
	}

	err := im.db.WithContext(ctx).Model(&database.User{}).
		Where("id = ?", userID).
		Updates(updates).Error
	if err != nil {
		result.Status = StatusFailed
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Imported = 1
	result.Status = StatusOK
	return result
}

// importPairs replays one of the three (user, movie) collections through
// the collection store, whose adds are already one transaction per pair.
// Already present pairs count as imported since the end state matches the
// snapshot.
func (im *Importer) importPairs(ctx context.Context, section string, movies []SyncMovie, add func(m SyncMovie) error) SectionResult {
	result := SectionResult{Section: section, Status: StatusSkipped}
	if len(movies) == 0 {
		return result
	}

	for _, m := range movies {
		if m.ID == 0 || m.Title == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: movie %d: missing id or title", section, m.ID))
			continue
		}
		if err := add(m); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: movie %d: %v", section, m.ID, err))
			continue
		}
		result.Imported++
	}

	result.Status = statusFor(result.Imported, len(result.Errors))
	return result
}

// importDiary replays diary entries, one transaction per entry. Existing
// (user, movie, date) triples are left untouched rather than rejected,
// keeping the import idempotent.
func (im *Importer) importDiary(ctx context.Context, userID uint, entries []SyncDiaryEntry) SectionResult {
	result := SectionResult{Section: "diary", Status: StatusSkipped}
	if len(entries) == 0 {
		return result
	}

	for _, e := range entries {
		if e.Movie.ID == 0 || e.Movie.Title == "" || e.WatchedDate == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("diary: movie %d: missing id, title, or date", e.Movie.ID))
			continue
		}
		if err := im.importDiaryEntry(ctx, userID, e); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("diary: movie %d on %s: %v", e.Movie.ID, e.WatchedDate, err))
			continue
		}
		result.Imported++
	}

	result.Status = statusFor(result.Imported, len(result.Errors))
	return result
}

func (im *Importer) importDiaryEntry(ctx context.Context, userID uint, e SyncDiaryEntry) error {
	return im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := im.cache.WithDB(tx).EnsureMovieExists(ctx, e.Movie.toMovie(), false); err != nil {
			return err
		}
		entry := database.DiaryEntry{
			UserID:      userID,
			MovieID:     e.Movie.ID,
			WatchedDate: e.WatchedDate,
			Rating:      e.Rating,
			Review:      e.Review,
			Rewatch:     e.Rewatch,
		}
		entry.SetTags(e.Tags)
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
	})
}

// importLists creates each snapshot list with its ordered movies. Each list
// is its own transaction so a bad list cannot sink the others.
func (im *Importer) importLists(ctx context.Context, userID uint, lists []SyncList) SectionResult {
	result := SectionResult{Section: "lists", Status: StatusSkipped}
	if len(lists) == 0 {
		return result
	}

	for _, l := range lists {
		if l.Name == "" {
			result.Errors = append(result.Errors, "lists: missing name")
			continue
		}
		if err := im.importList(ctx, userID, l); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("lists: %s: %v", l.Name, err))
			continue
		}
		result.Imported++
	}

	result.Status = statusFor(result.Imported, len(result.Errors))
	return result
}

func (im *Importer) importList(ctx context.Context, userID uint, l SyncList) error {
	return im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list := database.CustomList{
			ID:          uuid.NewString(),
			UserID:      userID,
			Name:        l.Name,
			Description: l.Description,
			Public:      l.Public,
		}
		if err := tx.Create(&list).Error; err != nil {
			return err
		}

		cache := im.cache.WithDB(tx)
		for position, m := range l.Movies {
			if m.ID == 0 || m.Title == "" {
				return fmt.Errorf("movie at position %d: missing id or title", position)
			}
			if err := cache.EnsureMovieExists(ctx, m.toMovie(), false); err != nil {
				return err
			}
			row := database.CustomListMovie{ListID: list.ID, MovieID: m.ID, Position: position}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func statusFor(imported, failed int) string {
	switch {
	case failed == 0:
		return StatusOK
	case imported == 0:
		return StatusFailed
	default:
		logger.Debug("Sync section finished partial: %d imported, %d failed", imported, failed)
		return StatusPartial
	}
}
