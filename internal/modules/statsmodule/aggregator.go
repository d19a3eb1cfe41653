// Package statsmodule maintains the denormalized per-user counters shown on
// profile pages. Stats are always a full recompute from the source tables;
// there is no incremental path.
package statsmodule

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shaflix/shaflix/internal/database"
)

// InitializeUserStats seeds a zeroed stats row if absent. Idempotent.
func InitializeUserStats(db *gorm.DB, userID uint) error {
	stats := database.UserStats{UserID: userID, UpdatedAt: time.Now()}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&stats).Error; err != nil {
		return fmt.Errorf("stats: initialize user %d: %w", userID, err)
	}
	return nil
}

// UpdateUserStats recomputes all counters for a user from the live tables
// and upserts the result row.
//
// Each aggregate runs against its own table. A single joined query across
// favorites/watched/diary/lists multiplies rows whenever a user has more
// than one row in any sibling table and double-counts everything else.
func UpdateUserStats(db *gorm.DB, userID uint) (*database.UserStats, error) {
	stats := database.UserStats{UserID: userID, UpdatedAt: time.Now()}

	var count int64
	if err := db.Model(&database.Favorite{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("stats: count favorites: %w", err)
	}
	stats.FavoriteCount = int(count)

	if err := db.Model(&database.WatchlistItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("stats: count watchlist: %w", err)
	}
	stats.WatchlistCount = int(count)

	if err := db.Model(&database.WatchedItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("stats: count watched: %w", err)
	}
	stats.WatchedCount = int(count)

	if err := db.Model(&database.DiaryEntry{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("stats: count diary: %w", err)
	}
	stats.DiaryCount = int(count)

	if err := db.Model(&database.CustomList{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("stats: count lists: %w", err)
	}
	stats.ListCount = int(count)

	var totalRuntime *int
	err := db.Model(&database.WatchedItem{}).
		Select("SUM(movies.runtime)").
		Joins("JOIN movies ON movies.id = watched_items.movie_id").
		Where("watched_items.user_id = ?", userID).
		Scan(&totalRuntime).Error
	if err != nil {
		return nil, fmt.Errorf("stats: sum runtime: %w", err)
	}
	if totalRuntime != nil {
		stats.TotalRuntime = *totalRuntime
	}

	var avgRating *float64
	err = db.Model(&database.DiaryEntry{}).
		Select("AVG(rating)").
		Where("user_id = ? AND rating > 0", userID).
		Scan(&avgRating).Error
	if err != nil {
		return nil, fmt.Errorf("stats: average rating: %w", err)
	}
	if avgRating != nil {
		stats.AverageRating = *avgRating
	}

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("stats: upsert user %d: %w", userID, err)
	}

	return &stats, nil
}
