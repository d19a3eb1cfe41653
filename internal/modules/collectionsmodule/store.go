// Package collectionsmodule holds the three parallel per-user movie sets:
// favorites, watchlist, and watched history.
package collectionsmodule

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/modules/catalogmodule"
)

// Store performs collection reads and toggle-style writes. Adds run as a
// transaction pairing the cache-ensure with the membership insert; the
// unique (user, movie) index plus conflict-ignoring inserts make concurrent
// duplicate adds collapse to one row.
type Store struct {
	db    *gorm.DB
	cache *catalogmodule.MovieCache
}

// NewStore creates a collection store
func NewStore(db *gorm.DB, cache *catalogmodule.MovieCache) *Store {
	return &Store{db: db, cache: cache}
}

// ListFavorites returns the user's favorites with movies, newest first
func (s *Store) ListFavorites(ctx context.Context, userID uint) ([]database.Favorite, error) {
	var rows []database.Favorite
	err := s.db.WithContext(ctx).Preload("Movie").
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("collections: list favorites: %w", err)
	}
	return rows, nil
}

// AddFavorite caches the movie and inserts the (user, movie) pair
func (s *Store) AddFavorite(ctx context.Context, userID uint, movie database.Movie) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.cache.WithDB(tx).EnsureMovieExists(ctx, movie, false); err != nil {
			return err
		}
		row := database.Favorite{UserID: userID, MovieID: movie.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("collections: add favorite: %w", err)
		}
		return nil
	})
}

// RemoveFavorite deletes the (user, movie) pair
func (s *Store) RemoveFavorite(ctx context.Context, userID, movieID uint) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&database.Favorite{}).Error
	if err != nil {
		return fmt.Errorf("collections: remove favorite: %w", err)
	}
	return nil
}

// ListWatchlist returns the user's watchlist with movies, newest first
func (s *Store) ListWatchlist(ctx context.Context, userID uint) ([]database.WatchlistItem, error) {
	var rows []database.WatchlistItem
	err := s.db.WithContext(ctx).Preload("Movie").
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("collections: list watchlist: %w", err)
	}
	return rows, nil
}

// AddWatchlistItem caches the movie and inserts the (user, movie) pair
func (s *Store) AddWatchlistItem(ctx context.Context, userID uint, movie database.Movie) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.cache.WithDB(tx).EnsureMovieExists(ctx, movie, false); err != nil {
			return err
		}
		row := database.WatchlistItem{UserID: userID, MovieID: movie.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("collections: add watchlist item: %w", err)
		}
		return nil
	})
}

// RemoveWatchlistItem deletes the (user, movie) pair
func (s *Store) RemoveWatchlistItem(ctx context.Context, userID, movieID uint) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&database.WatchlistItem{}).Error
	if err != nil {
		return fmt.Errorf("collections: remove watchlist item: %w", err)
	}
	return nil
}

// ListWatched returns the user's watched history with movies, newest first
func (s *Store) ListWatched(ctx context.Context, userID uint) ([]database.WatchedItem, error) {
	var rows []database.WatchedItem
	err := s.db.WithContext(ctx).Preload("Movie").
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("collections: list watched: %w", err)
	}
	return rows, nil
}

// AddWatchedItem caches the movie and inserts the (user, movie) pair
func (s *Store) AddWatchedItem(ctx context.Context, userID uint, movie database.Movie) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.cache.WithDB(tx).EnsureMovieExists(ctx, movie, false); err != nil {
			return err
		}
		row := database.WatchedItem{UserID: userID, MovieID: movie.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("collections: add watched item: %w", err)
		}
		return nil
	})
}

// RemoveWatchedItem deletes the (user, movie) pair
func (s *Store) RemoveWatchedItem(ctx context.Context, userID, movieID uint) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&database.WatchedItem{}).Error
	if err != nil {
		return fmt.Errorf("collections: remove watched item: %w", err)
	}
	return nil
}
