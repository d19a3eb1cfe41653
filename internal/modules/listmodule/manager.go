package listmodule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/modules/catalogmodule"
)

// ErrInvalidOrdering is returned when a reorder request is not a full
// permutation of the list's current movie set.
var ErrInvalidOrdering = errors.New("ordering must contain every list movie exactly once")

// Manager performs list reads and writes. Membership mutations run in
// transactions so positions stay contiguous from 0 under any outcome.
type Manager struct {
	db    *gorm.DB
	cache *catalogmodule.MovieCache
}

// NewManager creates a list manager
func NewManager(db *gorm.DB, cache *catalogmodule.MovieCache) *Manager {
	return &Manager{db: db, cache: cache}
}

// ListsForUser returns the user's lists, newest first
func (mg *Manager) ListsForUser(ctx context.Context, userID uint) ([]database.CustomList, error) {
	var lists []database.CustomList
	err := mg.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&lists).Error
	if err != nil {
		return nil, fmt.Errorf("lists: list for user: %w", err)
	}
	return lists, nil
}

// GetList loads a list by ID
func (mg *Manager) GetList(ctx context.Context, listID string) (*database.CustomList, error) {
	var list database.CustomList
	if err := mg.db.WithContext(ctx).First(&list, "id = ?", listID).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

// ListMovies returns the list's membership rows with movies, in position order
func (mg *Manager) ListMovies(ctx context.Context, listID string) ([]database.CustomListMovie, error) {
	var rows []database.CustomListMovie
	err := mg.db.WithContext(ctx).Preload("Movie").
		Where("list_id = ?", listID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("lists: list movies: %w", err)
	}
	return rows, nil
}

// CreateList inserts new list metadata with an empty movie set
func (mg *Manager) CreateList(ctx context.Context, userID uint, name, description string, public bool) (*database.CustomList, error) {
	list := database.CustomList{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: description,
		Public:      public,
	}
	if err := mg.db.WithContext(ctx).Create(&list).Error; err != nil {
		return nil, fmt.Errorf("lists: create: %w", err)
	}
	return &list, nil
}

// SaveMetadata persists metadata changes on an already-loaded list
func (mg *Manager) SaveMetadata(ctx context.Context, list *database.CustomList) error {
	if err := mg.db.WithContext(ctx).Save(list).Error; err != nil {
		return fmt.Errorf("lists: save metadata: %w", err)
	}
	return nil
}

// AddMovie caches the movie and appends it at the tail position
func (mg *Manager) AddMovie(ctx context.Context, listID string, movie database.Movie) error {
	return mg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mg.cache.WithDB(tx).EnsureMovieExists(ctx, movie, false); err != nil {
			return err
		}

		var next int64
		if err := tx.Model(&database.CustomListMovie{}).
			Where("list_id = ?", listID).
			Count(&next).Error; err != nil {
			return fmt.Errorf("lists: count members: %w", err)
		}

		row := database.CustomListMovie{ListID: listID, MovieID: movie.ID, Position: int(next)}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("lists: add movie: %w", err)
		}
		return nil
	})
}

// RemoveMovie deletes the membership row and compacts the remaining
// positions back to a contiguous 0..n-1 run.
func (mg *Manager) RemoveMovie(ctx context.Context, listID string, movieID uint) error {
	return mg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("list_id = ? AND movie_id = ?", listID, movieID).
			Delete(&database.CustomListMovie{}).Error
		if err != nil {
			return fmt.Errorf("lists: remove movie: %w", err)
		}
		return compactPositions(tx, listID)
	})
}

// Reorder reassigns positions from a caller-supplied full ordering. The
// ordering must contain exactly the list's current movie IDs.
func (mg *Manager) Reorder(ctx context.Context, listID string, movieIDs []uint) error {
	return mg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []database.CustomListMovie
		if err := tx.Where("list_id = ?", listID).Find(&current).Error; err != nil {
			return fmt.Errorf("lists: load members: %w", err)
		}

		if len(movieIDs) != len(current) {
			return ErrInvalidOrdering
		}
		members := make(map[uint]bool, len(current))
		for _, row := range current {
			members[row.MovieID] = true
		}
		seen := make(map[uint]bool, len(movieIDs))
		for _, id := range movieIDs {
			if !members[id] || seen[id] {
				return ErrInvalidOrdering
			}
			seen[id] = true
		}

		for position, id := range movieIDs {
			err := tx.Model(&database.CustomListMovie{}).
				Where("list_id = ? AND movie_id = ?", listID, id).
				Update("position", position).Error
			if err != nil {
				return fmt.Errorf("lists: reorder: %w", err)
			}
		}
		return nil
	})
}

// DeleteList removes the list and its membership rows
func (mg *Manager) DeleteList(ctx context.Context, listID string) error {
	return mg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", listID).Delete(&database.CustomListMovie{}).Error; err != nil {
			return fmt.Errorf("lists: delete members: %w", err)
		}
		if err := tx.Delete(&database.CustomList{}, "id = ?", listID).Error; err != nil {
			return fmt.Errorf("lists: delete: %w", err)
		}
		return nil
	})
}

func compactPositions(tx *gorm.DB, listID string) error {
	var remaining []database.CustomListMovie
	err := tx.Where("list_id = ?", listID).
		Order("position ASC").
		Find(&remaining).Error
	if err != nil {
		return fmt.Errorf("lists: load members: %w", err)
	}

	for index, row := range remaining {
		if row.Position == index {
			continue
		}
		err := tx.Model(&database.CustomListMovie{}).
			Where("id = ?", row.ID).
			Update("position", index).Error
		if err != nil {
			return fmt.Errorf("lists: compact positions: %w", err)
		}
	}
	return nil
}
