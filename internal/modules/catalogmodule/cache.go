package catalogmodule

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/events"
	"github.com/shaflix/shaflix/internal/logger"
)

// MovieCache upserts catalog movie records into the local store so rows that
// reference a movie always have a cache row to point at. Extended data
// (director, cast, genres) is backfilled lazily and best-effort: a failed
// catalog lookup leaves the row with empty extended fields.
type MovieCache struct {
	db          *gorm.DB
	client      *Client
	concurrency int
}

// NewMovieCache creates a movie cache. client may be nil when no catalog API
// key is configured; extended backfill is then skipped.
func NewMovieCache(db *gorm.DB, client *Client, concurrency int) *MovieCache {
	if concurrency < 1 {
		concurrency = 1
	}
	return &MovieCache{
		db:          db,
		client:      client,
		concurrency: concurrency,
	}
}

// WithDB returns a view of the cache bound to the given handle, so callers
// can run cache-ensure inside their own transaction.
func (mc *MovieCache) WithDB(db *gorm.DB) *MovieCache {
	return &MovieCache{
		db:          db,
		client:      mc.client,
		concurrency: mc.concurrency,
	}
}

// EnsureMovieExists inserts the movie if its ID is absent from the cache.
// When fetchExtended is set and the row is missing extended data, the
// catalog is asked for credits and genres and the row updated in place.
func (mc *MovieCache) EnsureMovieExists(ctx context.Context, movie database.Movie, fetchExtended bool) error {
	if movie.ID == 0 {
		return fmt.Errorf("movie cache: movie ID is required")
	}

	var existing database.Movie
	err := mc.db.WithContext(ctx).First(&existing, movie.ID).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		if fetchExtended {
			mc.backfill(ctx, &movie)
		}
		if err := mc.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&movie).Error; err != nil {
			return fmt.Errorf("movie cache: insert %d: %w", movie.ID, err)
		}
		publishMovieEvent(events.EventMovieCached, movie.ID)
		return nil
	case err != nil:
		return fmt.Errorf("movie cache: lookup %d: %w", movie.ID, err)
	}

	if fetchExtended && !existing.HasExtendedData() {
		mc.backfill(ctx, &existing)
		if existing.HasExtendedData() {
			if err := mc.db.WithContext(ctx).Save(&existing).Error; err != nil {
				return fmt.Errorf("movie cache: update %d: %w", existing.ID, err)
			}
			publishMovieEvent(events.EventMovieEnriched, existing.ID)
		}
	}

	return nil
}

// publishMovieEvent records a cache mutation on the global bus, if one is up
func publishMovieEvent(eventType events.EventType, movieID uint) {
	bus := events.GetGlobalEventBus()
	if bus == nil {
		return
	}
	event := events.NewEventWithData(eventType, "catalog", "Movie Cache Updated", "",
		map[string]interface{}{"movie_id": movieID})
	if err := bus.PublishAsync(event); err != nil {
		logger.Debug("Movie cache: event publish failed for %d: %v", movieID, err)
	}
}

// EnsureMoviesExist is the batched form of EnsureMovieExists: missing movies
// are bulk-inserted, present-but-incomplete ones updated. Extended lookups
// run with bounded fan-out; a failure for one movie never aborts the batch.
func (mc *MovieCache) EnsureMoviesExist(ctx context.Context, movies []database.Movie, fetchExtended bool) error {
	if len(movies) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(movies))
	for _, m := range movies {
		if m.ID == 0 {
			return fmt.Errorf("movie cache: movie ID is required")
		}
		ids = append(ids, m.ID)
	}

	var existing []database.Movie
	if err := mc.db.WithContext(ctx).Where("id IN ?", ids).Find(&existing).Error; err != nil {
		return fmt.Errorf("movie cache: batch lookup: %w", err)
	}

	existingByID := make(map[uint]database.Movie, len(existing))
	for _, m := range existing {
		existingByID[m.ID] = m
	}

	// Partition into missing and present-but-incomplete
	var missing []database.Movie
	var incomplete []database.Movie
	seen := make(map[uint]bool, len(movies))
	for _, m := range movies {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true

		if cached, ok := existingByID[m.ID]; ok {
			if fetchExtended && !cached.HasExtendedData() {
				incomplete = append(incomplete, cached)
			}
			continue
		}
		missing = append(missing, m)
	}

	if fetchExtended {
		mc.backfillBatch(ctx, missing)
	}

	if len(missing) > 0 {
		if err := mc.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(missing, 100).Error; err != nil {
			return fmt.Errorf("movie cache: bulk insert: %w", err)
		}
		for _, m := range missing {
			publishMovieEvent(events.EventMovieCached, m.ID)
		}
	}

	if len(incomplete) > 0 {
		mc.backfillBatch(ctx, incomplete)
		for i := range incomplete {
			if !incomplete[i].HasExtendedData() {
				continue
			}
			if err := mc.db.WithContext(ctx).Save(&incomplete[i]).Error; err != nil {
				logger.Error("Movie cache: failed to update extended data for %d: %v", incomplete[i].ID, err)
				continue
			}
			publishMovieEvent(events.EventMovieEnriched, incomplete[i].ID)
		}
	}

	return nil
}

// GetMovie loads a cached movie, backfilling extended data on first need.
func (mc *MovieCache) GetMovie(ctx context.Context, movieID uint) (*database.Movie, error) {
	var movie database.Movie
	err := mc.db.WithContext(ctx).First(&movie, movieID).Error
	if err == gorm.ErrRecordNotFound {
		if mc.client == nil {
			return nil, fmt.Errorf("movie cache: movie %d not cached and no catalog client", movieID)
		}
		detail, err := mc.client.GetMovieDetails(ctx, movieID)
		if err != nil {
			return nil, fmt.Errorf("movie cache: catalog lookup %d: %w", movieID, err)
		}
		movie = MovieFromCatalog(detail)
		if err := mc.EnsureMovieExists(ctx, movie, true); err != nil {
			return nil, err
		}
		if err := mc.db.WithContext(ctx).First(&movie, movieID).Error; err != nil {
			return nil, fmt.Errorf("movie cache: reload %d: %w", movieID, err)
		}
		return &movie, nil
	}
	if err != nil {
		return nil, fmt.Errorf("movie cache: lookup %d: %w", movieID, err)
	}

	if !movie.HasExtendedData() {
		mc.backfill(ctx, &movie)
		if movie.HasExtendedData() {
			if err := mc.db.WithContext(ctx).Save(&movie).Error; err != nil {
				logger.Error("Movie cache: failed to persist extended data for %d: %v", movie.ID, err)
			} else {
				publishMovieEvent(events.EventMovieEnriched, movie.ID)
			}
		}
	}

	return &movie, nil
}

// backfill fetches extended data for a single movie in place. Failures are
// logged and the movie left as-is.
func (mc *MovieCache) backfill(ctx context.Context, movie *database.Movie) {
	if mc.client == nil {
		return
	}

	credits, err := mc.client.GetMovieCredits(ctx, movie.ID)
	if err != nil {
		logger.Warn("Movie cache: credits lookup failed for %d: %v", movie.ID, err)
		return
	}

	movie.Director = &credits.Director
	movie.SetCast(credits.Cast)

	// Genres and runtime ride along on the detail response
	if len(movie.Genres()) == 0 || movie.Runtime == 0 {
		detail, err := mc.client.GetMovieDetails(ctx, movie.ID)
		if err != nil {
			logger.Warn("Movie cache: detail lookup failed for %d: %v", movie.ID, err)
			return
		}
		movie.SetGenres(detail.GenreNames())
		if movie.Runtime == 0 {
			movie.Runtime = detail.Runtime
		}
	}
}

// backfillBatch runs backfill across movies with bounded fan-out.
func (mc *MovieCache) backfillBatch(ctx context.Context, movies []database.Movie) {
	if mc.client == nil || len(movies) == 0 {
		return
	}

	sem := make(chan struct{}, mc.concurrency)
	var wg sync.WaitGroup

	for i := range movies {
		wg.Add(1)
		sem <- struct{}{}
		go func(movie *database.Movie) {
			defer wg.Done()
			defer func() { <-sem }()
			mc.backfill(ctx, movie)
		}(&movies[i])
	}

	wg.Wait()
}

// MovieFromCatalog converts a catalog result into a cache row, without
// extended fields.
func MovieFromCatalog(m *CatalogMovie) database.Movie {
	movie := database.Movie{
		ID:          m.ID,
		Title:       m.Title,
		PosterPath:  m.PosterPath,
		ReleaseDate: m.ReleaseDate,
		Overview:    m.Overview,
		VoteAverage: m.VoteAverage,
		Runtime:     m.Runtime,
	}
	if len(m.Genres) > 0 {
		movie.SetGenres(m.GenreNames())
	}
	return movie
}
