package collectionsmodule

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/events"
	"github.com/shaflix/shaflix/internal/logger"
	"github.com/shaflix/shaflix/internal/modules/authmodule"
	"github.com/shaflix/shaflix/internal/modules/statsmodule"
)

// movieRequest is the minimal movie payload accepted by add endpoints
type movieRequest struct {
	ID          uint    `json:"id" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
	Runtime     int     `json:"runtime"`
}

func (r *movieRequest) toMovie() database.Movie {
	return database.Movie{
		ID:          r.ID,
		Title:       r.Title,
		PosterPath:  r.PosterPath,
		ReleaseDate: r.ReleaseDate,
		Overview:    r.Overview,
		VoteAverage: r.VoteAverage,
		Runtime:     r.Runtime,
	}
}

func (m *Module) listFavorites(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	rows, err := m.store.ListFavorites(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve favorites",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": rows, "count": len(rows)})
}

func (m *Module) addFavorite(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	var req movieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := m.store.AddFavorite(c.Request.Context(), user.ID, req.toMovie()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to add favorite",
			"details": err.Error(),
		})
		return
	}

	m.afterMutation(user.ID, events.EventFavoriteAdded, req.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Movie added to favorites"})
}

func (m *Module) removeFavorite(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	movieID, ok := parseMovieID(c)
	if !ok {
		return
	}

	if err := m.store.RemoveFavorite(c.Request.Context(), user.ID, movieID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to remove favorite",
			"details": err.Error(),
		})
		return
	}

	m.afterMutation(user.ID, events.EventFavoriteRemoved, movieID)
	c.JSON(http.StatusOK, gin.H{"message": "Movie removed from favorites"})
}

func (m *Module) listWatchlist(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	rows, err := m.store.ListWatchlist(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve watchlist",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"watchlist": rows, "count": len(rows)})
}

func (m *Module) addWatchlistItem(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	var req movieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := m.store.AddWatchlistItem(c.Request.Context(), user.ID, req.toMovie()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to add to watchlist",
			"details": err.Error(),
		})
		return
	}

	m.afterMutation(user.ID, events.EventWatchlistAdded, req.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Movie added to watchlist"})
}

func (m *Module) removeWatchlistItem(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	movieID, ok := parseMovieID(c)
	if !ok {
		return
	}

	if err := m.store.RemoveWatchlistItem(c.Request.Context(), user.ID, movieID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to remove from watchlist",
			"details": err.Error(),
		})
		return
	}

	m.afterMutation(user.ID, events.EventWatchlistRemoved, movieID)
	c.JSON(http.StatusOK, gin.H{"message": "Movie removed from watchlist"})
}

func (m *Module) listWatched(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	rows, err := m.store.ListWatched(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve watched history",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"watched": rows, "count": len(rows)})
}

func (m *Module) addWatchedItem(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	var req movieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := m.store.AddWatchedItem(c.Request.Context(), user.ID, req.toMovie()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to mark as watched",
			"details": err.Error(),
		})
		return
	}

	m.afterMutation(user.ID, events.EventWatchedAdded, req.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Movie marked as watched"})
}

func (m *Module) removeWatchedItem(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	movieID, ok := parseMovieID(c)
	if !ok {
		return
	}

	if err := m.store.RemoveWatchedItem(c.Request.Context(), user.ID, movieID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to remove from watched history",
			"details": err.Error(),
		})
		return
	}

	m.afterMutation(user.ID, events.EventWatchedRemoved, movieID)
	c.JSON(http.StatusOK, gin.H{"message": "Movie removed from watched history"})
}

// afterMutation recomputes stats and publishes the collection event
func (m *Module) afterMutation(userID uint, eventType events.EventType, movieID uint) {
	if _, err := statsmodule.UpdateUserStats(m.db, userID); err != nil {
		logger.Error("Failed to update stats for user %d: %v", userID, err)
	}

	if bus := events.GetGlobalEventBus(); bus != nil {
		event := events.NewUserEvent(eventType, userID, "Collection Changed", "")
		event.Data["movie_id"] = movieID
		bus.PublishAsync(event)
	}
}

func parseMovieID(c *gin.Context) (uint, bool) {
	movieID, err := strconv.ParseUint(c.Param("movieID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid movie ID"})
		return 0, false
	}
	return uint(movieID), true
}
