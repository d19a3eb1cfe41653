package catalogmodule

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shaflix/shaflix/internal/logger"
)

// searchMovies handles free-text catalog search
func (m *Module) searchMovies(c *gin.Context) {
	if m.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Catalog API is not configured",
		})
		return
	}

	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required parameter: query",
		})
		return
	}

	page := parsePage(c.Query("page"))

	result, err := m.client.SearchMovies(c.Request.Context(), query, page)
	if err != nil {
		logger.Error("Catalog search failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Catalog search failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// discoverMovies handles mood-based discovery
func (m *Module) discoverMovies(c *gin.Context) {
	if m.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Catalog API is not configured",
		})
		return
	}

	mood := c.Query("mood")
	if mood == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required parameter: mood",
		})
		return
	}

	genres, ok := GenresForMood(mood)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       "Unknown mood: " + mood,
			"known_moods": KnownMoods(),
		})
		return
	}

	page := parsePage(c.Query("page"))

	result, err := m.client.DiscoverByGenres(c.Request.Context(), genres, page)
	if err != nil {
		logger.Error("Catalog discovery failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Catalog discovery failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// listMoods returns the supported moods
func (m *Module) listMoods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"moods": KnownMoods(),
		"count": len(KnownMoods()),
	})
}

// getMovie returns a cached movie with extended data, fetching from the
// catalog on first reference
func (m *Module) getMovie(c *gin.Context) {
	movieID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid movie ID",
		})
		return
	}

	movie, err := m.cache.GetMovie(c.Request.Context(), uint(movieID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Movie not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"movie":  movie,
		"cast":   movie.Cast(),
		"genres": movie.Genres(),
	})
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
