package listmodule

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/events"
	"github.com/shaflix/shaflix/internal/logger"
	"github.com/shaflix/shaflix/internal/modules/authmodule"
	"github.com/shaflix/shaflix/internal/modules/statsmodule"
)

// listCreateRequest creates a new empty list
type listCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

// movieRequest is the minimal movie payload accepted by add_movie
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

// listUpdateRequest patches metadata and applies at most one membership
// operation. Pointer fields distinguish "not provided" from zero values.
type listUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Public      *bool   `json:"public"`

	AddMovie    *movieRequest `json:"add_movie"`
	RemoveMovie *uint         `json:"remove_movie"`
	Reorder     *[]uint       `json:"reorder"`
}

func (r *listUpdateRequest) membershipOps() int {
	ops := 0
	if r.AddMovie != nil {
		ops++
	}
	if r.RemoveMovie != nil {
		ops++
	}
	if r.Reorder != nil {
		ops++
	}
	return ops
}

func (m *Module) listLists(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	lists, err := m.manager.ListsForUser(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve lists",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"lists": lists, "count": len(lists)})
}

func (m *Module) getList(c *gin.Context) {
	list, ok := m.loadList(c)
	if !ok {
		return
	}

	// Private lists are visible to their owner only; a 404 hides existence
	if !list.Public {
		user, authed := authmodule.CurrentUser(c)
		if !authed || user.ID != list.UserID {
			c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
			return
		}
	}

	movies, err := m.manager.ListMovies(c.Request.Context(), list.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve list movies",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"list": list, "movies": movies, "count": len(movies)})
}

func (m *Module) createList(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	var req listCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	list, err := m.manager.CreateList(c.Request.Context(), user.ID, req.Name, req.Description, req.Public)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create list",
			"details": err.Error(),
		})
		return
	}

	m.afterMutation(user.ID, events.EventListCreated, list.ID)
	c.JSON(http.StatusCreated, gin.H{"list": list})
}

func (m *Module) updateList(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	list, ok := m.loadOwnedList(c, user.ID)
	if !ok {
		return
	}

	var req listUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if req.membershipOps() > 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "At most one of add_movie, remove_movie, reorder per request",
		})
		return
	}

	if req.Name != nil {
		list.Name = *req.Name
	}
	if req.Description != nil {
		list.Description = *req.Description
	}
	if req.Public != nil {
		list.Public = *req.Public
	}
	if req.Name != nil || req.Description != nil || req.Public != nil {
		if err := m.manager.SaveMetadata(c.Request.Context(), list); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to update list",
				"details": err.Error(),
			})
			return
		}
	}

	eventType := events.EventListUpdated
	switch {
	case req.AddMovie != nil:
		if err := m.manager.AddMovie(c.Request.Context(), list.ID, req.AddMovie.toMovie()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to add movie to list",
				"details": err.Error(),
			})
			return
		}
		eventType = events.EventListMovieAdded
	case req.RemoveMovie != nil:
		if err := m.manager.RemoveMovie(c.Request.Context(), list.ID, *req.RemoveMovie); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to remove movie from list",
				"details": err.Error(),
			})
			return
		}
		eventType = events.EventListMovieRemoved
	case req.Reorder != nil:
		if err := m.manager.Reorder(c.Request.Context(), list.ID, *req.Reorder); err != nil {
			if errors.Is(err, ErrInvalidOrdering) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to reorder list",
				"details": err.Error(),
			})
			return
		}
		eventType = events.EventListReordered
	}

	m.afterMutation(user.ID, eventType, list.ID)
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (m *Module) deleteList(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	list, ok := m.loadOwnedList(c, user.ID)
	if !ok {
		return
	}

	if err := m.manager.DeleteList(c.Request.Context(), list.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete list",
			"details": err.Error(),
		})
		return
	}

	m.afterMutation(user.ID, events.EventListDeleted, list.ID)
	c.JSON(http.StatusOK, gin.H{"message": "List deleted"})
}

// loadList resolves the :id parameter to a list row
func (m *Module) loadList(c *gin.Context) (*database.CustomList, bool) {
	list, err := m.manager.GetList(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load list",
			"details": err.Error(),
		})
		return nil, false
	}
	return list, true
}

// loadOwnedList resolves :id and enforces ownership. Non-owners get a 404
// so private list IDs stay unguessable.
func (m *Module) loadOwnedList(c *gin.Context, userID uint) (*database.CustomList, bool) {
	list, ok := m.loadList(c)
	if !ok {
		return nil, false
	}
	if list.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return nil, false
	}
	return list, true
}

// afterMutation recomputes stats and publishes the list event
func (m *Module) afterMutation(userID uint, eventType events.EventType, listID string) {
	if _, err := statsmodule.UpdateUserStats(m.db, userID); err != nil {
		logger.Error("Failed to update stats for user %d: %v", userID, err)
	}

	if bus := events.GetGlobalEventBus(); bus != nil {
		event := events.NewUserEvent(eventType, userID, "List Changed", "")
		event.Data["list_id"] = listID
		bus.PublishAsync(event)
	}
}
