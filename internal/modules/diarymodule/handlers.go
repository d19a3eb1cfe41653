package diarymodule

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/events"
	"github.com/shaflix/shaflix/internal/logger"
	"github.com/shaflix/shaflix/internal/modules/authmodule"
	"github.com/shaflix/shaflix/internal/modules/statsmodule"
)

const watchedDateLayout = "2006-01-02"

// diaryCreateRequest logs a dated viewing of a movie
type diaryCreateRequest struct {
	Movie       movieRequest `json:"movie" binding:"required"`
	WatchedDate string       `json:"watched_date" binding:"required"`
	Rating      float64      `json:"rating"`
	Review      string       `json:"review"`
	Tags        []string     `json:"tags"`
	Rewatch     bool         `json:"rewatch"`
}

// movieRequest is the minimal movie payload accepted on entry creation
type movieRequest struct {
	ID          uint    `json:"id" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
	Runtime     int     `json:"runtime"`
}

// diaryUpdateRequest patches an existing entry. Pointer fields distinguish
// "not provided" from zero values.
type diaryUpdateRequest struct {
	Rating  *float64  `json:"rating"`
	Review  *string   `json:"review"`
	Tags    *[]string `json:"tags"`
	Rewatch *bool     `json:"rewatch"`
}

// diaryEntryView wraps an entry with its decoded tags for responses
type diaryEntryView struct {
	database.DiaryEntry
	Tags []string `json:"tags"`
}

func viewOf(entry database.DiaryEntry) diaryEntryView {
	return diaryEntryView{DiaryEntry: entry, Tags: entry.Tags()}
}

func (m *Module) listEntries(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	var entries []database.DiaryEntry
	err := m.db.Preload("Movie").
		Where("user_id = ?", user.ID).
		Order("watched_date DESC, created_at DESC").
		Find(&entries).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve diary entries",
			"details": err.Error(),
		})
		return
	}

	views := make([]diaryEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, viewOf(entry))
	}

	c.JSON(http.StatusOK, gin.H{"entries": views, "count": len(views)})
}

func (m *Module) createEntry(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	var req diaryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if _, err := time.Parse(watchedDateLayout, req.WatchedDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "watched_date must use YYYY-MM-DD"})
		return
	}

	if req.Rating < 0 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 0 and 5"})
		return
	}

	entry := database.DiaryEntry{
		UserID:      user.ID,
		MovieID:     req.Movie.ID,
		WatchedDate: req.WatchedDate,
		Rating:      req.Rating,
		Review:      req.Review,
		Rewatch:     req.Rewatch,
	}
	entry.SetTags(req.Tags)

	movie := database.Movie{
		ID:          req.Movie.ID,
		Title:       req.Movie.Title,
		PosterPath:  req.Movie.PosterPath,
		ReleaseDate: req.Movie.ReleaseDate,
		Overview:    req.Movie.Overview,
		VoteAverage: req.Movie.VoteAverage,
		Runtime:     req.Movie.Runtime,
	}

	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := m.cache.WithDB(tx).EnsureMovieExists(c.Request.Context(), movie, true); err != nil {
			return err
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Diary entry already exists for this movie and date"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create diary entry",
			"details": err.Error(),
		})
		return
	}

	m.afterMutation(user.ID, events.EventDiaryEntryCreated, entry.ID)
	c.JSON(http.StatusCreated, gin.H{"entry": viewOf(entry)})
}

func (m *Module) updateEntry(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	entryID, ok := parseEntryID(c)
	if !ok {
		return
	}

	var req diaryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if req.Rating != nil && (*req.Rating < 0 || *req.Rating > 5) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 0 and 5"})
		return
	}

	var entry database.DiaryEntry
	err := m.db.Where("id = ? AND user_id = ?", entryID, user.ID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Diary entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load diary entry",
			"details": err.Error(),
		})
		return
	}

	if req.Rating != nil {
		entry.Rating = *req.Rating
	}
	if req.Review != nil {
		entry.Review = *req.Review
	}
	if req.Tags != nil {
		entry.SetTags(*req.Tags)
	}
	if req.Rewatch != nil {
		entry.Rewatch = *req.Rewatch
	}

	if err := m.db.Save(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update diary entry",
			"details": err.Error(),
		})
		return
	}

	m.afterMutation(user.ID, events.EventDiaryEntryUpdated, entry.ID)
	c.JSON(http.StatusOK, gin.H{"entry": viewOf(entry)})
}

func (m *Module) deleteEntry(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	entryID, ok := parseEntryID(c)
	if !ok {
		return
	}

	result := m.db.Where("id = ? AND user_id = ?", entryID, user.ID).Delete(&database.DiaryEntry{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete diary entry",
			"details": result.Error.Error(),
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Diary entry not found"})
		return
	}

	m.afterMutation(user.ID, events.EventDiaryEntryDeleted, entryID)
	c.JSON(http.StatusOK, gin.H{"message": "Diary entry deleted"})
}

// afterMutation recomputes stats and publishes the diary event
func (m *Module) afterMutation(userID uint, eventType events.EventType, entryID uint) {
	if _, err := statsmodule.UpdateUserStats(m.db, userID); err != nil {
		logger.Error("Failed to update stats for user %d: %v", userID, err)
	}

	if bus := events.GetGlobalEventBus(); bus != nil {
		event := events.NewUserEvent(eventType, userID, "Diary Changed", "")
		event.Data["entry_id"] = entryID
		bus.PublishAsync(event)
	}
}

func parseEntryID(c *gin.Context) (uint, bool) {
	entryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry ID"})
		return 0, false
	}
	return uint(entryID), true
}
