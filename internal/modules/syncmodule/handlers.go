package syncmodule

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shaflix/shaflix/internal/events"
	"github.com/shaflix/shaflix/internal/logger"
	"github.com/shaflix/shaflix/internal/modules/authmodule"
	"github.com/shaflix/shaflix/internal/modules/statsmodule"
)

func (m *Module) runSync(c *gin.Context) {
	user, _ := authmodule.CurrentUser(c)

	var payload SyncPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	results := m.importer.Import(c.Request.Context(), user.ID, &payload)
	status := OverallStatus(results)

	if _, err := statsmodule.UpdateUserStats(m.db, user.ID); err != nil {
		logger.Error("Failed to update stats for user %d after sync: %v", user.ID, err)
	}

	if bus := events.GetGlobalEventBus(); bus != nil {
		event := events.NewUserEvent(events.EventSyncCompleted, user.ID, "Sync Completed", "")
		event.Data["status"] = status
		bus.PublishAsync(event)
	}

	c.JSON(http.StatusOK, gin.H{"status": status, "sections": results})
}
