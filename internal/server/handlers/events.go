package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shaflix/shaflix/internal/events"
)

// EventsHandler exposes the recorded event history
type EventsHandler struct {
	eventBus events.EventBus
}

// NewEventsHandler creates an events handler backed by the given bus
func NewEventsHandler(eventBus events.EventBus) *EventsHandler {
	return &EventsHandler{eventBus: eventBus}
}

// GetEvents returns recorded events, optionally filtered by type
func (h *EventsHandler) GetEvents(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	filter := events.EventFilter{}
	if eventType := c.Query("type"); eventType != "" {
		filter.Types = []events.EventType{events.EventType(eventType)}
	}

	list, total, err := h.eventBus.GetEvents(filter, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve events",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": list,
		"count":  len(list),
		"total":  total,
	})
}

// GetEventStats returns aggregate counts for the event system
func (h *EventsHandler) GetEventStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.eventBus.GetStats())
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
