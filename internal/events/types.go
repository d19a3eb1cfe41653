// Package events provides the event bus used to record and fan out
// user-activity and system events.
package events

import (
	"time"
)

// EventType represents the type of event
type EventType string

// System-wide event types
const (
	// User events
	EventUserCreated        EventType = "user.created"
	EventUserProfileUpdated EventType = "user.profile.updated"

	// Collection events
	EventFavoriteAdded     EventType = "collection.favorite.added"
	EventFavoriteRemoved   EventType = "collection.favorite.removed"
	EventWatchlistAdded    EventType = "collection.watchlist.added"
	EventWatchlistRemoved  EventType = "collection.watchlist.removed"
	EventWatchedAdded      EventType = "collection.watched.added"
	EventWatchedRemoved    EventType = "collection.watched.removed"

	// Diary events
	EventDiaryEntryCreated EventType = "diary.entry.created"
	EventDiaryEntryUpdated EventType = "diary.entry.updated"
	EventDiaryEntryDeleted EventType = "diary.entry.deleted"

	// List events
	EventListCreated      EventType = "list.created"
	EventListUpdated      EventType = "list.updated"
	EventListDeleted      EventType = "list.deleted"
	EventListMovieAdded   EventType = "list.movie.added"
	EventListMovieRemoved EventType = "list.movie.removed"
	EventListReordered    EventType = "list.reordered"

	// Catalog events
	EventMovieCached   EventType = "catalog.movie.cached"
	EventMovieEnriched EventType = "catalog.movie.enriched"

	// Sync events
	EventSyncCompleted EventType = "sync.completed"

	// System events
	EventSystemStarted EventType = "system.started"
	EventSystemStopped EventType = "system.stopped"
)

// EventPriority represents the priority level of an event
type EventPriority int

const (
	PriorityLow      EventPriority = 1
	PriorityNormal   EventPriority = 5
	PriorityHigh     EventPriority = 10
	PriorityCritical EventPriority = 20
)

// Event represents a system event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"` // system, user:id, etc.
	Target    string                 `json:"target"` // specific target if applicable
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data"`
	Priority  EventPriority          `json:"priority"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventHandler represents a function that handles events
type EventHandler func(event Event) error

// EventFilter represents filters for event subscriptions
type EventFilter struct {
	Types    []EventType    `json:"types,omitempty"`
	Sources  []string       `json:"sources,omitempty"`
	Priority *EventPriority `json:"priority,omitempty"`
}

// Subscription represents an event subscription
type Subscription struct {
	ID           string       `json:"id"`
	Filter       EventFilter  `json:"filter"`
	Handler      EventHandler `json:"-"`
	Subscriber   string       `json:"subscriber"`
	Created      time.Time    `json:"created"`
	TriggerCount int64        `json:"trigger_count"`
}

// EventStats represents statistics about events
type EventStats struct {
	TotalEvents         int64            `json:"total_events"`
	EventsByType        map[string]int64 `json:"events_by_type"`
	RecentEvents        []Event          `json:"recent_events"`
	ActiveSubscriptions int              `json:"active_subscriptions"`
}

// EventBusConfig represents configuration for the event bus
type EventBusConfig struct {
	BufferSize        int           `json:"buffer_size"`
	MaxEventAge       time.Duration `json:"max_event_age"`
	EnablePersistence bool          `json:"enable_persistence"`
}

// DefaultEventBusConfig returns default configuration
func DefaultEventBusConfig() EventBusConfig {
	return EventBusConfig{
		BufferSize:        1000,
		MaxEventAge:       24 * time.Hour,
		EnablePersistence: true,
	}
}
