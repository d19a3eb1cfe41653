package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventBus defines the interface for the event system
type EventBus interface {
	// Lifecycle
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health() error

	// Publishing
	Publish(ctx context.Context, event Event) error
	PublishAsync(event Event) error

	// Subscriptions
	Subscribe(ctx context.Context, filter EventFilter, handler EventHandler) (*Subscription, error)
	Unsubscribe(subscriptionID string) error

	// Queries
	GetEvents(filter EventFilter, limit, offset int) ([]Event, int64, error)
	GetStats() EventStats
}

// EventLogger is the logging interface the bus writes through
type EventLogger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// EventStorage persists events beyond the in-memory buffer
type EventStorage interface {
	Store(ctx context.Context, event Event) error
	Get(ctx context.Context, filter EventFilter, limit, offset int) ([]Event, int64, error)
	Delete(ctx context.Context, olderThan time.Duration) error
	Count(ctx context.Context) (int64, error)
	Close() error
}

var (
	globalBus EventBus
	globalMu  sync.RWMutex
)

// SetGlobalEventBus registers the process-wide event bus
func SetGlobalEventBus(bus EventBus) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalBus = bus
}

// GetGlobalEventBus returns the process-wide event bus (may be nil before startup)
func GetGlobalEventBus() EventBus {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalBus
}

// NewEvent creates a new event with the given parameters
func NewEvent(eventType EventType, source string, title string, message string) Event {
	return Event{
		ID:        generateEventID(),
		Type:      eventType,
		Source:    source,
		Title:     title,
		Message:   message,
		Data:      make(map[string]interface{}),
		Priority:  PriorityNormal,
		Timestamp: time.Now(),
	}
}

// NewEventWithData creates a new event carrying a data payload
func NewEventWithData(eventType EventType, source string, title string, message string, data map[string]interface{}) Event {
	event := NewEvent(eventType, source, title, message)
	event.Data = data
	return event
}

// NewSystemEvent creates an event sourced from the system itself
func NewSystemEvent(eventType EventType, title string, message string) Event {
	return NewEvent(eventType, "system", title, message)
}

// NewUserEvent creates an event sourced from a specific user
func NewUserEvent(eventType EventType, userID uint, title string, message string) Event {
	return NewEvent(eventType, fmt.Sprintf("user:%d", userID), title, message)
}

func generateEventID() string {
	return uuid.New().String()
}

// MatchesFilter reports whether an event matches a subscription filter
func MatchesFilter(event Event, filter EventFilter) bool {
	if len(filter.Types) > 0 {
		matched := false
		for _, t := range filter.Types {
			if event.Type == t {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(filter.Sources) > 0 {
		matched := false
		for _, s := range filter.Sources {
			if event.Source == s {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if filter.Priority != nil && event.Priority < *filter.Priority {
		return false
	}

	return true
}

// FilterEvents returns the subset of events matching the filter
func FilterEvents(events []Event, filter EventFilter) []Event {
	filtered := make([]Event, 0, len(events))
	for _, event := range events {
		if MatchesFilter(event, filter) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
