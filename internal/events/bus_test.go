package events

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testLogger struct{}

func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Debug(msg string, args ...interface{}) {}

func startTestBus(t *testing.T, storage EventStorage) EventBus {
	t.Helper()
	bus := NewEventBus(DefaultEventBusConfig(), testLogger{}, storage)
	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = bus.Stop(stopCtx)
	})
	return bus
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := startTestBus(t, NewMemoryEventStorage())

	var delivered int64
	_, err := bus.Subscribe(context.Background(), EventFilter{
		Types: []EventType{EventFavoriteAdded},
	}, func(event Event) error {
		atomic.AddInt64(&delivered, 1)
		return nil
	})
	require.NoError(t, err)

	event := NewUserEvent(EventFavoriteAdded, 1, "Collection Changed", "")
	require.NoError(t, bus.Publish(context.Background(), event))

	waitFor(t, func() bool { return atomic.LoadInt64(&delivered) == 1 })
}

func TestSubscriberFilterSkipsOtherTypes(t *testing.T) {
	bus := startTestBus(t, NewMemoryEventStorage())

	var delivered int64
	_, err := bus.Subscribe(context.Background(), EventFilter{
		Types: []EventType{EventListCreated},
	}, func(event Event) error {
		atomic.AddInt64(&delivered, 1)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), NewUserEvent(EventFavoriteAdded, 1, "", "")))
	require.NoError(t, bus.Publish(context.Background(), NewUserEvent(EventListCreated, 1, "", "")))

	waitFor(t, func() bool { return atomic.LoadInt64(&delivered) == 1 })
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), atomic.LoadInt64(&delivered))
}

func TestPublishRejectsMissingType(t *testing.T) {
	bus := startTestBus(t, NewMemoryEventStorage())

	err := bus.Publish(context.Background(), Event{Title: "typeless"})
	assert.Error(t, err)
}

func TestDatabaseStorageRoundTrip(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&SystemEvent{}))

	bus := startTestBus(t, NewDatabaseEventStorage(db))

	event := NewUserEvent(EventDiaryEntryCreated, 7, "Diary Changed", "logged a movie")
	event.Data["entry_id"] = uint(42)
	require.NoError(t, bus.Publish(context.Background(), event))

	waitFor(t, func() bool {
		var count int64
		if err := db.Model(&SystemEvent{}).Count(&count).Error; err != nil {
			return false
		}
		return count == 1
	})

	stored, total, err := bus.GetEvents(EventFilter{Types: []EventType{EventDiaryEntryCreated}}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, stored, 1)
	assert.Equal(t, "user:7", stored[0].Source)
	assert.Equal(t, "Diary Changed", stored[0].Title)
}

func TestGetStatsCountsByType(t *testing.T) {
	bus := startTestBus(t, NewMemoryEventStorage())

	require.NoError(t, bus.Publish(context.Background(), NewUserEvent(EventWatchedAdded, 1, "", "")))
	require.NoError(t, bus.Publish(context.Background(), NewUserEvent(EventWatchedAdded, 1, "", "")))
	require.NoError(t, bus.Publish(context.Background(), NewUserEvent(EventListCreated, 1, "", "")))

	waitFor(t, func() bool {
		stats := bus.GetStats()
		return stats.TotalEvents == 3
	})

	stats := bus.GetStats()
	assert.Equal(t, int64(2), stats.EventsByType[string(EventWatchedAdded)])
	assert.Equal(t, int64(1), stats.EventsByType[string(EventListCreated)])
}

func TestNewUserEventSource(t *testing.T) {
	event := NewUserEvent(EventUserCreated, 12, "User Created", "")
	assert.Equal(t, "user:12", event.Source)
	assert.NotNil(t, event.Data)
}

func TestMatchesFilter(t *testing.T) {
	event := NewSystemEvent(EventSystemStarted, "boot", "")

	assert.True(t, MatchesFilter(event, EventFilter{}))
	assert.True(t, MatchesFilter(event, EventFilter{Types: []EventType{EventSystemStarted}}))
	assert.False(t, MatchesFilter(event, EventFilter{Types: []EventType{EventSystemStopped}}))
	assert.True(t, MatchesFilter(event, EventFilter{Sources: []string{"system"}}))
	assert.False(t, MatchesFilter(event, EventFilter{Sources: []string{"user:9"}}))
}
