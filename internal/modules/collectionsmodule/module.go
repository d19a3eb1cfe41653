package collectionsmodule

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shaflix/shaflix/internal/apiroutes"
	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/logger"
	"github.com/shaflix/shaflix/internal/modules/authmodule"
	"github.com/shaflix/shaflix/internal/modules/catalogmodule"
	"github.com/shaflix/shaflix/internal/modules/modulemanager"
)

// Module represents the Collections module
type Module struct {
	id          string
	name        string
	version     string
	core        bool
	initialized bool
	db          *gorm.DB

	store *Store
}

var (
	moduleInstance *Module
	moduleMu       sync.RWMutex
)

// Auto-register the module when imported
func init() {
	Register()
}

// Register registers this module with the module system
func Register() {
	collectionsModule := &Module{
		id:      "system.collections",
		name:    "Collections",
		version: "1.0.0",
		core:    true,
	}
	moduleMu.Lock()
	moduleInstance = collectionsModule
	moduleMu.Unlock()
	modulemanager.Register(collectionsModule)
}

// ID returns the module ID
func (m *Module) ID() string {
	return m.id
}

// Name returns the module name
func (m *Module) Name() string {
	return m.name
}

// Core returns whether this is a core module
func (m *Module) Core() bool {
	return m.core
}

// Migrate performs any pending migrations
func (m *Module) Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&database.Favorite{},
		&database.WatchlistItem{},
		&database.WatchedItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate collections schema: %w", err)
	}
	return nil
}

// Init initializes the collections module
func (m *Module) Init() error {
	m.db = database.GetDB()
	m.store = NewStore(m.db, catalogmodule.GetCache())
	m.initialized = true
	logger.Info("Collections module initialized")
	return nil
}

// RegisterRoutes registers the collections module API routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	favoritesGroup := router.Group("/api/favorites", authmodule.RequireAuth())
	{
		favoritesGroup.GET("", m.listFavorites)
		favoritesGroup.POST("", m.addFavorite)
		favoritesGroup.DELETE("/:movieID", m.removeFavorite)
	}

	watchlistGroup := router.Group("/api/watchlist", authmodule.RequireAuth())
	{
		watchlistGroup.GET("", m.listWatchlist)
		watchlistGroup.POST("", m.addWatchlistItem)
		watchlistGroup.DELETE("/:movieID", m.removeWatchlistItem)
	}

	watchedGroup := router.Group("/api/watched", authmodule.RequireAuth())
	{
		watchedGroup.GET("", m.listWatched)
		watchedGroup.POST("", m.addWatchedItem)
		watchedGroup.DELETE("/:movieID", m.removeWatchedItem)
	}

	apiroutes.Register("/api/favorites", "GET", "Lists the user's favorite movies.")
	apiroutes.Register("/api/favorites", "POST", "Adds a movie to favorites.")
	apiroutes.Register("/api/favorites/:movieID", "DELETE", "Removes a movie from favorites.")
	apiroutes.Register("/api/watchlist", "GET", "Lists the user's watchlist.")
	apiroutes.Register("/api/watchlist", "POST", "Adds a movie to the watchlist.")
	apiroutes.Register("/api/watchlist/:movieID", "DELETE", "Removes a movie from the watchlist.")
	apiroutes.Register("/api/watched", "GET", "Lists the user's watched history.")
	apiroutes.Register("/api/watched", "POST", "Marks a movie as watched.")
	apiroutes.Register("/api/watched/:movieID", "DELETE", "Removes a movie from watched history.")
}

// GetStore returns the collection store shared with other modules. Nil
// until the module has initialized.
func GetStore() *Store {
	moduleMu.RLock()
	defer moduleMu.RUnlock()
	if moduleInstance == nil {
		return nil
	}
	return moduleInstance.store
}
