package catalogmodule

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shaflix/shaflix/internal/apiroutes"
	"github.com/shaflix/shaflix/internal/config"
	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/logger"
	"github.com/shaflix/shaflix/internal/modules/modulemanager"
)

// Module represents the Catalog module
type Module struct {
	id          string
	name        string
	version     string
	core        bool
	initialized bool
	db          *gorm.DB

	client *Client
	cache  *MovieCache
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
	catalogModule := &Module{
		id:      "system.catalog",
		name:    "Catalog",
		version: "1.0.0",
		core:    true,
	}
	moduleMu.Lock()
	moduleInstance = catalogModule
	moduleMu.Unlock()
	modulemanager.Register(catalogModule)
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
	if err := db.AutoMigrate(&database.Movie{}); err != nil {
		return fmt.Errorf("failed to migrate catalog schema: %w", err)
	}
	return nil
}

// Init initializes the catalog module
func (m *Module) Init() error {
	m.db = database.GetDB()
	cfg := config.Get()

	client, err := NewClient(cfg.Catalog.APIKey, cfg.Catalog.BaseURL, cfg.Catalog.Timeout)
	if err != nil {
		// The cache still works without a client; search/discover will 503
		logger.Warn("Catalog client disabled: %v", err)
		client = nil
	}
	m.client = client
	m.cache = NewMovieCache(m.db, client, cfg.Catalog.FetchConcurrency)

	m.initialized = true
	logger.Info("Catalog module initialized")
	return nil
}

// RegisterRoutes registers the catalog module API routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	catalogGroup := router.Group("/api/catalog")
	{
		catalogGroup.GET("/search", m.searchMovies)
		catalogGroup.GET("/discover", m.discoverMovies)
		catalogGroup.GET("/moods", m.listMoods)
		catalogGroup.GET("/movies/:id", m.getMovie)
	}

	apiroutes.Register("/api/catalog/search", "GET", "Free-text movie search against the catalog.")
	apiroutes.Register("/api/catalog/discover", "GET", "Mood-based movie discovery.")
	apiroutes.Register("/api/catalog/moods", "GET", "Lists the supported browsing moods.")
	apiroutes.Register("/api/catalog/movies/:id", "GET", "Movie detail with credits, cache-backed.")
}

// GetCache returns the movie metadata cache shared with other modules
func GetCache() *MovieCache {
	moduleMu.RLock()
	defer moduleMu.RUnlock()
	if moduleInstance == nil {
		return nil
	}
	return moduleInstance.cache
}
