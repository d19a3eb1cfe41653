package authmodule

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

// Module represents the Auth Bridge module
type Module struct {
	id          string
	name        string
	version     string
	core        bool
	initialized bool
	db          *gorm.DB
}

var (
	globalVerifier *Verifier
	verifierMu     sync.RWMutex
)

// Auto-register the module when imported
func init() {
	Register()
}

// Register registers this module with the module system
func Register() {
	authModule := &Module{
		id:      "system.auth",
		name:    "Auth Bridge",
		version: "1.0.0",
		core:    true,
	}
	modulemanager.Register(authModule)
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
	if err := db.AutoMigrate(&database.User{}); err != nil {
		return fmt.Errorf("failed to migrate auth schema: %w", err)
	}
	return nil
}

// Init initializes the auth module
func (m *Module) Init() error {
	m.db = database.GetDB()
	cfg := config.Get()

	verifier, err := NewVerifier(cfg.Security.JWTSecret)
	if err != nil {
		// Requests will be rejected with 503 until a secret is configured
		logger.Warn("Auth verifier disabled: %v", err)
	}
	SetVerifier(verifier)

	m.initialized = true
	logger.Info("Auth module initialized")
	return nil
}

// RegisterRoutes registers the auth module API routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	usersGroup := router.Group("/api/users", RequireAuth())
	{
		usersGroup.GET("/me", m.getProfile)
		usersGroup.PUT("/me", m.updateProfile)
	}

	apiroutes.Register("/api/users/me", "GET", "Authenticated user's profile.")
	apiroutes.Register("/api/users/me", "PUT", "Updates the authenticated user's profile.")
}

// SetVerifier replaces the global token verifier
func SetVerifier(v *Verifier) {
	verifierMu.Lock()
	defer verifierMu.Unlock()
	globalVerifier = v
}

// GetVerifier returns the global token verifier (nil when unconfigured)
func GetVerifier() *Verifier {
	verifierMu.RLock()
	defer verifierMu.RUnlock()
	return globalVerifier
}
