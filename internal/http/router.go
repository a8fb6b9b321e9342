package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/authgate/internal/auth"
	"github.com/mrlokans/authgate/internal/config"
	"github.com/mrlokans/authgate/internal/database"
)

// RouterConfig carries all router dependencies, improving testability
// and reducing parameter count.
type RouterConfig struct {
	Database    *database.Database
	AuthService *auth.Service
	AuthConfig  config.Auth
	Version     string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(auth.StrictTransportSecurityMiddleware())

	// Health endpoints
	healthController := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", healthController.Status)
	router.GET("/", healthController.Status)

	// Authentication endpoints
	authController := auth.NewController(cfg.AuthService, cfg.AuthConfig)
	authController.RegisterRoutes(router)

	return router
}
