package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/authgate/internal/auth"
	"github.com/mrlokans/authgate/internal/config"
	"github.com/mrlokans/authgate/internal/database"
	"github.com/mrlokans/authgate/internal/database/sessions"
	"github.com/mrlokans/authgate/internal/database/users"
	http_controllers "github.com/mrlokans/authgate/internal/http"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting authgate v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Build repositories and the auth service
	userRepo := users.NewRepository(db.DB)
	sessionRepo := sessions.NewRepository(db.DB)
	authService := auth.NewService(userRepo, sessionRepo, cfg.Auth)

	if count, err := userRepo.Count(); err == nil && count == 0 {
		log.Printf("No users found. POST /auth/register to create the first account.")
	}

	// Expired session rows are unreachable the moment they expire; the
	// scheduled purge only reclaims their storage.
	var purgeCron *cron.Cron
	if cfg.Auth.SessionTTL > 0 {
		purgeCron = cron.New()
		_, err := purgeCron.AddFunc(cfg.Auth.SessionCleanupSchedule, func() {
			purged, err := sessionRepo.PurgeExpired()
			if err != nil {
				log.Printf("Session purge failed: %v", err)
				return
			}
			if purged > 0 {
				log.Printf("Purged %d expired sessions", purged)
			}
		})
		if err != nil {
			log.Fatalf("Invalid session cleanup schedule %q: %v", cfg.Auth.SessionCleanupSchedule, err)
		}
		purgeCron.Start()
		log.Printf("Session purge scheduled: %s", cfg.Auth.SessionCleanupSchedule)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:    db,
		AuthService: authService,
		AuthConfig:  cfg.Auth,
		Version:     version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if purgeCron != nil {
			stopCtx := purgeCron.Stop()
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
			}
		}
	}

	Serve(router, cfg, onShutdown)
}
