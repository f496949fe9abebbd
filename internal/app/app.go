// Package app wires configuration, storage, and every HTTP module into one
// runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kautilyalaw/core/internal/config"
	"github.com/kautilyalaw/core/internal/database"
	"github.com/kautilyalaw/core/internal/middleware"
	"github.com/kautilyalaw/core/internal/modules/storage/backup"
	"github.com/kautilyalaw/core/internal/modules/storage/file"
	"github.com/kautilyalaw/core/internal/modules/storage/object"
	"github.com/kautilyalaw/core/internal/pkg/authstate"
	pkgcron "github.com/kautilyalaw/core/internal/pkg/cron"
	jwtpkg "github.com/kautilyalaw/core/internal/pkg/jwt"
	pkgredis "github.com/kautilyalaw/core/internal/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg       *config.AppConfig
	router    *gin.Engine
	db        *gorm.DB
	store     object.Store
	broadcast *authstate.Broadcaster
	logger    *zap.Logger
	cancel    context.CancelFunc
	sched     *pkgcron.Scheduler

	// Shared services the cron jobs reuse.
	files   *file.Service
	backups *backup.Service
}

// New initializes the application: config → DB → Redis → object store →
// routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		jwtpkg.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	store, err := object.New(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("object store: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(buildCORSConfig(cfg)))

	broadcast := authstate.NewBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())
	go logAuthEvents(ctx, broadcast, logger)

	sched := pkgcron.New()

	app := &App{
		cfg:       cfg,
		router:    router,
		db:        db,
		store:     store,
		broadcast: broadcast,
		logger:    logger,
		cancel:    cancel,
		sched:     sched,
	}
	app.registerRoutes(rc)
	app.registerCronJobs()
	go sched.Start(ctx)

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background goroutines and closes the identity stream.
func (a *App) Shutdown() {
	a.cancel()
	a.broadcast.Close()
}

// logAuthEvents consumes the identity-change stream. Everything that reacts
// to sign-in state hangs off this one subscription.
func logAuthEvents(ctx context.Context, stream authstate.Stream, logger *zap.Logger) {
	events := stream.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			logger.Info("identity changed",
				zap.String("kind", string(ev.Kind)),
				zap.String("userId", ev.UserID),
				zap.String("provider", ev.Provider))
		}
	}
}

func buildCORSConfig(cfg *config.AppConfig) cors.Config {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "x-kli-cache"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	return corsConfig
}
