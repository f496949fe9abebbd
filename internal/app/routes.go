package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kautilyalaw/core/internal/config"
	"github.com/kautilyalaw/core/internal/middleware"
	"github.com/kautilyalaw/core/internal/modules/aggregate"
	"github.com/kautilyalaw/core/internal/modules/auth"
	"github.com/kautilyalaw/core/internal/modules/content/blog"
	"github.com/kautilyalaw/core/internal/modules/content/course"
	"github.com/kautilyalaw/core/internal/modules/health"
	"github.com/kautilyalaw/core/internal/modules/storage/backup"
	"github.com/kautilyalaw/core/internal/modules/storage/file"
	pkgredis "github.com/kautilyalaw/core/internal/pkg/redis"
	"github.com/kautilyalaw/core/internal/pkg/response"
	"github.com/kautilyalaw/core/internal/pkg/session"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)
	adminMW := middleware.RequireAdmin()

	r.NoRoute(func(c *gin.Context) { response.NotFound(c) })
	r.NoMethod(func(c *gin.Context) { response.MethodNotAllowed(c) })

	r.Use(middleware.RateLimit(rc.Raw()))

	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth(db))
	api.Use(middleware.HTTPCache(rc.Raw(), middleware.HTTPCacheOptions{
		TTL:     15 * time.Second,
		Disable: a.cfg.IsDev(),
		SkipPaths: []string{
			apiPrefix + "/ping",
			apiPrefix + "/health",
			apiPrefix + "/auth/*",
		},
	}))

	api.GET("", func(c *gin.Context) {
		c.PureJSON(http.StatusOK, gin.H{
			"name":    "kautilya-core",
			"version": "1.0.0",
		})
	})

	// Shared services
	fileSvc := file.NewService(db, a.store, a.logger)
	courseSvc := course.NewService(db, fileSvc, a.logger)
	blogSvc := blog.NewService(db, fileSvc, a.logger)
	authSvc := auth.NewService(db, auth.NewGoogleVerifier(a.cfg.Auth.GoogleClientID), a.broadcast, a.logger, sessionTTL(a.cfg))
	backupSvc := backup.NewService(db, a.store, a.logger, a.backupsDir())

	a.files = fileSvc
	a.backups = backupSvc

	// Auth
	auth.NewHandler(authSvc, a.cfg.Auth).RegisterRoutes(api, authMW)

	// Public content + landing aggregate; mutations live under /admin
	admin := api.Group("/admin", authMW, adminMW)
	course.NewHandler(courseSvc, rc.Raw()).RegisterRoutes(api, admin)
	blog.NewHandler(blogSvc, rc.Raw()).RegisterRoutes(api, admin)
	aggregate.NewHandler(courseSvc, blogSvc).RegisterRoutes(api)

	// Uploads and orphan management (admin only)
	file.NewHandler(fileSvc, a.cfg.Storage).RegisterRoutes(api, authMW, adminMW)

	// Backups (admin only)
	backup.NewHandler(backupSvc).RegisterRoutes(api, authMW, adminMW)

	// Probes + cron control
	health.NewHandler(db, rc, a.sched).RegisterRoutes(api, authMW, adminMW)
}

func sessionTTL(cfg *config.AppConfig) time.Duration {
	if cfg.Auth.SessionTTLHours > 0 {
		return time.Duration(cfg.Auth.SessionTTLHours) * time.Hour
	}
	return session.DefaultTTL
}

func (a *App) backupsDir() string {
	return config.ResolveRuntimePath(a.cfg.Paths.Backups, "backups")
}
