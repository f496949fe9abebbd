// Package health exposes liveness probes and the cron job control surface.
package health

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kautilyalaw/core/internal/pkg/cron"
	pkgredis "github.com/kautilyalaw/core/internal/pkg/redis"
	"github.com/kautilyalaw/core/internal/pkg/response"
	"gorm.io/gorm"
)

var startedAt = time.Now()

type Handler struct {
	db        *gorm.DB
	rdb       *pkgredis.Client
	scheduler *cron.Scheduler
}

func NewHandler(db *gorm.DB, rdb *pkgredis.Client, scheduler *cron.Scheduler) *Handler {
	return &Handler{db: db, rdb: rdb, scheduler: scheduler}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, adminMW ...gin.HandlerFunc) {
	rg.GET("/ping", h.ping)
	rg.GET("/health", h.health)

	g := rg.Group("/health/cron", adminMW...)
	g.GET("", h.listCron)
	g.POST("/run/:name", h.runCron)
}

// ping GET /ping
func (h *Handler) ping(c *gin.Context) {
	c.String(200, "pong")
}

// health GET /health
func (h *Handler) health(c *gin.Context) {
	ctx := c.Request.Context()

	dbOK := true
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		dbOK = false
	}

	redisOK := h.rdb != nil
	if redisOK {
		if err := h.rdb.Raw().Ping(ctx).Err(); err != nil {
			redisOK = false
		}
	}

	response.OK(c, gin.H{
		"ok":     dbOK,
		"db":     dbOK,
		"redis":  redisOK,
		"uptime": time.Since(startedAt).Round(time.Second).String(),
	})
}

// listCron GET /health/cron  [admin]
func (h *Handler) listCron(c *gin.Context) {
	if h.scheduler == nil {
		response.OK(c, []cron.ListItem{})
		return
	}
	response.OK(c, h.scheduler.List())
}

// runCron POST /health/cron/run/:name  [admin]
func (h *Handler) runCron(c *gin.Context) {
	if h.scheduler == nil {
		response.NotFoundMsg(c, "No scheduler running.")
		return
	}
	// Detached context: the job outlives this request.
	if err := h.scheduler.Run(context.Background(), c.Param("name")); err != nil {
		response.NotFoundMsg(c, err.Error())
		return
	}
	response.OK(c, gin.H{"triggered": c.Param("name")})
}
