package app

import (
	"context"
	"time"

	"github.com/kautilyalaw/core/internal/modules/storage/file"
	pkgcron "github.com/kautilyalaw/core/internal/pkg/cron"
	"github.com/kautilyalaw/core/internal/pkg/session"
	"go.uber.org/zap"
)

// registerCronJobs registers all scheduled background jobs.
func (a *App) registerCronJobs() {
	log := a.logger.Named("cron")

	a.sched.Register(pkgcron.Job{
		Name:        "cleanup_orphan_uploads",
		Description: "Delete uploaded images that were never attached to a record",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			deleted, err := a.files.CleanupOrphans(ctx, file.DefaultOrphanMaxAge)
			if err != nil {
				log.Warn("orphan cleanup failed", zap.Error(err))
				return err
			}
			if deleted > 0 {
				log.Info("orphan cleanup finished", zap.Int("deleted", deleted))
			}
			return nil
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "purge_expired_sessions",
		Description: "Drop login sessions past their expiry",
		Interval:    12 * time.Hour,
		Fn: func(ctx context.Context) error {
			purged, err := session.PurgeExpired(a.db, time.Now())
			if err != nil {
				log.Warn("session purge failed", zap.Error(err))
				return err
			}
			if purged > 0 {
				log.Info("session purge finished", zap.Int64("purged", purged))
			}
			return nil
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "auto_backup",
		Description: "Archive the database locally and push to the object store",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			if err := a.backups.AutoBackup(ctx); err != nil {
				log.Warn("auto backup failed", zap.Error(err))
				return err
			}
			log.Info("auto backup finished")
			return nil
		},
	})
}
