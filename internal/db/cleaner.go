package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// PurgeDeletedProjects removes soft-deleted projects whose deletion is
// older than retention and returns how many rows went away.
func PurgeDeletedProjects(ctx context.Context, db *sql.DB, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	res, err := db.ExecContext(ctx, `
		DELETE FROM projects
		 WHERE deleted_at IS NOT NULL
		   AND deleted_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartSoftDeleteCleaner purges old soft-deleted projects every interval
// until ctx is cancelled.
func StartSoftDeleteCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rows, err := PurgeDeletedProjects(ctx, db, retention)
				if err != nil {
					log.Error("failed to purge deleted projects", zap.Error(err))
					continue
				}
				if rows > 0 {
					log.Info("purged deleted projects", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
