package store

import (
	"context"
	"log/slog"
	"time"
)

// StartCleanupWorker periodically deletes session records idle longer
// than ttl. An abandoned conversation simply restarts from the top of
// the script on its next message.
func StartCleanupWorker(ctx context.Context, repo Repository, ttl, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := repo.DeleteStaleSessions(ctx, ttl)
				if err != nil {
					slog.Error("Session cleanup failed", "error", err)
					continue
				}
				if deleted > 0 {
					slog.Info("Stale sessions removed", "count", deleted)
				}
			}
		}
	}()
}
