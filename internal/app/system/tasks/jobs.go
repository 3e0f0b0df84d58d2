// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/stratafolders/internal/app/system/sweep"
	"github.com/dalemusser/stratafolders/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// BlobSweepJob creates a job that reclaims orphaned blobs from store.
func BlobSweepJob(s *sweep.Sweeper, store sweep.Lister, opts sweep.Options, interval time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "blob-sweep",
		Interval: interval,
		Run: func(ctx context.Context) error {
			ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Sweep(), logger, "blob sweep")
			defer cancel()

			rep, err := s.Run(ctx, store, opts)
			if err != nil {
				return err
			}
			if rep.Failed > 0 || rep.Truncated {
				logger.Warn("blob sweep left orphans behind",
					zap.Int("failed", rep.Failed),
					zap.Bool("truncated", rep.Truncated))
			}
			return nil
		},
	}
}
