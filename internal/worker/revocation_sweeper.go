package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/observability"
)

// Sweeper drops expired revocations.
type Sweeper interface {
	Sweep(ctx context.Context) int
	Len() int
}

// StartRevocationSweeper purges expired revocations every interval until ctx is cancelled.
// The returned channel is closed once the sweeper has stopped. A non-positive interval
// disables the sweeper.
func StartRevocationSweeper(ctx context.Context, sweeper Sweeper, interval time.Duration, logger *zap.Logger, metrics *observability.Metrics) <-chan struct{} {
	done := make(chan struct{})
	if sweeper == nil || interval <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.Info("revocation sweeper started", zap.Duration("interval", interval))
		for {
			select {
			case <-ctx.Done():
				logger.Info("revocation sweeper stopped")
				return
			case <-ticker.C:
				removed := sweeper.Sweep(ctx)
				remaining := sweeper.Len()
				metrics.SetRevocationEntries(remaining)
				if removed > 0 {
					logger.Debug("expired revocations purged",
						zap.Int("removed", removed),
						zap.Int("remaining", remaining),
					)
				}
			}
		}
	}()
	return done
}
