package export

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/terra-agro/terrabot/core/logger"
)

// Schedule starts a fixed-interval auto-export job. The returned
// scheduler should be shut down on exit.
func Schedule(e *Exporter, interval time.Duration) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx := logger.Background()
			count, _, err := e.ExportNow(ctx)
			if err != nil {
				logger.Error(ctx, "export", "export.scheduled",
					slog.String("status", "fail"),
					slog.Int("exported", count),
					slog.String("err", err.Error()),
				)
				return
			}
			logger.Info(ctx, "export", "export.scheduled",
				slog.Int("exported", count),
			)

			if created, msg, err := e.EnsureNextMonth(ctx); err != nil {
				logger.Warn(ctx, "export", "export.precreate",
					slog.String("status", "fail"),
					slog.String("err", err.Error()),
				)
			} else if created {
				logger.Info(ctx, "export", "export.precreate",
					slog.String("payload", msg),
				)
			}
		}),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	s.Start()
	return s, nil
}
