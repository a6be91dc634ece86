package service

import (
	"context"
	"time"

	"predman/internal/logger"
)

// DailyRefresher runs StatisticsService.RefreshAll once a day at a fixed hour.
type DailyRefresher struct {
	stats *StatisticsService
	hour  int
	now   func() time.Time
}

func NewDailyRefresher(stats *StatisticsService, hour int) *DailyRefresher {
	return &DailyRefresher{stats: stats, hour: hour, now: time.Now}
}

// nextRun returns the first instant at r.hour strictly after from.
func (r *DailyRefresher) nextRun(from time.Time) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), r.hour, 0, 0, 0, from.Location())
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run blocks until ctx is cancelled.
func (r *DailyRefresher) Run(ctx context.Context) {
	for {
		wait := r.nextRun(r.now()).Sub(r.now())
		logger.Debug("next statistics refresh scheduled", "in", wait.String())

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := r.stats.RefreshAll(ctx); err != nil {
			logger.Error("statistics refresh aborted", "error", err)
		}
	}
}
