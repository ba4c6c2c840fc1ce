package purge

import (
	"context"
	"log/slog"
	"time"

	"github.com/avsoftware/notes-backend/internal/metrics"
	"github.com/avsoftware/notes-backend/internal/repository"
	"github.com/robfig/cron/v3"
)

// Purger removes expired refresh-token records on a cron schedule. Postgres
// has no TTL index, so expiry-based cleanup has to be an explicit sweep;
// Consume already refuses expired rows, the purger just reclaims the space.
type Purger struct {
	tokens   repository.RefreshTokenRepository
	schedule cron.Schedule
	logger   *slog.Logger
}

// New parses a standard 5-field cron expression (descriptors like "@hourly"
// work too) and returns a ready-to-start purger.
func New(tokens repository.RefreshTokenRepository, cronExpr string, logger *slog.Logger) (*Purger, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Purger{
		tokens:   tokens,
		schedule: schedule,
		logger:   logger.With("component", "purger"),
	}, nil
}

// Start runs purge cycles until ctx is cancelled.
func (p *Purger) Start(ctx context.Context) {
	p.logger.Info("purger started")

	for {
		next := p.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Info("purger shut down")
			return
		case <-timer.C:
			p.Run(ctx)
		}
	}
}

// Run executes a single purge cycle.
func (p *Purger) Run(ctx context.Context) {
	start := time.Now()

	purged, err := p.tokens.DeleteExpired(ctx)
	if err != nil {
		p.logger.Error("purge expired refresh tokens", "error", err)
		return
	}

	metrics.PurgeCycleDuration.Observe(time.Since(start).Seconds())
	if purged > 0 {
		metrics.RefreshTokensPurgedTotal.Add(float64(purged))
		p.logger.Info("purged expired refresh tokens", "count", purged)
	}
}
