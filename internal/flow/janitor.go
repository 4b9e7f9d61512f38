package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"relaybot/internal/logger"
)

// Janitor periodically resets sessions that have been idle longer than the
// configured TTL. A zero TTL disables it entirely.
type Janitor struct {
	engine *Engine
	ttl    time.Duration
	sweep  time.Duration
	cron   *cron.Cron
}

// NewJanitor configures a janitor; Start must be called to schedule sweeps.
func NewJanitor(engine *Engine, ttl, sweep time.Duration) *Janitor {
	if sweep <= 0 {
		sweep = 5 * time.Minute
	}
	return &Janitor{engine: engine, ttl: ttl, sweep: sweep}
}

// Start schedules the periodic sweep. No-op when the TTL is zero.
func (j *Janitor) Start() error {
	if j.ttl <= 0 {
		return nil
	}
	j.cron = cron.New()
	spec := fmt.Sprintf("@every %s", j.sweep)
	if _, err := j.cron.AddFunc(spec, j.run); err != nil {
		return fmt.Errorf("janitor schedule: %w", err)
	}
	j.cron.Start()
	logger.Info(logger.Background(), "flow.janitor", "janitor.start",
		slog.Duration("ttl", j.ttl),
		slog.Duration("sweep", j.sweep),
	)
	return nil
}

// Stop cancels future sweeps and waits for a running one to finish.
func (j *Janitor) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

func (j *Janitor) run() {
	ctx := context.Background()
	if expired := j.engine.ExpireStale(ctx, j.ttl); expired > 0 {
		logger.Info(ctx, "flow.janitor", "janitor.sweep",
			slog.Int("expired", expired),
		)
	}
}
