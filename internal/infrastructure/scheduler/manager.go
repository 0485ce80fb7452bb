// Package scheduler runs periodic maintenance jobs inside the server process
// using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/orris-inc/billing/internal/application/subscription/dto"
	"github.com/orris-inc/billing/internal/shared/goroutine"
	"github.com/orris-inc/billing/internal/shared/logger"
)

// Sweeper settles subscriptions whose billing period has ended.
type Sweeper interface {
	SweepPeriodEnds(ctx context.Context, now time.Time) (*dto.SweepResult, error)
}

type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.Mutex
}

func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}
	return &SchedulerManager{scheduler: s, logger: log}, nil
}

// RegisterSweepJob runs the period-end sweep every interval, starting
// immediately. A run still in progress when the next one is due causes the
// next one to be rescheduled rather than overlap.
func (m *SchedulerManager) RegisterSweepJob(interval time.Duration, sweeper Sweeper) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			m.sweep(ctx, sweeper)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("subscription", "sweep"),
		gocron.WithName("subscription-period-end-sweep"),
	)
	if err != nil {
		return err
	}
	m.logger.Infow("subscription sweep job registered", "interval", interval)
	return nil
}

func (m *SchedulerManager) sweep(ctx context.Context, sweeper Sweeper) {
	defer goroutine.Recover(m.logger, "subscription-sweep")

	start := time.Now()
	result, err := sweeper.SweepPeriodEnds(ctx, time.Time{})
	if err != nil {
		m.logger.Errorw("period-end sweep failed", "error", err, "duration", time.Since(start))
		return
	}

	if result.Canceled+result.Expired+result.Failed > 0 {
		m.logger.Infow("period-end sweep processed subscriptions",
			"scanned", result.Scanned,
			"canceled", result.Canceled,
			"expired", result.Expired,
			"failed", result.Failed,
			"duration", time.Since(start),
		)
	} else {
		m.logger.Debugw("no subscriptions to sweep", "duration", time.Since(start))
	}
}

func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()
	if m.started {
		return
	}
	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler started", "jobs", len(m.scheduler.Jobs()))
}

// Shutdown waits for running jobs to finish.
func (m *SchedulerManager) Shutdown() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()
	m.started = false
	return m.scheduler.Shutdown()
}
