package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/billing/internal/application/subscription/dto"
	"github.com/orris-inc/billing/internal/shared/logger"
)

type mockSweeper struct {
	calls   atomic.Int32
	sweepFn func(ctx context.Context, now time.Time) (*dto.SweepResult, error)
}

func (m *mockSweeper) SweepPeriodEnds(ctx context.Context, now time.Time) (*dto.SweepResult, error) {
	m.calls.Add(1)
	return m.sweepFn(ctx, now)
}

func TestSchedulerManager_RunsSweepImmediately(t *testing.T) {
	sweeper := &mockSweeper{sweepFn: func(_ context.Context, now time.Time) (*dto.SweepResult, error) {
		assert.True(t, now.IsZero(), "the service clock decides the sweep time")
		return &dto.SweepResult{Scanned: 1, Canceled: 1}, nil
	}}

	m, err := NewSchedulerManager(logger.Nop())
	require.NoError(t, err)
	require.NoError(t, m.RegisterSweepJob(time.Hour, sweeper))

	m.Start()
	defer func() { require.NoError(t, m.Shutdown()) }()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerManager_SurvivesFailures(t *testing.T) {
	sweeper := &mockSweeper{}
	sweeper.sweepFn = func(context.Context, time.Time) (*dto.SweepResult, error) {
		if sweeper.calls.Load() == 1 {
			panic("database exploded")
		}
		return nil, errors.New("still down")
	}

	m, err := NewSchedulerManager(logger.Nop())
	require.NoError(t, err)
	require.NoError(t, m.RegisterSweepJob(20*time.Millisecond, sweeper))

	m.Start()
	defer func() { require.NoError(t, m.Shutdown()) }()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
}
